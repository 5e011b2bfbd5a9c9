package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/folioletter/src/config"
	"github.com/username/folioletter/src/logger"
	"github.com/username/folioletter/src/models"
	"github.com/username/folioletter/src/services"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{MaxUploadSizeBytes: 16 * 1024 * 1024}
	os.Exit(m.Run())
}

// stubAnalysisService records its inputs and returns a canned result or error.
type stubAnalysisService struct {
	result *models.AnalysisResult
	err    error

	lastSource       string
	gotPositionsFile bool
}

func (s *stubAnalysisService) AnalyzeCSV(source string, history io.Reader, positionsFile io.Reader) (*models.AnalysisResult, error) {
	s.lastSource = source
	s.gotPositionsFile = positionsFile != nil
	if history != nil {
		io.Copy(io.Discard, history)
	}
	return s.result, s.err
}

func (s *stubAnalysisService) AnalyzePlaid(ctx context.Context, accessToken string) (*models.AnalysisResult, error) {
	return s.result, s.err
}

func (s *stubAnalysisService) GetResult(runID string) (*models.AnalysisResult, error) {
	if s.result != nil && s.result.RunID == runID {
		return s.result, nil
	}
	return nil, services.ErrResultNotFound
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, content := range files {
		part, err := writer.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandleAnalyzeFidelity(t *testing.T) {
	stub := &stubAnalysisService{result: &models.AnalysisResult{RunID: "run-1", Source: "fidelity"}}
	handler := NewAnalysisHandler(stub)

	body, contentType := multipartBody(t, map[string]string{
		"history_file":   "Run Date,Action,Symbol\n03/15/2024,YOU BOUGHT,NVDA\n",
		"positions_file": "Symbol,Quantity\nNVDA,10\n",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/fidelity", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleAnalyzeFidelity(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fidelity", stub.lastSource)
	assert.True(t, stub.gotPositionsFile)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "run-1", result.RunID)
}

func TestHandleAnalyzeFidelityWithoutSnapshot(t *testing.T) {
	stub := &stubAnalysisService{result: &models.AnalysisResult{RunID: "run-2"}}
	handler := NewAnalysisHandler(stub)

	body, contentType := multipartBody(t, map[string]string{
		"history_file": "Run Date,Action,Symbol\n03/15/2024,YOU BOUGHT,NVDA\n",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/fidelity", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleAnalyzeFidelity(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, stub.gotPositionsFile, "absent optional snapshot must pass through as nil")
}

func TestHandleAnalyzeFidelityMissingHistoryFile(t *testing.T) {
	handler := NewAnalysisHandler(&stubAnalysisService{})

	body, contentType := multipartBody(t, map[string]string{
		"positions_file": "Symbol,Quantity\nNVDA,10\n",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/fidelity", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleAnalyzeFidelity(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "history_file")
}

func TestHandleAnalyzeRobinhoodParsingFailure(t *testing.T) {
	stub := &stubAnalysisService{err: fmt.Errorf("%w: garbled export", services.ErrParsingFailed)}
	handler := NewAnalysisHandler(stub)

	body, contentType := multipartBody(t, map[string]string{
		"orders_file": "symbol,side,quantity\nHOOD,buy,1\n",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/robinhood", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleAnalyzeRobinhood(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "robinhood", stub.lastSource)
}

func TestHandleGetAnalysis(t *testing.T) {
	stub := &stubAnalysisService{result: &models.AnalysisResult{RunID: "run-9"}}
	handler := NewAnalysisHandler(stub)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/analysis/{runID}", handler.HandleGetAnalysis)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/run-9", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	assert.NotEmpty(t, etag)

	// A poller re-sending the ETag gets a 304 with no body.
	req = httptest.NewRequest(http.MethodGet, "/api/analysis/run-9", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestHandleGetAnalysisNotFound(t *testing.T) {
	handler := NewAnalysisHandler(&stubAnalysisService{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/analysis/{runID}", handler.HandleGetAnalysis)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/gone", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
