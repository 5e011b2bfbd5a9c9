// src/handlers/analysis_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/username/folioletter/src/config"
	"github.com/username/folioletter/src/logger"
	"github.com/username/folioletter/src/security/validation"
	"github.com/username/folioletter/src/services"
	"github.com/username/folioletter/src/utils"
)

type AnalysisHandler struct {
	analysisService services.AnalysisService
}

func NewAnalysisHandler(service services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: service,
	}
}

// HandleAnalyzeFidelity accepts the legacy brokerage export pair: a required
// history_file and an optional positions_file snapshot.
func (h *AnalysisHandler) HandleAnalyzeFidelity(w http.ResponseWriter, r *http.Request) {
	if !parseUploadForm(w, r) {
		return
	}

	history, ok := retrieveCSVFile(w, r, "history_file", true)
	if !ok {
		return
	}
	if history != nil {
		defer history.Close()
	}

	positions, ok := retrieveCSVFile(w, r, "positions_file", false)
	if !ok {
		return
	}

	var result any
	var err error
	if positions != nil {
		defer positions.Close()
		result, err = h.analysisService.AnalyzeCSV("fidelity", history, positions)
	} else {
		result, err = h.analysisService.AnalyzeCSV("fidelity", history, nil)
	}
	h.respond(w, result, err)
}

// HandleAnalyzeRobinhood accepts the retail orders export.
func (h *AnalysisHandler) HandleAnalyzeRobinhood(w http.ResponseWriter, r *http.Request) {
	if !parseUploadForm(w, r) {
		return
	}

	orders, ok := retrieveCSVFile(w, r, "orders_file", true)
	if !ok {
		return
	}
	defer orders.Close()

	result, err := h.analysisService.AnalyzeCSV("robinhood", orders, nil)
	h.respond(w, result, err)
}

// HandleGetAnalysis returns a recently computed result by run ID, with ETag
// support so pollers can avoid re-downloading unchanged reports.
func (h *AnalysisHandler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runID")

	result, err := h.analysisService.GetResult(runID)
	if err != nil {
		if errors.Is(err, services.ErrResultNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("no analysis result for run %s", runID), http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, "error retrieving analysis result", http.StatusInternalServerError)
		return
	}

	if etag, err := utils.GenerateETag(result); err == nil {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *AnalysisHandler) respond(w http.ResponseWriter, result any, err error) {
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			logger.L.Warn("Analysis failed on unreadable input", "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error processing files. Please check the format: %v", err), http.StatusBadRequest)
		} else {
			logger.L.Error("Internal error during analysis", "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding JSON response for analysis result", "error", err)
	}
}

func parseUploadForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return false
	}
	return true
}

// retrieveCSVFile fetches and validates one uploaded file. The second return
// value is false when a response has already been written. An absent optional
// file yields (nil, true).
func retrieveCSVFile(w http.ResponseWriter, r *http.Request, field string, required bool) (multipart.File, bool) {
	file, fileHeader, err := r.FormFile(field)
	if err != nil {
		if !required {
			return nil, true
		}
		logger.L.Warn("Failed to retrieve file from request", "field", field, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Failed to retrieve file. Ensure '%s' field is used.", field), http.StatusBadRequest)
		return nil, false
	}

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		file.Close()
		logger.L.Warn("Uploaded file header reports size too large", "field", field, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return nil, false
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		file.Close()
		logger.L.Warn("Invalid client-declared file type", "field", field, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		file.Close()
		logger.L.Warn("Server-side file content validation failed", "field", field, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	logger.L.Info("Upload validated", "field", field, "filename", fileHeader.Filename, "clientType", clientContentType)
	return file, true
}
