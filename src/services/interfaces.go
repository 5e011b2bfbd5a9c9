package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/username/folioletter/src/models"
	plaidparser "github.com/username/folioletter/src/parsers/plaid"
)

var (
	// ErrParsingFailed wraps structural input failures: the file or payload
	// could not be read at all. Row-level anomalies never produce it.
	ErrParsingFailed = errors.New("parsing failed")
	// ErrProcessingFailed wraps failures after parsing succeeded.
	ErrProcessingFailed = errors.New("processing failed")
	// ErrResultNotFound is returned when a run ID has no cached result.
	ErrResultNotFound = errors.New("analysis result not found")
)

// AnalysisService runs the full ingestion → canonicalization → metrics
// pipeline for one set of inputs.
type AnalysisService interface {
	// AnalyzeCSV processes an uploaded history export, with an optional
	// position-snapshot file for sources that ship one.
	AnalyzeCSV(source string, history io.Reader, positionsFile io.Reader) (*models.AnalysisResult, error)
	// AnalyzePlaid fetches the aggregator's holdings and transactions for an
	// access token and runs the same pipeline over them.
	AnalyzePlaid(ctx context.Context, accessToken string) (*models.AnalysisResult, error)
	// GetResult returns a recently computed result by run ID.
	GetResult(runID string) (*models.AnalysisResult, error)
}

// PlaidService is the thin client for the external financial-data aggregator.
// Auth and transport details stay inside this collaborator; callers see only
// decoded payload sequences.
type PlaidService interface {
	CreateLinkToken(ctx context.Context, clientUserID string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (string, error)
	GetHoldings(ctx context.Context, accessToken string) ([]plaidparser.Holding, error)
	GetTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]plaidparser.TransactionRecord, error)
	CreateSandboxPublicToken(ctx context.Context, institutionID string) (string, error)
}
