// src/services/analysis_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/folioletter/src/logger"
	"github.com/username/folioletter/src/models"
	"github.com/username/folioletter/src/parsers"
	plaidparser "github.com/username/folioletter/src/parsers/plaid"
	"github.com/username/folioletter/src/processors"
)

const ckAnalysisResult = "analysis_result_%s"

type analysisServiceImpl struct {
	holdingsProcessor    processors.HoldingsProcessor
	performanceProcessor processors.PerformanceProcessor
	factorProcessor      processors.FactorProcessor
	allocationProcessor  processors.AllocationProcessor
	advisoryProcessor    processors.AdvisoryProcessor
	plaidService         PlaidService
	plaidParser          *plaidparser.PlaidParser
	lookback             time.Duration
	resultCache          *cache.Cache
}

func NewAnalysisService(
	holdingsProcessor processors.HoldingsProcessor,
	performanceProcessor processors.PerformanceProcessor,
	factorProcessor processors.FactorProcessor,
	allocationProcessor processors.AllocationProcessor,
	advisoryProcessor processors.AdvisoryProcessor,
	plaidService PlaidService,
	lookback time.Duration,
	resultCache *cache.Cache,
) AnalysisService {
	return &analysisServiceImpl{
		holdingsProcessor:    holdingsProcessor,
		performanceProcessor: performanceProcessor,
		factorProcessor:      factorProcessor,
		allocationProcessor:  allocationProcessor,
		advisoryProcessor:    advisoryProcessor,
		plaidService:         plaidService,
		plaidParser:          plaidparser.NewParser(),
		lookback:             lookback,
		resultCache:          resultCache,
	}
}

func (s *analysisServiceImpl) AnalyzeCSV(source string, history io.Reader, positionsFile io.Reader) (*models.AnalysisResult, error) {
	overallStartTime := time.Now()
	runID := uuid.NewString()
	log := logger.L.With("runID", runID, "source", source)
	log.Info("Analysis run START")

	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	parsed, err := parser.Parse(history)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	if positionsFile != nil {
		positionParser, ok := parser.(parsers.PositionParser)
		if !ok {
			return nil, fmt.Errorf("%w: source %q does not support position snapshots", ErrParsingFailed, source)
		}
		snapshot, err := positionParser.ParsePositions(positionsFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
		}
		parsed.Positions = snapshot.Positions
		parsed.Skipped = append(parsed.Skipped, snapshot.Skipped...)
	}

	result := s.assemble(runID, source, parsed)
	log.Info("Analysis run END",
		"transactions", len(parsed.Transactions),
		"positions", len(parsed.Positions),
		"skippedRows", len(result.Skipped),
		"duration", time.Since(overallStartTime))
	return result, nil
}

func (s *analysisServiceImpl) AnalyzePlaid(ctx context.Context, accessToken string) (*models.AnalysisResult, error) {
	overallStartTime := time.Now()
	runID := uuid.NewString()
	log := logger.L.With("runID", runID, "source", "plaid")
	log.Info("Analysis run START")

	holdings, err := s.plaidService.GetHoldings(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: holdings fetch: %v", ErrParsingFailed, err)
	}

	end := time.Now()
	transactions, err := s.plaidService.GetTransactions(ctx, accessToken, end.Add(-s.lookback), end)
	if err != nil {
		return nil, fmt.Errorf("%w: transactions fetch: %v", ErrParsingFailed, err)
	}

	parsed, err := s.plaidParser.ParsePayloads(holdings, transactions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	result := s.assemble(runID, "plaid", parsed)
	log.Info("Analysis run END",
		"transactions", len(parsed.Transactions),
		"positions", len(parsed.Positions),
		"skippedRows", len(result.Skipped),
		"duration", time.Since(overallStartTime))
	return result, nil
}

// assemble reconciles the parsed records and derives every metric. The
// parsed input is owned by this run, so no shared state is mutated.
func (s *analysisServiceImpl) assemble(runID, source string, parsed *models.ParseResult) *models.AnalysisResult {
	holdings, reconcileSkipped := s.holdingsProcessor.Reconcile(parsed.Transactions, parsed.Positions)
	exposure := s.factorProcessor.Exposure(holdings)

	skipped := make([]models.SkippedRow, 0, len(parsed.Skipped)+len(reconcileSkipped))
	skipped = append(skipped, parsed.Skipped...)
	skipped = append(skipped, reconcileSkipped...)

	result := &models.AnalysisResult{
		RunID:           runID,
		Source:          source,
		Holdings:        holdings.Quantities,
		PositionDetails: holdings.Details,
		Performance:     s.performanceProcessor.Calculate(parsed.Transactions, parsed.Positions),
		FactorExposure:  exposure,
		Allocation:      s.allocationProcessor.Allocate(parsed.Positions),
		Advisories:      s.advisoryProcessor.Evaluate(holdings, exposure),
		Skipped:         skipped,
	}

	s.resultCache.Set(fmt.Sprintf(ckAnalysisResult, runID), result, cache.DefaultExpiration)
	return result
}

func (s *analysisServiceImpl) GetResult(runID string) (*models.AnalysisResult, error) {
	if cached, found := s.resultCache.Get(fmt.Sprintf(ckAnalysisResult, runID)); found {
		return cached.(*models.AnalysisResult), nil
	}
	return nil, ErrResultNotFound
}
