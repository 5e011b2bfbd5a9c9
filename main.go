package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/folioletter/src/config"
	"github.com/username/folioletter/src/handlers"
	"github.com/username/folioletter/src/logger"
	"github.com/username/folioletter/src/processors"
	"github.com/username/folioletter/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Folioletter backend server starting...")

	factorCfg, err := processors.LoadFactorConfig(config.Cfg.FactorConfigPath)
	if err != nil {
		logger.L.Error("Failed to load factor configuration", "path", config.Cfg.FactorConfigPath, "error", err)
		stdlog.Fatalf("Failed to load factor configuration: %v", err)
	}

	logger.L.Info("Initializing caches...")
	resultCache := cache.New(15*time.Minute, 30*time.Minute)
	payloadCache := cache.New(5*time.Minute, 10*time.Minute)

	logger.L.Info("Initializing services and handlers...")
	plaidService := services.NewPlaidService(
		config.Cfg.PlaidClientID, config.Cfg.PlaidSecret, config.Cfg.PlaidEnvironment,
		config.Cfg.PlaidTimeout, payloadCache,
	)

	holdingsProcessor := processors.NewHoldingsProcessor()
	performanceProcessor := processors.NewPerformanceProcessor()
	factorProcessor := processors.NewFactorProcessor(factorCfg)
	allocationProcessor := processors.NewAllocationProcessor()
	advisoryProcessor := processors.NewAdvisoryProcessor(factorCfg)

	analysisService := services.NewAnalysisService(
		holdingsProcessor, performanceProcessor, factorProcessor,
		allocationProcessor, advisoryProcessor,
		plaidService, config.Cfg.AggregatorLookback, resultCache,
	)

	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	plaidHandler := handlers.NewPlaidHandler(plaidService, analysisService, config.Cfg.PlaidEnvironment)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/analyze/fidelity", analysisHandler.HandleAnalyzeFidelity)
	apiRouter.HandleFunc("POST /api/analyze/robinhood", analysisHandler.HandleAnalyzeRobinhood)
	apiRouter.HandleFunc("POST /api/analyze/plaid", plaidHandler.HandleAnalyzePlaid)
	apiRouter.HandleFunc("GET /api/analysis/{runID}", analysisHandler.HandleGetAnalysis)

	apiRouter.HandleFunc("POST /api/plaid/link-token", plaidHandler.HandleCreateLinkToken)
	apiRouter.HandleFunc("POST /api/plaid/exchange", plaidHandler.HandleExchangeToken)
	apiRouter.HandleFunc("POST /api/plaid/sandbox-token", plaidHandler.HandleCreateSandboxToken)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "FOLIOLETTER Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
