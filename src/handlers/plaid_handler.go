// src/handlers/plaid_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/username/folioletter/src/logger"
	"github.com/username/folioletter/src/services"
	"github.com/username/folioletter/src/utils"
)

type PlaidHandler struct {
	plaidService    services.PlaidService
	analysisService services.AnalysisService
	sandboxEnabled  bool
}

func NewPlaidHandler(plaidService services.PlaidService, analysisService services.AnalysisService, environment string) *PlaidHandler {
	return &PlaidHandler{
		plaidService:    plaidService,
		analysisService: analysisService,
		sandboxEnabled:  environment == "sandbox",
	}
}

// HandleCreateLinkToken issues a link token for the client-side account
// linking flow.
func (h *PlaidHandler) HandleCreateLinkToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientUserID string `json:"client_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.ClientUserID == "" {
		req.ClientUserID = "local-user"
	}

	linkToken, err := h.plaidService.CreateLinkToken(r.Context(), req.ClientUserID)
	if err != nil {
		logger.L.Error("Failed to create link token", "error", err)
		utils.SendJSONError(w, "failed to create link token", http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]string{"link_token": linkToken})
}

// HandleExchangeToken swaps a public token from the linking flow for an
// access token.
func (h *PlaidHandler) HandleExchangeToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PublicToken string `json:"public_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PublicToken == "" {
		utils.SendJSONError(w, "public_token is required", http.StatusBadRequest)
		return
	}

	accessToken, err := h.plaidService.ExchangePublicToken(r.Context(), req.PublicToken)
	if err != nil {
		logger.L.Error("Failed to exchange public token", "error", err)
		utils.SendJSONError(w, "failed to exchange public token", http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]string{"access_token": accessToken})
}

// HandleCreateSandboxToken creates a sandbox public token for testing the
// aggregator flow without a real institution link. Sandbox environment only.
func (h *PlaidHandler) HandleCreateSandboxToken(w http.ResponseWriter, r *http.Request) {
	if !h.sandboxEnabled {
		utils.SendJSONError(w, "sandbox tokens are only available in the sandbox environment", http.StatusForbidden)
		return
	}

	var req struct {
		InstitutionID string `json:"institution_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.InstitutionID == "" {
		// Houndstooth Bank: ships rich investment fixtures.
		req.InstitutionID = "ins_109512"
	}

	publicToken, err := h.plaidService.CreateSandboxPublicToken(r.Context(), req.InstitutionID)
	if err != nil {
		logger.L.Error("Failed to create sandbox public token", "error", err)
		utils.SendJSONError(w, "failed to create sandbox public token", http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]string{"public_token": publicToken})
}

// HandleAnalyzePlaid fetches the linked account's holdings and transactions
// and runs the analysis pipeline over them.
func (h *PlaidHandler) HandleAnalyzePlaid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		utils.SendJSONError(w, "access_token is required", http.StatusBadRequest)
		return
	}

	result, err := h.analysisService.AnalyzePlaid(r.Context(), req.AccessToken)
	if err != nil {
		logger.L.Error("Aggregator analysis failed", "error", err)
		utils.SendJSONError(w, "failed to analyze linked account", http.StatusBadGateway)
		return
	}
	writeJSON(w, result)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("Error encoding JSON response", "error", err)
	}
}
