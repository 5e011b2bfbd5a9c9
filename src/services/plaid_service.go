// src/services/plaid_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/username/folioletter/src/logger"
	plaidparser "github.com/username/folioletter/src/parsers/plaid"
)

var plaidHosts = map[string]string{
	"sandbox":     "https://sandbox.plaid.com",
	"development": "https://development.plaid.com",
	"production":  "https://production.plaid.com",
}

// plaidServiceImpl implements the PlaidService interface over the
// aggregator's JSON API.
type plaidServiceImpl struct {
	httpClient   *http.Client
	host         string
	clientID     string
	secret       string
	payloadCache *cache.Cache
	limiter      *rate.Limiter
}

// NewPlaidService creates the aggregator client for the given environment.
// Fetched payloads are cached per access token so repeated analyses within
// the cache window do not hammer the provider.
func NewPlaidService(clientID, secret, environment string, timeout time.Duration, payloadCache *cache.Cache) PlaidService {
	host, ok := plaidHosts[environment]
	if !ok {
		logger.L.Warn("Unknown aggregator environment, using sandbox", "environment", environment)
		host = plaidHosts["sandbox"]
	}
	return &plaidServiceImpl{
		httpClient:   &http.Client{Timeout: timeout},
		host:         host,
		clientID:     clientID,
		secret:       secret,
		payloadCache: payloadCache,
		limiter:      rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// --- Request/response shapes (only the fields this system reads) ---

type plaidCredentials struct {
	ClientID string `json:"client_id"`
	Secret   string `json:"secret"`
}

type linkTokenCreateRequest struct {
	plaidCredentials
	ClientName   string   `json:"client_name"`
	Language     string   `json:"language"`
	CountryCodes []string `json:"country_codes"`
	Products     []string `json:"products"`
	User         struct {
		ClientUserID string `json:"client_user_id"`
	} `json:"user"`
}

type linkTokenCreateResponse struct {
	LinkToken string `json:"link_token"`
}

type publicTokenExchangeRequest struct {
	plaidCredentials
	PublicToken string `json:"public_token"`
}

type publicTokenExchangeResponse struct {
	AccessToken string `json:"access_token"`
}

type sandboxPublicTokenRequest struct {
	plaidCredentials
	InstitutionID   string   `json:"institution_id"`
	InitialProducts []string `json:"initial_products"`
}

type sandboxPublicTokenResponse struct {
	PublicToken string `json:"public_token"`
}

type accessTokenRequest struct {
	plaidCredentials
	AccessToken string `json:"access_token"`
}

type plaidSecurity struct {
	SecurityID   string `json:"security_id"`
	TickerSymbol string `json:"ticker_symbol"`
	Type         string `json:"type"`
}

type holdingsGetResponse struct {
	Holdings []struct {
		SecurityID       string  `json:"security_id"`
		Quantity         float64 `json:"quantity"`
		InstitutionValue float64 `json:"institution_value"`
		CostBasis        float64 `json:"cost_basis"`
	} `json:"holdings"`
	Securities []plaidSecurity `json:"securities"`
}

type investmentsTransactionsRequest struct {
	plaidCredentials
	AccessToken string `json:"access_token"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type investmentsTransactionsResponse struct {
	InvestmentTransactions []struct {
		SecurityID string  `json:"security_id"`
		Date       string  `json:"date"`
		Amount     float64 `json:"amount"`
		Quantity   float64 `json:"quantity"`
		Price      float64 `json:"price"`
		Type       string  `json:"type"`
		Subtype    string  `json:"subtype"`
	} `json:"investment_transactions"`
	Securities []plaidSecurity `json:"securities"`
}

// --- API calls ---

func (s *plaidServiceImpl) CreateLinkToken(ctx context.Context, clientUserID string) (string, error) {
	req := linkTokenCreateRequest{
		plaidCredentials: s.creds(),
		ClientName:       "Folio Letter",
		Language:         "en",
		CountryCodes:     []string{"US"},
		Products:         []string{"investments", "transactions"},
	}
	req.User.ClientUserID = clientUserID

	var resp linkTokenCreateResponse
	if err := s.post(ctx, "/link/token/create", &req, &resp); err != nil {
		return "", fmt.Errorf("link token create: %w", err)
	}
	return resp.LinkToken, nil
}

func (s *plaidServiceImpl) ExchangePublicToken(ctx context.Context, publicToken string) (string, error) {
	req := publicTokenExchangeRequest{plaidCredentials: s.creds(), PublicToken: publicToken}

	var resp publicTokenExchangeResponse
	if err := s.post(ctx, "/item/public_token/exchange", &req, &resp); err != nil {
		return "", fmt.Errorf("public token exchange: %w", err)
	}
	return resp.AccessToken, nil
}

func (s *plaidServiceImpl) CreateSandboxPublicToken(ctx context.Context, institutionID string) (string, error) {
	req := sandboxPublicTokenRequest{
		plaidCredentials: s.creds(),
		InstitutionID:    institutionID,
		InitialProducts:  []string{"investments", "transactions"},
	}

	var resp sandboxPublicTokenResponse
	if err := s.post(ctx, "/sandbox/public_token/create", &req, &resp); err != nil {
		return "", fmt.Errorf("sandbox public token create: %w", err)
	}
	return resp.PublicToken, nil
}

func (s *plaidServiceImpl) GetHoldings(ctx context.Context, accessToken string) ([]plaidparser.Holding, error) {
	cacheKey := "plaid_holdings_" + accessToken
	if cached, found := s.payloadCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for aggregator holdings")
		return cached.([]plaidparser.Holding), nil
	}

	req := accessTokenRequest{plaidCredentials: s.creds(), AccessToken: accessToken}
	var resp holdingsGetResponse
	if err := s.post(ctx, "/investments/holdings/get", &req, &resp); err != nil {
		return nil, fmt.Errorf("holdings get: %w", err)
	}

	tickers := tickersBySecurityID(resp.Securities)
	holdings := make([]plaidparser.Holding, 0, len(resp.Holdings))
	for _, h := range resp.Holdings {
		security := tickers[h.SecurityID]
		holdings = append(holdings, plaidparser.Holding{
			Symbol:           security.TickerSymbol,
			Quantity:         h.Quantity,
			InstitutionValue: h.InstitutionValue,
			CostBasis:        h.CostBasis,
			SecurityType:     security.Type,
		})
	}

	s.payloadCache.Set(cacheKey, holdings, cache.DefaultExpiration)
	return holdings, nil
}

func (s *plaidServiceImpl) GetTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]plaidparser.TransactionRecord, error) {
	cacheKey := fmt.Sprintf("plaid_txs_%s_%s_%s", accessToken, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if cached, found := s.payloadCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for aggregator transactions")
		return cached.([]plaidparser.TransactionRecord), nil
	}

	req := investmentsTransactionsRequest{
		plaidCredentials: s.creds(),
		AccessToken:      accessToken,
		StartDate:        start.Format("2006-01-02"),
		EndDate:          end.Format("2006-01-02"),
	}
	var resp investmentsTransactionsResponse
	if err := s.post(ctx, "/investments/transactions/get", &req, &resp); err != nil {
		return nil, fmt.Errorf("transactions get: %w", err)
	}

	tickers := tickersBySecurityID(resp.Securities)
	transactions := make([]plaidparser.TransactionRecord, 0, len(resp.InvestmentTransactions))
	for _, t := range resp.InvestmentTransactions {
		transactions = append(transactions, plaidparser.TransactionRecord{
			Date:     t.Date,
			Symbol:   tickers[t.SecurityID].TickerSymbol,
			Amount:   t.Amount,
			Quantity: t.Quantity,
			Price:    t.Price,
			Type:     t.Type,
			Subtype:  t.Subtype,
		})
	}

	s.payloadCache.Set(cacheKey, transactions, cache.DefaultExpiration)
	return transactions, nil
}

func tickersBySecurityID(securities []plaidSecurity) map[string]plaidSecurity {
	out := make(map[string]plaidSecurity, len(securities))
	for _, sec := range securities {
		out[sec.SecurityID] = sec
	}
	return out
}

func (s *plaidServiceImpl) creds() plaidCredentials {
	return plaidCredentials{ClientID: s.clientID, Secret: s.secret}
}

// post sends one JSON request to the aggregator. Credentials travel in the
// request body the way the provider expects.
func (s *plaidServiceImpl) post(ctx context.Context, path string, body any, out any) error {
	if s.clientID == "" || s.secret == "" {
		return fmt.Errorf("aggregator credentials not configured (PLAID_CLIENT_ID / PLAID_SECRET)")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.host+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("aggregator request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("aggregator returned status %d: %s", resp.StatusCode, string(detail))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode aggregator response: %w", err)
	}
	return nil
}
