package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestPlaidService(host string) *plaidServiceImpl {
	return &plaidServiceImpl{
		httpClient:   &http.Client{Timeout: 5 * time.Second},
		host:         host,
		clientID:     "test-client",
		secret:       "test-secret",
		payloadCache: cache.New(time.Minute, time.Minute),
		limiter:      rate.NewLimiter(rate.Inf, 1),
	}
}

func TestPlaidGetHoldingsResolvesTickers(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, "/investments/holdings/get", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-client", body["client_id"], "credentials travel in the body")
		assert.Equal(t, "tok-1", body["access_token"])

		json.NewEncoder(w).Encode(map[string]any{
			"holdings": []map[string]any{
				{"security_id": "sec-voo", "quantity": 12.0, "institution_value": 4920.0, "cost_basis": 4200.0},
				{"security_id": "sec-unknown", "quantity": 1.0, "institution_value": 10.0},
			},
			"securities": []map[string]any{
				{"security_id": "sec-voo", "ticker_symbol": "VOO", "type": "etf"},
			},
		})
	}))
	defer server.Close()

	service := newTestPlaidService(server.URL)
	holdings, err := service.GetHoldings(context.Background(), "tok-1")
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	assert.Equal(t, "VOO", holdings[0].Symbol)
	assert.Equal(t, 4920.0, holdings[0].InstitutionValue)
	assert.Equal(t, "etf", holdings[0].SecurityType)
	assert.Equal(t, "", holdings[1].Symbol, "unresolvable securities keep an empty symbol")

	// Second fetch for the same token is served from the cache.
	_, err = service.GetHoldings(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPlaidGetTransactionsSendsWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/investments/transactions/get", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2024-01-01", body["start_date"])
		assert.Equal(t, "2024-06-30", body["end_date"])

		json.NewEncoder(w).Encode(map[string]any{
			"investment_transactions": []map[string]any{
				{"security_id": "sec-voo", "date": "2024-03-10", "amount": -15.25, "type": "cash", "subtype": "dividend"},
			},
			"securities": []map[string]any{
				{"security_id": "sec-voo", "ticker_symbol": "VOO", "type": "etf"},
			},
		})
	}))
	defer server.Close()

	service := newTestPlaidService(server.URL)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	transactions, err := service.GetTransactions(context.Background(), "tok-1", start, end)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "VOO", transactions[0].Symbol)
	assert.Equal(t, "dividend", transactions[0].Subtype)
}

func TestPlaidTokenFlows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/link/token/create":
			json.NewEncoder(w).Encode(map[string]string{"link_token": "link-1"})
		case "/item/public_token/exchange":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "access-1"})
		case "/sandbox/public_token/create":
			json.NewEncoder(w).Encode(map[string]string{"public_token": "public-1"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	service := newTestPlaidService(server.URL)
	ctx := context.Background()

	linkToken, err := service.CreateLinkToken(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "link-1", linkToken)

	accessToken, err := service.ExchangePublicToken(ctx, "pub-1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", accessToken)

	publicToken, err := service.CreateSandboxPublicToken(ctx, "ins_109512")
	require.NoError(t, err)
	assert.Equal(t, "public-1", publicToken)
}

func TestPlaidErrorStatusSurfacesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_code":"INVALID_ACCESS_TOKEN"}`))
	}))
	defer server.Close()

	service := newTestPlaidService(server.URL)
	_, err := service.GetHoldings(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "INVALID_ACCESS_TOKEN")
}

func TestPlaidRequiresCredentials(t *testing.T) {
	service := newTestPlaidService("http://unused.invalid")
	service.clientID = ""

	_, err := service.CreateLinkToken(context.Background(), "u-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials not configured")
}
