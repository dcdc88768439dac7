package api_test

import (
	"bytes"
	"customer-service/internal/api"
	"customer-service/internal/api/handler/dto"
	mw "customer-service/internal/api/middleware"
	"customer-service/internal/config"
	"customer-service/internal/domain/customer"
	"customer-service/internal/event"
	"customer-service/internal/infrastructure/database/memory"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, rateLimit config.RateLimitConfig) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Metrics: config.MetricsConfig{Path: "/metrics"},
		Server:  config.ServerConfig{RateLimit: rateLimit},
	}

	repo := memory.NewCustomerRepository(logger)
	svc := customer.NewCustomerService(repo, event.NewLogEventPublisher(logger), logger)
	limiter := mw.NewRateLimiterMiddleware(rateLimit, logger)
	t.Cleanup(limiter.Stop)

	srv := httptest.NewServer(api.SetupRouter(svc, limiter, cfg, logger))
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeCustomer(t *testing.T, resp *http.Response) dto.CustomerResponse {
	t.Helper()
	var c dto.CustomerResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&c))
	return c
}

func TestCustomerLifecycle(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{Enabled: false})

	resp := doRequest(t, http.MethodGet, srv.URL+"/customers", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, srv.URL+"/customers", `{"firstname":"A","lastname":"dog"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, srv.URL+"/customers/1", resp.Header.Get("Location"))
	created := decodeCustomer(t, resp)
	require.NotNil(t, created.ID)
	assert.Equal(t, int64(1), *created.ID)
	assert.True(t, created.Valid)
	assert.Equal(t, int64(0), created.CreditLevel)

	resp = doRequest(t, http.MethodPost, srv.URL+"/customers", `{"firstname":"B","lastname":"cat","valid":false,"credit_level":-2}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, srv.URL+"/customers/2", resp.Header.Get("Location"))

	resp = doRequest(t, http.MethodPut, srv.URL+"/customers/1/downgrade-credit", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	downgraded := decodeCustomer(t, resp)
	assert.False(t, downgraded.Valid)
	assert.Equal(t, int64(-1), downgraded.CreditLevel)

	resp = doRequest(t, http.MethodPut, srv.URL+"/customers/1/upgrade-credit", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upgraded := decodeCustomer(t, resp)
	assert.True(t, upgraded.Valid)
	assert.Equal(t, int64(0), upgraded.CreditLevel)

	resp = doRequest(t, http.MethodGet, srv.URL+"/customers?lastname=cat", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []dto.CustomerResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&found))
	require.Len(t, found, 1)
	assert.Equal(t, "B", found[0].FirstName)

	resp = doRequest(t, http.MethodGet, srv.URL+"/customers?lastname=cat&firstname=", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&found))
	require.Len(t, found, 1)
	assert.Equal(t, "B", found[0].FirstName)

	resp = doRequest(t, http.MethodPut, srv.URL+"/customers/2", `{"firstname":"B","lastname":"lion"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeCustomer(t, resp)
	assert.Equal(t, "lion", updated.LastName)
	assert.True(t, updated.Valid)

	resp = doRequest(t, http.MethodDelete, srv.URL+"/customers/2", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doRequest(t, http.MethodDelete, srv.URL+"/customers/2", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doRequest(t, http.MethodGet, srv.URL+"/customers/2", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, http.MethodDelete, srv.URL+"/customers/reset", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doRequest(t, http.MethodGet, srv.URL+"/customers", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWriteRoutesRequireJSON(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{Enabled: false})

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/customers"},
		{http.MethodPut, "/customers/1"},
	} {
		req, err := http.NewRequest(tc.method, srv.URL+tc.path, bytes.NewBufferString(`{"firstname":"A","lastname":"dog"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "text/plain")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode, tc.path)
	}
}

func TestValidationErrorsOverHTTP(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{Enabled: false})

	resp := doRequest(t, http.MethodPost, srv.URL+"/customers", `{"firstname":"A","lastname":"dog","valid":true,"credit_level":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "credit_mismatch", errResp.Error.Code)

	resp = doRequest(t, http.MethodPost, srv.URL+"/customers", `null`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var nullResp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&nullResp))
	assert.Equal(t, "bad_data", nullResp.Error.Code)

	resp = doRequest(t, http.MethodGet, srv.URL+"/customers?valid=true", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/customers/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServiceRoutes(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{Enabled: false})

	resp := doRequest(t, http.MethodGet, srv.URL+"/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var index dto.IndexResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&index))
	assert.Equal(t, "Customer REST API Service", index.Name)
	assert.Equal(t, srv.URL+"/customers", index.URL)

	resp = doRequest(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/swagger/doc.json", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimitApplied(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1})

	resp := doRequest(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
