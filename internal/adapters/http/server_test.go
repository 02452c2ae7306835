package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sieve/internal/logging"
)

func newTestHandler() http.Handler {
	return NewHandler(logging.NewNop(), prometheus.NewRegistry())
}

func postValidate(t *testing.T, handler http.Handler, req ValidateRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/v1/validate", strings.NewReader(string(body)))
	handler.ServeHTTP(rr, r)
	return rr
}

func TestGetHealth(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest("GET", "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

func TestValidateValidDocument(t *testing.T) {
	rr := postValidate(t, newTestHandler(), ValidateRequest{
		Schema: "name: str()\nage: int(min=0)",
		Data:   "name: Bill\nage: 26",
		Strict: true,
	})

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Valid)
	assert.Empty(t, resp.Results[0].Errors)
}

func TestValidateInvalidDocument(t *testing.T) {
	rr := postValidate(t, newTestHandler(), ValidateRequest{
		Schema: "name: str()",
		Data:   "name: 42",
	})

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.Len(t, resp.Results, 1)
	assert.False(t, resp.Results[0].Valid)
	assert.Contains(t, resp.Results[0].Errors, "name: '42' is not a str.")
}

func TestValidateMultipleDocuments(t *testing.T) {
	rr := postValidate(t, newTestHandler(), ValidateRequest{
		Schema: "x: int()",
		Data:   "x: 1\n---\nx: nope",
	})

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Valid)
	assert.False(t, resp.Results[1].Valid)
}

func TestValidateStrictMode(t *testing.T) {
	req := ValidateRequest{
		Schema: "name: str()",
		Data:   "name: a\nextra: 1",
	}

	var resp ValidateResponse
	rr := postValidate(t, newTestHandler(), req)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)

	req.Strict = true
	rr = postValidate(t, newTestHandler(), req)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
}

func TestValidateRejectsBadSchema(t *testing.T) {
	rr := postValidate(t, newTestHandler(), ValidateRequest{
		Schema: "field: include()",
		Data:   "field: 1",
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "schema error")
}

func TestValidateRejectsMissingSchema(t *testing.T) {
	rr := postValidate(t, newTestHandler(), ValidateRequest{Data: "x: 1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestValidateRejectsBadJSON(t *testing.T) {
	handler := newTestHandler()

	rr := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/v1/validate", strings.NewReader("{not json"))
	handler.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	handler := NewHandler(logging.NewNop(), reg)

	postValidate(t, handler, ValidateRequest{Schema: "x: int()", Data: "x: 1"})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "sieve_validations_total")
}
