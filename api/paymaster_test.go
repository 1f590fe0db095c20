package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elysium-stays/bookingledger/internal/paymaster"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymasterRouter(initialBalance uint64) (*gin.Engine, *paymaster.Paymaster) {
	gin.SetMode(gin.TestMode)
	sponsor := paymaster.New(initialBalance)
	router := gin.New()
	NewPaymasterHandler(sponsor).Register(router)
	return router, sponsor
}

func TestPaymasterHandler_status(t *testing.T) {
	router, _ := newPaymasterRouter(50_000)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/paymaster", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var response paymasterStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, uint64(50_000), response.AvailableBalance)
	assert.Equal(t, uint64(0), response.TotalSponsored)
	assert.Equal(t, uint64(0), response.GrantCount)
}

func TestPaymasterHandler_deposit(t *testing.T) {
	router, sponsor := newPaymasterRouter(0)

	body, _ := json.Marshal(depositRequest{Amount: 30_000})
	req := httptest.NewRequest("POST", "/api/paymaster/deposit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response paymasterStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, uint64(30_000), response.AvailableBalance)
	assert.Equal(t, uint64(30_000), sponsor.AvailableBalance())
}

func TestPaymasterHandler_deposit_zeroAmount(t *testing.T) {
	router, sponsor := newPaymasterRouter(0)

	body, _ := json.Marshal(depositRequest{Amount: 0})
	req := httptest.NewRequest("POST", "/api/paymaster/deposit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, uint64(0), sponsor.AvailableBalance())
}

var _ SponsorAdmin = (*paymaster.Paymaster)(nil)
