package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelane/fulfillment/internal/application/catalog"
	appcustomer "github.com/storelane/fulfillment/internal/application/customer"
	"github.com/storelane/fulfillment/internal/application/fulfillment"
	"github.com/storelane/fulfillment/internal/application/stock"
	"github.com/storelane/fulfillment/internal/infrastructure/gateway"
	"github.com/storelane/fulfillment/internal/infrastructure/id"
	"github.com/storelane/fulfillment/internal/infrastructure/memory"
)

func setup(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewStore()
	ids := id.NewUUIDGenerator()
	f := fulfillment.NewService(store, stock.NewLedger(), gateway.NewSimulator(), ids, nil)
	c := catalog.NewService(store, ids)
	cu := appcustomer.NewService(store, ids)
	return NewHandler(f, c, cu).Router()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	h := setup(t)

	rec := do(t, h, http.MethodPost, "/products", map[string]any{
		"name":     "widget",
		"price":    "10.00",
		"quantity": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var prod struct {
		ID string `json:"ID"`
	}
	decode(t, rec, &prod)
	require.NotEmpty(t, prod.ID)

	rec = do(t, h, http.MethodPost, "/customers", map[string]any{
		"name":  "Ada",
		"email": "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var cust struct {
		ID string `json:"ID"`
	}
	decode(t, rec, &cust)

	rec = do(t, h, http.MethodPost, "/orders", map[string]any{
		"customer_id": cust.ID,
		"items": []map[string]any{
			{"product_id": prod.ID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Success bool `json:"success"`
		Data    struct {
			OrderID string `json:"order_id"`
		} `json:"data"`
	}
	decode(t, rec, &created)
	require.True(t, created.Success)
	require.NotEmpty(t, created.Data.OrderID)

	rec = do(t, h, http.MethodPost, "/payments", map[string]any{
		"order_id":     created.Data.OrderID,
		"amount":       "20.00",
		"payment_type": "CC",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/orders/%s/confirm", created.Data.OrderID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/orders/"+created.Data.OrderID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Status string `json:"Status"`
	}
	decode(t, rec, &got)
	assert.Equal(t, "Confirmed", got.Status)
}

func TestRejectionStatusCodes(t *testing.T) {
	h := setup(t)

	t.Run("Unknown order on confirm", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/orders/ghost/confirm", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Payment against unknown order", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/payments", map[string]any{
			"order_id":     "ghost",
			"amount":       "1.00",
			"payment_type": "CC",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Malformed status string", func(t *testing.T) {
		rec := do(t, h, http.MethodPut, "/orders/ghost/status", map[string]any{
			"status": "shipped",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown product lookup", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/products/ghost", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Unknown status filter", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/orders?status=Nope", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
