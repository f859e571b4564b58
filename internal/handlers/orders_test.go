package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrders(t *testing.T) {
	f := newFixture(t)
	ann := f.signUp(t, "a@x.com", "")
	bob := f.signUp(t, "b@x.com", "")

	order := map[string]any{
		"totalAmount": 15.5,
		"totalCo2":    1.2,
		"items": []map[string]any{
			{"id": "p1", "name": "Bamboo Toothbrush", "price": 3.5, "co2Emission": 0.2},
			{"id": "p2", "name": "Steel Bottle", "price": 12.0, "co2Emission": 1.0},
		},
	}

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/orders/create", order, "").Code)

	w := f.do(http.MethodPost, "/api/orders/create", order, ann)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created orderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "a@x.com", created.UserEmail)
	assert.Equal(t, "COMPLETED", created.Status)
	assert.Equal(t, 1.2, created.TotalCO2Saved)
	require.Len(t, created.Items, 2)
	assert.Equal(t, "p2", created.Items[1].ProductID)

	w = f.do(http.MethodPost, "/api/orders/create", map[string]any{"totalAmount": 1, "totalCo2": 0, "items": []any{}}, ann)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodGet, "/api/orders/my-orders", nil, ann)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []orderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)

	w = f.do(http.MethodGet, "/api/orders/my-orders", nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
