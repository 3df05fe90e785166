package shiprocket_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gavran-magic/order-service/internal/config"
	"github.com/gavran-magic/order-service/internal/shiprocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, baseURL string) *shiprocket.Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return shiprocket.New(logger, config.Shiprocket{
		BaseURL:  baseURL,
		Email:    "store@example.com",
		Password: "secret",
		Timeout:  time.Second,
	})
}

func TestClient_CheckServiceability(t *testing.T) {
	var logins atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			logins.Add(1)

			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "store@example.com", creds["email"])

			json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
		case "/courier/serviceability":
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			assert.Equal(t, "411001", r.URL.Query().Get("pickup_postcode"))
			assert.Equal(t, "421005", r.URL.Query().Get("delivery_postcode"))
			assert.Equal(t, "1", r.URL.Query().Get("cod"))

			w.Write([]byte(`{"data":{"available_courier_companies":[{"courier_company_id":51,"courier_name":"Delhivery","rate":52.4}]}}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)

	got, err := client.CheckServiceability(context.Background(), "411001", "421005", 0.5, true)
	require.NoError(t, err)
	assert.True(t, got.Serviceable())
	assert.Equal(t, "Delhivery", got.Couriers[0].CourierName)

	// Second call reuses the cached session token.
	got, err = client.CheckServiceability(context.Background(), "411001", "421005", 0.5, true)
	require.NoError(t, err)
	assert.True(t, got.Serviceable())
	assert.Equal(t, int32(1), logins.Load())
}

func TestClient_CheckServiceability_NoCouriers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
			return
		}
		w.Write([]byte(`{"data":{"available_courier_companies":[]}}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)

	got, err := client.CheckServiceability(context.Background(), "411001", "560001", 0.5, true)
	require.NoError(t, err)
	assert.False(t, got.Serviceable())
}

func TestClient_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			http.Error(w, `{"message":"bad credentials"}`, http.StatusUnauthorized)
			return
		}
		t.Fatalf("unexpected path %s", r.URL.Path)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)

	_, err := client.CheckServiceability(context.Background(), "411001", "421005", 0.5, true)
	assert.ErrorIs(t, err, shiprocket.ErrAuthFailed)

	_, err = client.CreateOrder(context.Background(), shiprocket.OrderRequest{OrderID: "abc"})
	assert.ErrorIs(t, err, shiprocket.ErrAuthFailed)

	assert.ErrorIs(t, client.Authenticate(context.Background()), shiprocket.ErrAuthFailed)
}

func TestClient_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
		case "/orders/create/adhoc":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "local-42", payload["order_id"])
			assert.Equal(t, "COD", payload["payment_method"])

			json.NewEncoder(w).Encode(map[string]any{"order_id": 98765, "shipment_id": 5555, "status": "NEW"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)

	got, err := client.CreateOrder(context.Background(), shiprocket.OrderRequest{
		OrderID:       "local-42",
		PaymentMethod: "COD",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(98765), got.OrderID)
	assert.Equal(t, int64(5555), got.ShipmentID)
}

func TestClient_CreateOrder_CarrierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
			return
		}
		http.Error(w, `{"message":"wrong pickup location"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)

	_, err := client.CreateOrder(context.Background(), shiprocket.OrderRequest{OrderID: "abc"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, shiprocket.ErrAuthFailed)
	assert.Contains(t, err.Error(), "wrong pickup location")
}
