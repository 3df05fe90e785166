package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavran-magic/order-service/internal/entities"
	"github.com/gavran-magic/order-service/internal/handler"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrderService struct{ mock.Mock }

func (m *mockOrderService) CreateOrder(ctx context.Context, order entities.Order) (entities.Receipt, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(entities.Receipt), args.Error(1)
}

func (m *mockOrderService) GetOrderByID(ctx context.Context, rawID string) (entities.Order, error) {
	args := m.Called(ctx, rawID)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *mockOrderService) CancelOrder(ctx context.Context, rawID, reason string) error {
	args := m.Called(ctx, rawID, reason)
	return args.Error(0)
}

func (m *mockOrderService) CustomerOrders(ctx context.Context, customerID string) ([]entities.Order, error) {
	args := m.Called(ctx, customerID)
	orders, _ := args.Get(0).([]entities.Order)
	return orders, args.Error(1)
}

func newTestRouter(svc handler.OrderService) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewHTTPHandler(logger, svc)
	r := chi.NewRouter()
	h.Init(r)
	return r
}

func TestHTTPHandler_CreateOrder(t *testing.T) {
	orderID := uuid.MustParse("9f1c5a40-0000-4000-8000-000000000010")

	validBody := map[string]any{
		"user_id": "user-1",
		"products": []map[string]any{
			{"product_id": "sku-1", "quantity": 2, "price": 80},
		},
		"total_price": 160,
		"address":     "12 MG Road",
		"city":        "Pune",
		"pincode":     "411001",
		"phone":       "9876543210",
		"name":        "Asha",
	}

	testCases := []struct {
		name         string
		body         any
		mockBehavior func(svc *mockOrderService)
		wantStatus   int
		wantBody     string
	}{
		{
			name: "success",
			body: validBody,
			mockBehavior: func(svc *mockOrderService) {
				svc.On("CreateOrder", mock.Anything, mock.Anything).
					Return(entities.Receipt{OrderID: orderID, TrackingID: "555"}, nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"Order placed successfully"`,
		},
		{
			name: "missing pincode",
			body: func() map[string]any {
				b := map[string]any{}
				for k, v := range validBody {
					b[k] = v
				}
				delete(b, "pincode")
				return b
			}(),
			mockBehavior: func(svc *mockOrderService) {},
			wantStatus:   http.StatusBadRequest,
			wantBody:     `"Missing field: pincode"`,
		},
		{
			name: "empty products",
			body: func() map[string]any {
				b := map[string]any{}
				for k, v := range validBody {
					b[k] = v
				}
				b["products"] = []map[string]any{}
				return b
			}(),
			mockBehavior: func(svc *mockOrderService) {},
			wantStatus:   http.StatusBadRequest,
			wantBody:     `"products"`,
		},
		{
			name:         "malformed json",
			body:         "{not json",
			mockBehavior: func(svc *mockOrderService) {},
			wantStatus:   http.StatusBadRequest,
			wantBody:     `"invalid request body"`,
		},
		{
			name: "region not served",
			body: validBody,
			mockBehavior: func(svc *mockOrderService) {
				svc.On("CreateOrder", mock.Anything, mock.Anything).
					Return(entities.Receipt{}, entities.ErrRegionNotServed).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"Delivery available only in Maharashtra (Pincode 400xxx-445xxx)"`,
		},
		{
			name: "not serviceable",
			body: validBody,
			mockBehavior: func(svc *mockOrderService) {
				svc.On("CreateOrder", mock.Anything, mock.Anything).
					Return(entities.Receipt{}, entities.ErrNotServiceable).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"Service not available for this pincode"`,
		},
		{
			name: "internal error",
			body: validBody,
			mockBehavior: func(svc *mockOrderService) {
				svc.On("CreateOrder", mock.Anything, mock.Anything).
					Return(entities.Receipt{}, errors.New("db error")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `"internal server error"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockOrderService)
			tc.mockBehavior(svc)
			r := newTestRouter(svc)

			var buf bytes.Buffer
			switch body := tc.body.(type) {
			case string:
				buf.WriteString(body)
			default:
				require.NoError(t, json.NewEncoder(&buf).Encode(body))
			}

			req := httptest.NewRequest(http.MethodPost, "/orders", &buf)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			res := rr.Result()
			defer res.Body.Close()
			respBody, err := io.ReadAll(res.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, res.StatusCode)
			assert.Contains(t, string(respBody), tc.wantBody)

			if tc.wantStatus == http.StatusCreated {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(respBody, &resp))
				assert.Equal(t, orderID.String(), resp["order_id"])
				assert.Equal(t, "555", resp["tracking_id"])
			}

			svc.AssertExpectations(t)
		})
	}
}

func TestHTTPHandler_GetOrder(t *testing.T) {
	orderID := uuid.MustParse("9f1c5a40-0000-4000-8000-000000000011")
	validOrder := entities.Order{
		ID:         orderID,
		CustomerID: "user-1",
		Status:     entities.StatusPlaced,
		TrackingID: "555",
	}

	testCases := []struct {
		name         string
		rawID        string
		mockBehavior func(svc *mockOrderService)
		wantStatus   int
		wantBody     string
	}{
		{
			name:  "success",
			rawID: orderID.String(),
			mockBehavior: func(svc *mockOrderService) {
				svc.On("GetOrderByID", mock.Anything, orderID.String()).
					Return(validOrder, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"order_id":"` + orderID.String() + `"`,
		},
		{
			name:  "malformed id",
			rawID: "42",
			mockBehavior: func(svc *mockOrderService) {
				svc.On("GetOrderByID", mock.Anything, "42").
					Return(entities.Order{}, entities.ErrInvalidOrderID).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"Invalid order ID format"`,
		},
		{
			name:  "not found",
			rawID: orderID.String(),
			mockBehavior: func(svc *mockOrderService) {
				svc.On("GetOrderByID", mock.Anything, orderID.String()).
					Return(entities.Order{}, entities.ErrOrderNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `"Order not found"`,
		},
		{
			name:  "internal error",
			rawID: orderID.String(),
			mockBehavior: func(svc *mockOrderService) {
				svc.On("GetOrderByID", mock.Anything, orderID.String()).
					Return(entities.Order{}, errors.New("db error")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `"internal server error"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockOrderService)
			tc.mockBehavior(svc)
			r := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodGet, "/orders/"+tc.rawID, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			res := rr.Result()
			defer res.Body.Close()
			body, err := io.ReadAll(res.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, res.StatusCode)
			assert.Contains(t, string(body), tc.wantBody)

			if tc.wantStatus == http.StatusOK {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "Placed", resp["order_status"])
				assert.Equal(t, "555", resp["tracking_id"])
			}

			svc.AssertExpectations(t)
		})
	}
}

func TestHTTPHandler_CancelOrder(t *testing.T) {
	orderID := uuid.MustParse("9f1c5a40-0000-4000-8000-000000000012")

	testCases := []struct {
		name         string
		rawID        string
		body         string
		mockBehavior func(svc *mockOrderService)
		wantStatus   int
		wantBody     string
	}{
		{
			name:  "success with reason",
			rawID: orderID.String(),
			body:  `{"reason":"changed my mind"}`,
			mockBehavior: func(svc *mockOrderService) {
				svc.On("CancelOrder", mock.Anything, orderID.String(), "changed my mind").
					Return(nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"Order cancelled successfully"`,
		},
		{
			name:  "success without body",
			rawID: orderID.String(),
			mockBehavior: func(svc *mockOrderService) {
				svc.On("CancelOrder", mock.Anything, orderID.String(), "").
					Return(nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"Order cancelled successfully"`,
		},
		{
			name:  "already delivered",
			rawID: orderID.String(),
			mockBehavior: func(svc *mockOrderService) {
				svc.On("CancelOrder", mock.Anything, orderID.String(), "").
					Return(entities.NotCancellableError{Status: entities.StatusDelivered}).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"Order cannot be cancelled. Current status: Delivered"`,
		},
		{
			name:  "malformed id",
			rawID: "42",
			mockBehavior: func(svc *mockOrderService) {
				svc.On("CancelOrder", mock.Anything, "42", "").
					Return(entities.ErrInvalidOrderID).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"Invalid order ID format"`,
		},
		{
			name:  "not found",
			rawID: orderID.String(),
			mockBehavior: func(svc *mockOrderService) {
				svc.On("CancelOrder", mock.Anything, orderID.String(), "").
					Return(entities.ErrOrderNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `"Order not found"`,
		},
		{
			name:  "internal error",
			rawID: orderID.String(),
			mockBehavior: func(svc *mockOrderService) {
				svc.On("CancelOrder", mock.Anything, orderID.String(), "").
					Return(errors.New("db error")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `"Failed to cancel order"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockOrderService)
			tc.mockBehavior(svc)
			r := newTestRouter(svc)

			var body io.Reader
			if tc.body != "" {
				body = bytes.NewBufferString(tc.body)
			}

			req := httptest.NewRequest(http.MethodPost, "/orders/"+tc.rawID+"/cancel", body)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			res := rr.Result()
			defer res.Body.Close()
			respBody, err := io.ReadAll(res.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, res.StatusCode)
			assert.Contains(t, string(respBody), tc.wantBody)

			svc.AssertExpectations(t)
		})
	}
}

func TestHTTPHandler_CustomerOrders(t *testing.T) {
	first := entities.Order{ID: uuid.MustParse("9f1c5a40-0000-4000-8000-000000000013"), CustomerID: "user-1", Status: entities.StatusShipped}
	second := entities.Order{ID: uuid.MustParse("9f1c5a40-0000-4000-8000-000000000014"), CustomerID: "user-1", Status: entities.StatusPlaced}

	testCases := []struct {
		name         string
		userID       string
		mockBehavior func(svc *mockOrderService)
		wantStatus   int
		wantCount    int
	}{
		{
			name:   "two orders",
			userID: "user-1",
			mockBehavior: func(svc *mockOrderService) {
				svc.On("CustomerOrders", mock.Anything, "user-1").
					Return([]entities.Order{first, second}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantCount:  2,
		},
		{
			name:   "no orders is an empty list",
			userID: "user-2",
			mockBehavior: func(svc *mockOrderService) {
				svc.On("CustomerOrders", mock.Anything, "user-2").
					Return([]entities.Order{}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantCount:  0,
		},
		{
			name:   "internal error",
			userID: "user-1",
			mockBehavior: func(svc *mockOrderService) {
				svc.On("CustomerOrders", mock.Anything, "user-1").
					Return(nil, errors.New("db error")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockOrderService)
			tc.mockBehavior(svc)
			r := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodGet, "/orders/user/"+tc.userID, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			res := rr.Result()
			defer res.Body.Close()
			body, err := io.ReadAll(res.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, res.StatusCode)

			if tc.wantStatus == http.StatusOK {
				var resp []map[string]any
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Len(t, resp, tc.wantCount)
			}

			svc.AssertExpectations(t)
		})
	}
}
