package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gavran-magic/order-service/internal/entities"
	"github.com/gavran-magic/order-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	msgRegionNotServed = "Delivery available only in Maharashtra (Pincode 400xxx-445xxx)"
	msgNotServiceable  = "Service not available for this pincode"
)

type OrderService interface {
	CreateOrder(ctx context.Context, order entities.Order) (entities.Receipt, error)
	GetOrderByID(ctx context.Context, rawID string) (entities.Order, error)
	CancelOrder(ctx context.Context, rawID, reason string) error
	CustomerOrders(ctx context.Context, customerID string) ([]entities.Order, error)
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderService
}

func NewHTTPHandler(logger *slog.Logger, svc OrderService) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger.With(slog.String("handler", "http")),
		validate: newValidator(),
		svc:      svc,
	}
}

// newValidator reports violations by json field name, so a missing field is
// surfaced as the caller sent it ("pincode", not "Pincode").
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/user/{user_id}", h.CustomerOrders)
		r.Get("/{order_id}", h.GetOrder)
		r.Post("/{order_id}/cancel", h.CancelOrder)
	})
}

// CreateOrder places a new order.
// @Summary      Place an order
// @Description  Validates the delivery region, checks courier serviceability and books the shipment
// @Tags         orders
// @Accept       json
// @Param        order  body  CreateOrderRequest  true  "Order payload"
// @Success      201  {object}  CreateOrderResponse
// @Failure      400  {object}  utils.ErrorResponse  "Missing field or region not served"
// @Failure      500  {object}  utils.ErrorResponse
// @Router       /orders [post]
func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateOrderRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		ordersRejected.WithLabelValues("validation").Inc()
		utils.WriteValidationError(w, err)
		return
	}

	receipt, err := h.svc.CreateOrder(ctx, req.ToEntity())

	if errors.Is(err, entities.ErrRegionNotServed) {
		ordersRejected.WithLabelValues("region").Inc()
		utils.WriteError(w, msgRegionNotServed, http.StatusBadRequest)
		return
	}
	if errors.Is(err, entities.ErrNotServiceable) {
		ordersRejected.WithLabelValues("serviceability").Inc()
		utils.WriteError(w, msgNotServiceable, http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create order", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ordersPlaced.Inc()
	utils.WriteJSON(w, CreateOrderResponse{
		Message:    "Order placed successfully",
		OrderID:    receipt.OrderID.String(),
		TrackingID: receipt.TrackingID,
	}, http.StatusCreated)
}

// GetOrder returns an order by id.
// @Summary      Get order
// @Tags         orders
// @Param        order_id  path  string  true  "Order identifier"
// @Success      200  {object}  Order
// @Failure      400  {object}  utils.ErrorResponse  "Malformed identifier"
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /orders/{order_id} [get]
func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rawID := chi.URLParam(r, "order_id")

	order, err := h.svc.GetOrderByID(ctx, rawID)

	if errors.Is(err, entities.ErrInvalidOrderID) {
		utils.WriteError(w, "Invalid order ID format", http.StatusBadRequest)
		return
	}
	if errors.Is(err, entities.ErrOrderNotFound) {
		utils.WriteError(w, "Order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get order", slog.Any("error", err), slog.String("order_id", rawID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// CancelOrder cancels an order that has not reached a terminal status.
// @Summary      Cancel order
// @Tags         orders
// @Accept       json
// @Param        order_id  path  string              true   "Order identifier"
// @Param        body      body  CancelOrderRequest  false  "Cancellation reason"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  utils.ErrorResponse  "Order already terminal"
// @Failure      404  {object}  utils.ErrorResponse
// @Failure      500  {object}  utils.ErrorResponse
// @Router       /orders/{order_id}/cancel [post]
func (h *HTTPHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rawID := chi.URLParam(r, "order_id")

	// The body is optional; an absent or unparsable body means no reason.
	var req CancelOrderRequest
	utils.DecodeBody(r, &req)

	err := h.svc.CancelOrder(ctx, rawID, req.Reason)

	var notCancellable entities.NotCancellableError
	switch {
	case errors.Is(err, entities.ErrInvalidOrderID):
		utils.WriteError(w, "Invalid order ID format", http.StatusBadRequest)
	case errors.Is(err, entities.ErrOrderNotFound):
		utils.WriteError(w, "Order not found", http.StatusNotFound)
	case errors.As(err, &notCancellable):
		utils.WriteError(w, "Order cannot be cancelled. Current status: "+string(notCancellable.Status), http.StatusBadRequest)
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to cancel order", slog.Any("error", err), slog.String("order_id", rawID))
		utils.WriteError(w, "Failed to cancel order", http.StatusInternalServerError)
	default:
		ordersCancelled.Inc()
		utils.WriteJSON(w, MessageResponse{Message: "Order cancelled successfully"}, http.StatusOK)
	}
}

// CustomerOrders lists a customer's orders, most recent first.
// @Summary      List customer orders
// @Tags         orders
// @Param        user_id  path  string  true  "Customer identifier"
// @Success      200  {array}  Order
// @Failure      500  {object}  utils.ErrorResponse
// @Router       /orders/user/{user_id} [get]
func (h *HTTPHandler) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "user_id")

	orders, err := h.svc.CustomerOrders(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list orders", slog.Any("error", err), slog.String("user_id", userID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, OrderEntityToJSON(order))
	}
	utils.WriteJSON(w, result, http.StatusOK)
}
