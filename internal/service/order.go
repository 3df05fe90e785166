package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gavran-magic/order-service/internal/config"
	"github.com/gavran-magic/order-service/internal/entities"
	"github.com/gavran-magic/order-service/internal/region"
	"github.com/gavran-magic/order-service/internal/shiprocket"
	"github.com/gavran-magic/order-service/pkg/trm"

	"github.com/google/uuid"
)

type OrderRepo interface {
	CreateOrder(ctx context.Context, o entities.Order) (entities.Order, error)
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (entities.Order, error)
	OrdersByCustomer(ctx context.Context, customerID string) ([]entities.Order, error)
	UpdateTracking(ctx context.Context, orderID uuid.UUID, trackingID string) error
	MarkCancelled(ctx context.Context, orderID uuid.UUID, reason string, at time.Time) (bool, error)
	UpdateShipmentStatus(ctx context.Context, orderID uuid.UUID, status entities.Status, trackingID string) (bool, error)
}

type Carrier interface {
	CheckServiceability(ctx context.Context, pickupPincode, deliveryPincode string, weight float64, cod bool) (shiprocket.Serviceability, error)
	CreateOrder(ctx context.Context, order shiprocket.OrderRequest) (shiprocket.OrderResponse, error)
}

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Remove(key string)
}

// Shipment payload defaults. No real package dimensions are collected at
// checkout, so every shipment is booked with placeholder values.
const (
	defaultWeightKg   = 0.5
	defaultDimensions = 10
	billingState      = "Maharashtra"
	billingCountry    = "India"
	defaultEmail      = "customer@example.com"
	pickupLocation    = "Primary"
	paymentMethod     = "COD"

	defaultCancelReason = "Not specified"

	// Prefix of locally synthesized tracking references used when the
	// carrier did not assign an order id.
	fallbackTrackingPrefix = "SR-LOCAL-"
)

type orderService struct {
	logger    *slog.Logger
	txManager trm.Manager
	repo      OrderRepo
	cache     Cache
	carrier   Carrier
	region    region.Filter
	shipping  config.Shipping
}

func NewOrderService(logger *slog.Logger, txManager trm.Manager, repo OrderRepo, cache Cache, carrier Carrier, filter region.Filter, shipping config.Shipping) *orderService {
	return &orderService{
		logger:    logger.With(slog.String("service", "order")),
		txManager: txManager,
		repo:      repo,
		cache:     cache,
		carrier:   carrier,
		region:    filter,
		shipping:  shipping,
	}
}

// CreateOrder runs the placement orchestration: region gate, best-effort
// serviceability check, durable insert, carrier shipment creation, tracking
// update. The order is persisted strictly before the shipment attempt; a
// failed shipment leaves the order Placed with a fallback tracking reference.
func (s *orderService) CreateOrder(ctx context.Context, order entities.Order) (entities.Receipt, error) {
	if !s.region.Eligible(order.Pincode) {
		return entities.Receipt{}, entities.ErrRegionNotServed
	}

	if err := s.checkServiceability(ctx, order.Pincode); err != nil {
		return entities.Receipt{}, err
	}

	order.Status = entities.StatusPlaced
	order.TrackingID = entities.TrackingPending

	var created entities.Order
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.repo.CreateOrder(ctx, order)
		return err
	})
	if err != nil {
		return entities.Receipt{}, fmt.Errorf("failed to persist order: %w", err)
	}

	trackingID := fallbackTrackingPrefix + created.ID.String()
	resp, err := s.carrier.CreateOrder(ctx, s.shipmentPayload(created))
	if err != nil {
		// Non-fatal: the order stays Placed and keeps the fallback tracking.
		s.logger.ErrorContext(ctx, "failed to create shipment at carrier",
			slog.String("order_id", created.ID.String()), slog.Any("error", err))
	} else {
		trackingID = strconv.FormatInt(resp.OrderID, 10)
	}

	if err := s.repo.UpdateTracking(ctx, created.ID, trackingID); err != nil {
		// The order is already durable; it stays queryable with the pending
		// sentinel until something overwrites it.
		s.logger.ErrorContext(ctx, "failed to update tracking",
			slog.String("order_id", created.ID.String()), slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", created.ID.String()), slog.String("tracking_id", trackingID))

	return entities.Receipt{OrderID: created.ID, TrackingID: trackingID}, nil
}

// checkServiceability applies the degradation policy. An authentication
// failure at the carrier never blocks checkout. Any other failure, or an
// empty courier list, blocks only in strict mode.
func (s *orderService) checkServiceability(ctx context.Context, deliveryPincode string) error {
	sv, err := s.carrier.CheckServiceability(ctx, s.shipping.PickupPincode, deliveryPincode, defaultWeightKg, true)

	switch {
	case errors.Is(err, shiprocket.ErrAuthFailed):
		s.logger.WarnContext(ctx, "carrier auth failed, allowing order",
			slog.String("pincode", deliveryPincode))
	case err != nil:
		if s.shipping.StrictServiceability {
			return entities.ErrNotServiceable
		}
		s.logger.WarnContext(ctx, "serviceability check failed, allowing order",
			slog.String("pincode", deliveryPincode), slog.Any("error", err))
	case !sv.Serviceable():
		if s.shipping.StrictServiceability {
			return entities.ErrNotServiceable
		}
		s.logger.WarnContext(ctx, "no couriers available, allowing order",
			slog.String("pincode", deliveryPincode))
	}

	return nil
}

func (s *orderService) shipmentPayload(o entities.Order) shiprocket.OrderRequest {
	items := make([]shiprocket.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, shiprocket.OrderItem{
			Name:         "Product " + it.ProductID,
			SKU:          it.ProductID,
			Units:        it.Quantity,
			SellingPrice: it.Price,
		})
	}

	email := o.Email
	if email == "" {
		email = defaultEmail
	}

	return shiprocket.OrderRequest{
		OrderID:             o.ID.String(),
		OrderDate:           o.CreatedAt.Format("2006-01-02 15:04"),
		PickupLocation:      pickupLocation,
		BillingCustomerName: o.Name,
		BillingAddress:      o.Address,
		BillingCity:         o.City,
		BillingPincode:      o.Pincode,
		BillingState:        billingState,
		BillingCountry:      billingCountry,
		BillingEmail:        email,
		BillingPhone:        o.Phone,
		ShippingIsBilling:   true,
		OrderItems:          items,
		PaymentMethod:       paymentMethod,
		SubTotal:            o.TotalPrice,
		Length:              defaultDimensions,
		Breadth:             defaultDimensions,
		Height:              defaultDimensions,
		Weight:              defaultWeightKg,
	}
}

func (s *orderService) GetOrderByID(ctx context.Context, rawID string) (entities.Order, error) {
	orderID, err := uuid.Parse(rawID)
	if err != nil {
		return entities.Order{}, entities.ErrInvalidOrderID
	}

	key := orderID.String()
	if data, ok := s.cache.Get(key); ok {
		var order entities.Order
		if err := order.Unmarshal(data); err == nil {
			return order, nil
		}
		s.cache.Remove(key)
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	if data, err := order.Marshal(); err == nil {
		s.cache.Set(key, data)
	}
	return order, nil
}

// CancelOrder transitions a non-terminal order to Cancelled. The guard is
// checked twice: once on the loaded order for a precise error message, and
// again inside the conditional update to survive concurrent transitions.
func (s *orderService) CancelOrder(ctx context.Context, rawID, reason string) error {
	orderID, err := uuid.Parse(rawID)
	if err != nil {
		return entities.ErrInvalidOrderID
	}
	if reason == "" {
		reason = defaultCancelReason
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Status.Cancellable() {
		return entities.NotCancellableError{Status: order.Status}
	}

	updated, err := s.repo.MarkCancelled(ctx, orderID, reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	if !updated {
		// Lost a race with another transition; report the status we lost to.
		current, err := s.repo.GetOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		return entities.NotCancellableError{Status: current.Status}
	}

	s.cache.Remove(orderID.String())

	// The carrier is not asked to cancel the shipment; that remains a manual
	// followup on their dashboard.
	s.logger.InfoContext(ctx, "order cancelled",
		slog.String("order_id", orderID.String()), slog.String("reason", reason))
	return nil
}

func (s *orderService) CustomerOrders(ctx context.Context, customerID string) ([]entities.Order, error) {
	return s.repo.OrdersByCustomer(ctx, customerID)
}

// ApplyShipmentUpdate records a carrier tracking event. Terminal orders are
// left untouched; an unknown order is an error so the event can be replayed
// or parked.
func (s *orderService) ApplyShipmentUpdate(ctx context.Context, update entities.ShipmentUpdate) error {
	if update.Status != entities.StatusShipped && update.Status != entities.StatusDelivered {
		return entities.ErrInvalidStatus
	}

	updated, err := s.repo.UpdateShipmentStatus(ctx, update.OrderID, update.Status, update.TrackingID)
	if err != nil {
		return fmt.Errorf("failed to apply shipment update: %w", err)
	}
	if !updated {
		if _, err := s.repo.GetOrderByID(ctx, update.OrderID); err != nil {
			return err
		}
		s.logger.WarnContext(ctx, "shipment update skipped for terminal order",
			slog.String("order_id", update.OrderID.String()), slog.String("status", string(update.Status)))
		return nil
	}

	s.cache.Remove(update.OrderID.String())
	return nil
}
