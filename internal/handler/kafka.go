package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gavran-magic/order-service/internal/config"
	"github.com/gavran-magic/order-service/internal/entities"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type ShipmentUpdater interface {
	ApplyShipmentUpdate(ctx context.Context, update entities.ShipmentUpdate) error
}

// ShipmentEvent is a carrier tracking event as published by the webhook
// pipeline. Shipped and Delivered transitions arrive here, not over HTTP.
type ShipmentEvent struct {
	OrderID    string `json:"order_id" validate:"required,uuid4"`
	Status     string `json:"status" validate:"required,oneof=Shipped Delivered"`
	TrackingID string `json:"tracking_id,omitempty"`
}

type kafkaHandler struct {
	dlq      *kafka.Writer
	reader   *kafka.Reader
	logger   *slog.Logger
	validate *validator.Validate
	updater  ShipmentUpdater
}

func NewKafkaHandler(logger *slog.Logger, cfg config.Kafka, updater ShipmentUpdater) *kafkaHandler {
	return &kafkaHandler{
		logger: logger.With(slog.String("handler", "kafka")),
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			GroupID: cfg.GroupID,
			Topic:   cfg.Topic,
			MaxWait: cfg.ReaderMaxWait,
		}),
		dlq: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
		validate: validator.New(),
		updater:  updater,
	}
}

func (h *kafkaHandler) Consume(ctx context.Context) {
	for {
		m, err := h.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				break
			}
			h.logger.Error("failed to fetch message", slog.Any("error", err))
			continue
		}

		if err := h.handleShipmentEvent(ctx, m); err != nil {
			shipmentEventsFailed.Inc()
			h.logger.Error("failed to handle shipment event", slog.Any("error", err))

			if err := h.writeToDLQ(ctx, m); err != nil {
				h.logger.Error("failed to write message to DLQ", slog.Any("error", err))
				continue
			}
			shipmentEventsDLQ.Inc()
		} else {
			shipmentEventsProcessed.Inc()
		}

		if err := h.reader.CommitMessages(ctx, m); err != nil {
			h.logger.Error("failed to commit message", slog.Any("error", err))
		}
	}
}

func (h *kafkaHandler) handleShipmentEvent(ctx context.Context, m kafka.Message) error {
	var event ShipmentEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal shipment event: %w", err)
	}

	if err := h.validate.Struct(event); err != nil {
		return fmt.Errorf("invalid shipment event: %w", err)
	}

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		return fmt.Errorf("invalid order id in shipment event: %w", err)
	}

	status, ok := entities.ParseStatus(event.Status)
	if !ok {
		return entities.ErrInvalidStatus
	}

	return h.updater.ApplyShipmentUpdate(ctx, entities.ShipmentUpdate{
		OrderID:    orderID,
		Status:     status,
		TrackingID: event.TrackingID,
	})
}

func (h *kafkaHandler) writeToDLQ(ctx context.Context, m kafka.Message) error {
	m.Topic = fmt.Sprintf("%s-dlq", m.Topic)
	return h.dlq.WriteMessages(ctx, m)
}

func (h *kafkaHandler) Close() error {
	if err := h.reader.Close(); err != nil {
		return err
	}
	return h.dlq.Close()
}
