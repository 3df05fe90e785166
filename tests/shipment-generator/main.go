package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type ShipmentEvent struct {
	OrderID    string `json:"order_id"`
	Status     string `json:"status"`
	TrackingID string `json:"tracking_id"`
}

var statuses = []string{"Shipped", "Delivered"}

func randomEvent(orderID string) ShipmentEvent {
	if orderID == "" {
		orderID = uuid.NewString()
	}
	return ShipmentEvent{
		OrderID:    orderID,
		Status:     statuses[rand.Intn(len(statuses))],
		TrackingID: uuid.NewString()[:13],
	}
}

func main() {
	broker := flag.String("broker", "localhost:9092", "kafka broker address")
	topic := flag.String("topic", "shipment-events", "topic to publish to")
	orderID := flag.String("order", "", "order id to report on (random when empty)")
	interval := flag.Duration("interval", 2*time.Second, "delay between events")
	flag.Parse()

	writer := &kafka.Writer{
		Addr:  kafka.TCP(*broker),
		Topic: *topic,
	}
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ticker := time.NewTicker(*interval)
	for {
		select {
		case <-ticker.C:
			event := randomEvent(*orderID)
			data, _ := json.Marshal(event)
			if err := writer.WriteMessages(ctx, kafka.Message{Value: data}); err != nil {
				log.Println("failed to publish event:", err)
				continue
			}
			log.Println("event published", event.OrderID, event.Status)
		case <-ctx.Done():
			return
		}
	}
}
