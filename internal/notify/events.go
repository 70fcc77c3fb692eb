package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/streadway/amqp"
)

const orderPlacedRoutingKey = "order.placed"

// Publisher публикация в брокер сообщений.
type Publisher interface {
	Publish(exchange, routingKey string, msg amqp.Publishing) error
}

// EventSender публикует событие order.placed для внутренних потребителей.
type EventSender struct {
	publisher Publisher
	exchange  string
}

// NewEventSender создаёт канал событий в exchange.
func NewEventSender(publisher Publisher, exchange string) *EventSender {
	return &EventSender{publisher: publisher, exchange: exchange}
}

// Channel имя канала.
func (s *EventSender) Channel() string { return "event" }

type orderPlacedEvent struct {
	Event       string    `json:"event"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Phone       string    `json:"phone"`
	Total       string    `json:"total"`
	ItemsCount  int       `json:"items_count"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

// Send публикует order.placed в JSON с persistent-доставкой.
func (s *EventSender) Send(ctx context.Context, order *models.Order) error {
	body, err := json.Marshal(orderPlacedEvent{
		Event:       orderPlacedRoutingKey,
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Phone:       order.PhoneNormalized,
		Total:       order.Total.String(),
		ItemsCount:  len(order.Items),
		Source:      string(order.OrderSource),
		CreatedAt:   order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.publisher.Publish(s.exchange, orderPlacedRoutingKey, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    order.ID.String(),
		Timestamp:    time.Now(),
		Body:         body,
	})
}
