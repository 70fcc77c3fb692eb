package notify

import (
	"context"
	"time"

	"github.com/agamariel/storefront/internal/models"
)

// EmailSender передаёт сводку заказа сервису отправки писем.
type EmailSender struct {
	poster     *httpPoster
	apiURL     string
	apiKey     string
	adminEmail string
}

// NewEmailSender создаёт канал писем администратору.
func NewEmailSender(apiURL, apiKey, adminEmail string, timeout time.Duration) *EmailSender {
	return &EmailSender{
		poster:     newHTTPPoster(timeout),
		apiURL:     apiURL,
		apiKey:     apiKey,
		adminEmail: adminEmail,
	}
}

// Channel имя канала.
func (s *EmailSender) Channel() string { return "email" }

type emailCustomer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type emailItem struct {
	Name      string  `json:"name"`
	Variation *string `json:"variation,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	LineTotal float64 `json:"line_total"`
}

type emailPayload struct {
	To           string        `json:"to,omitempty"`
	Subject      string        `json:"subject"`
	OrderID      string        `json:"order_id"`
	OrderNumber  string        `json:"order_number"`
	Customer     emailCustomer `json:"customer"`
	ShippingZone string        `json:"shipping_zone"`
	Subtotal     float64       `json:"subtotal"`
	ShippingCost float64       `json:"shipping_cost"`
	Discount     float64       `json:"discount"`
	Total        float64       `json:"total"`
	Items        []emailItem   `json:"items"`
	Notes        *string       `json:"notes,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Send передаёт сводку заказа почтовому сервису.
func (s *EmailSender) Send(ctx context.Context, order *models.Order) error {
	headers := map[string]string{}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}
	return s.poster.postJSON(ctx, s.apiURL, headers, s.buildPayload(order))
}

func (s *EmailSender) buildPayload(order *models.Order) emailPayload {
	items := make([]emailItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, emailItem{
			Name:      item.ProductName,
			Variation: item.VariationName,
			Quantity:  item.Quantity,
			Price:     item.Price.InexactFloat64(),
			LineTotal: item.LineTotal().InexactFloat64(),
		})
	}

	return emailPayload{
		To:          s.adminEmail,
		Subject:     "New order " + order.OrderNumber,
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Customer: emailCustomer{
			Name:    order.ShippingName,
			Phone:   order.ShippingPhone,
			Address: order.ShippingAddress,
		},
		ShippingZone: string(order.ShippingZone),
		Subtotal:     order.Subtotal.InexactFloat64(),
		ShippingCost: order.ShippingCost.InexactFloat64(),
		Discount:     order.Discount.InexactFloat64(),
		Total:        order.Total.InexactFloat64(),
		Items:        items,
		Notes:        order.Notes,
		CreatedAt:    order.CreatedAt,
	}
}
