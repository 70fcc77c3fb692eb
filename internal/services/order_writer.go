package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	shippingInsideDhaka  = decimal.NewFromInt(80)
	shippingOutsideDhaka = decimal.NewFromInt(150)
)

// ShippingCost стоимость доставки по зоне. Всё, кроме inside_dhaka, считается доставкой за пределы Дакки.
func ShippingCost(zone models.ShippingZone) decimal.Decimal {
	if zone == models.ShippingZoneInsideDhaka {
		return shippingInsideDhaka
	}
	return shippingOutsideDhaka
}

// Subtotal сумма price * quantity по позициям.
func Subtotal(items []*models.OrderItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// OrderDraft данные заказа после валидации и разрешения позиций.
type OrderDraft struct {
	UserID          *uuid.UUID
	ShippingName    string
	ShippingPhone   string
	PhoneNormalized string
	ShippingAddress string
	ShippingZone    models.ShippingZone
	Notes           *string
	OrderSource     models.OrderSource
	Items           []*models.OrderItem
}

// OrderWriter сохраняет заголовок и позиции заказа в рамках переданной транзакции.
type OrderWriter struct {
	orders OrderStorage
}

// NewOrderWriter создаёт writer.
func NewOrderWriter(orders OrderStorage) *OrderWriter {
	return &OrderWriter{orders: orders}
}

// WriteTx считает суммы, выдаёт номер заказа и пишет обе таблицы.
// Коммит транзакции остаётся за вызывающим.
func (w *OrderWriter) WriteTx(ctx context.Context, tx pgx.Tx, draft *OrderDraft) (*models.Order, error) {
	zone := draft.ShippingZone
	if zone != models.ShippingZoneInsideDhaka {
		zone = models.ShippingZoneOutsideDhaka
	}
	source := draft.OrderSource
	if source == "" {
		source = models.OrderSourceWeb
	}

	subtotal := Subtotal(draft.Items)
	shipping := ShippingCost(zone)
	discount := decimal.Zero

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          draft.UserID,
		Status:          models.OrderStatusPending,
		PaymentMethod:   models.PaymentMethodCOD,
		PaymentStatus:   models.PaymentStatusPending,
		Subtotal:        subtotal,
		ShippingCost:    shipping,
		Discount:        discount,
		Total:           subtotal.Add(shipping).Sub(discount),
		ShippingName:    strings.TrimSpace(draft.ShippingName),
		ShippingPhone:   strings.TrimSpace(draft.ShippingPhone),
		PhoneNormalized: draft.PhoneNormalized,
		ShippingAddress: strings.TrimSpace(draft.ShippingAddress),
		ShippingZone:    zone,
		Notes:           draft.Notes,
		OrderSource:     source,
	}

	number, err := w.orders.NextOrderNumberTx(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("allocate order number: %w", err)
	}
	order.OrderNumber = number

	if err := w.orders.CreateTx(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for _, item := range draft.Items {
		item.OrderID = order.ID
	}
	if err := w.orders.CreateItemsTx(ctx, tx, draft.Items); err != nil {
		return nil, fmt.Errorf("create order items: %w", err)
	}
	order.Items = draft.Items

	return order, nil
}
