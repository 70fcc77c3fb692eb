package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"
)

// ShippingZone зона доставки, от которой зависит стоимость.
type ShippingZone string

const (
	ShippingZoneInsideDhaka  ShippingZone = "inside_dhaka"
	ShippingZoneOutsideDhaka ShippingZone = "outside_dhaka"
)

// OrderSource источник заказа.
type OrderSource string

const (
	OrderSourceWeb    OrderSource = "web"
	OrderSourceManual OrderSource = "manual"
)

const (
	PaymentMethodCOD     = "cod"
	PaymentStatusPending = "pending"
)

// Order представляет заголовок заказа.
type Order struct {
	ID              uuid.UUID       `db:"id"`
	OrderNumber     string          `db:"order_number"`
	UserID          *uuid.UUID      `db:"user_id"`
	Status          OrderStatus     `db:"status"`
	PaymentMethod   string          `db:"payment_method"`
	PaymentStatus   string          `db:"payment_status"`
	Subtotal        decimal.Decimal `db:"subtotal"`
	ShippingCost    decimal.Decimal `db:"shipping_cost"`
	Discount        decimal.Decimal `db:"discount"`
	Total           decimal.Decimal `db:"total"`
	ShippingName    string          `db:"shipping_name"`
	ShippingPhone   string          `db:"shipping_phone"`
	PhoneNormalized string          `db:"phone_normalized"`
	ShippingAddress string          `db:"shipping_address"`
	ShippingZone    ShippingZone    `db:"shipping_zone"`
	TrackingNumber  *string         `db:"tracking_number"`
	Notes           *string         `db:"notes"`
	OrderSource     OrderSource     `db:"order_source"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`

	Items []*OrderItem `db:"-"`
}

// OrderItem строка заказа. ProductID пуст у произвольных (custom) позиций.
type OrderItem struct {
	ID            uuid.UUID       `db:"id"`
	OrderID       uuid.UUID       `db:"order_id"`
	ProductID     *uuid.UUID      `db:"product_id"`
	VariationID   *uuid.UUID      `db:"variation_id"`
	ProductName   string          `db:"product_name"`
	VariationName *string         `db:"variation_name"`
	ProductImage  *string         `db:"product_image"`
	Price         decimal.Decimal `db:"price"`
	Quantity      int             `db:"quantity"`
}

// LineTotal возвращает price * quantity.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
