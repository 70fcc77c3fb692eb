package models

import "github.com/shopspring/decimal"

// PlaceOrderRequest тело запроса place-order.
type PlaceOrderRequest struct {
	UserID       *string           `json:"userId"`
	Items        []CartItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
	Shipping     ShippingRequest   `json:"shipping" validate:"required"`
	ShippingZone ShippingZone      `json:"shippingZone" validate:"omitempty,oneof=inside_dhaka outside_dhaka"`
	Notes        *string           `json:"notes" validate:"omitempty,max=1000"`
	OrderSource  OrderSource       `json:"orderSource" validate:"omitempty,oneof=web manual"`
}

// CartItemRequest строка корзины от клиента. Price учитывается только для custom-позиций.
type CartItemRequest struct {
	ProductID    string           `json:"productId"`
	VariationID  *string          `json:"variationId"`
	Quantity     int              `json:"quantity" validate:"min=1,max=99"`
	ProductName  *string          `json:"productName"`
	ProductImage *string          `json:"productImage"`
	Price        *decimal.Decimal `json:"price"`
}

// ShippingRequest данные доставки.
type ShippingRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Address string `json:"address" validate:"required,max=500"`
}

// PlaceOrderResponse успешный ответ place-order.
type PlaceOrderResponse struct {
	OrderID      string              `json:"orderId"`
	OrderNumber  string              `json:"orderNumber"`
	Subtotal     float64             `json:"subtotal"`
	ShippingCost float64             `json:"shippingCost"`
	Total        float64             `json:"total"`
	Items        []OrderItemResponse `json:"items"`
}

// OrderItemResponse позиция в ответе.
type OrderItemResponse struct {
	ProductID     *string `json:"productId"`
	VariationID   *string `json:"variationId"`
	Name          string  `json:"name"`
	VariationName *string `json:"variationName"`
	Image         *string `json:"image"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
}

// TimeBlockedResponse ответ 429 при срабатывании кулдауна.
type TimeBlockedResponse struct {
	Error           string `json:"error"`
	ErrorCode       string `json:"errorCode"`
	LastOrderNumber string `json:"lastOrderNumber"`
	WaitHours       int    `json:"waitHours"`
}

// ErrorResponse стандартное тело ошибки.
type ErrorResponse struct {
	Error string `json:"error"`
}
