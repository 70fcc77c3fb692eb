package models

import "time"

// RiskTier уровень риска покупателя.
type RiskTier string

const (
	RiskTierNew    RiskTier = "new"
	RiskTierLow    RiskTier = "low"
	RiskTierMedium RiskTier = "medium"
	RiskTierHigh   RiskTier = "high"
)

// PhoneRequest тело запросов истории покупателя.
type PhoneRequest struct {
	Phone string `json:"phone"`
}

// CustomerRiskProfile агрегат по истории заказов одного телефона. Не хранится в БД.
type CustomerRiskProfile struct {
	Phone        string        `json:"phone"`
	TotalOrders  int           `json:"total_orders"`
	Delivered    int           `json:"delivered"`
	Cancelled    int           `json:"cancelled"`
	Pending      int           `json:"pending"`
	SuccessRate  *float64      `json:"success_rate"`
	TotalSpent   float64       `json:"total_spent"`
	RiskLevel    RiskTier      `json:"risk_level"`
	RecentOrders []RecentOrder `json:"recent_orders"`
}

// RecentOrder краткая запись заказа для истории.
type RecentOrder struct {
	ID          string    `json:"id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	Total       float64   `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

// CourierStats статистика посылок в одной курьерской сети.
type CourierStats struct {
	Name             string  `json:"name"`
	TotalParcels     int     `json:"total_parcel"`
	SuccessParcels   int     `json:"success_parcel"`
	CancelledParcels int     `json:"cancelled_parcel"`
	SuccessRatio     float64 `json:"success_ratio"`
}

// CourierReputationSnapshot нормализованный ответ стороннего сервиса репутации.
type CourierReputationSnapshot struct {
	Summary  CourierStats            `json:"summary"`
	Couriers map[string]CourierStats `json:"couriers"`
	Risk     RiskTier                `json:"risk_level"`
}

// CombinedHistoryResponse ответ combined-courier-history.
type CombinedHistoryResponse struct {
	Customer         *CustomerRiskProfile       `json:"customer"`
	Courier          *CourierReputationSnapshot `json:"courier"`
	CourierAvailable bool                       `json:"bd_courier_available"`
	Blocked          bool                       `json:"blocked,omitempty"`
	RateLimited      bool                       `json:"rateLimited,omitempty"`
	Unauthorized     bool                       `json:"unauthorized,omitempty"`
	CombinedRisk     RiskTier                   `json:"combined_risk"`
	Cached           bool                       `json:"cached"`
}
