package notify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/utils"
)

// ConversionSender отправляет событие Purchase в Conversions API рекламной платформы.
type ConversionSender struct {
	poster      *httpPoster
	endpoint    string
	pixelID     string
	accessToken string
}

// NewConversionSender создаёт канал конверсий для пикселя pixelID.
func NewConversionSender(endpoint, pixelID, accessToken string, timeout time.Duration) *ConversionSender {
	return &ConversionSender{
		poster:      newHTTPPoster(timeout),
		endpoint:    strings.TrimRight(endpoint, "/"),
		pixelID:     pixelID,
		accessToken: accessToken,
	}
}

// Channel имя канала.
func (s *ConversionSender) Channel() string { return "conversion" }

type conversionUserData struct {
	Phone     []string `json:"ph,omitempty"`
	FirstName []string `json:"fn,omitempty"`
	LastName  []string `json:"ln,omitempty"`
	Country   []string `json:"country,omitempty"`
}

type conversionCustomData struct {
	Currency    string   `json:"currency"`
	Value       float64  `json:"value"`
	ContentIDs  []string `json:"content_ids"`
	ContentType string   `json:"content_type"`
	NumItems    int      `json:"num_items"`
	OrderID     string   `json:"order_id"`
}

type conversionEvent struct {
	EventName    string               `json:"event_name"`
	EventTime    int64                `json:"event_time"`
	EventID      string               `json:"event_id"`
	ActionSource string               `json:"action_source"`
	UserData     conversionUserData   `json:"user_data"`
	CustomData   conversionCustomData `json:"custom_data"`
}

type conversionPayload struct {
	Data []conversionEvent `json:"data"`
}

// Send отправляет событие Purchase с хешированными данными покупателя.
func (s *ConversionSender) Send(ctx context.Context, order *models.Order) error {
	u := fmt.Sprintf("%s/%s/events?access_token=%s", s.endpoint, url.PathEscape(s.pixelID), url.QueryEscape(s.accessToken))
	return s.poster.postJSON(ctx, u, nil, buildConversionPayload(order))
}

func buildConversionPayload(order *models.Order) conversionPayload {
	contentIDs := make([]string, 0, len(order.Items))
	numItems := 0
	for _, item := range order.Items {
		if item.ProductID != nil {
			contentIDs = append(contentIDs, item.ProductID.String())
		} else {
			contentIDs = append(contentIDs, "custom")
		}
		numItems += item.Quantity
	}

	first, last := splitName(order.ShippingName)
	userData := conversionUserData{
		Phone:   []string{hashIdentifier(utils.InternationalPhone(order.PhoneNormalized))},
		Country: []string{hashIdentifier("bd")},
	}
	if first != "" {
		userData.FirstName = []string{hashIdentifier(first)}
	}
	if last != "" {
		userData.LastName = []string{hashIdentifier(last)}
	}

	eventTime := order.CreatedAt
	if eventTime.IsZero() {
		eventTime = time.Now()
	}

	return conversionPayload{Data: []conversionEvent{{
		EventName:    "Purchase",
		EventTime:    eventTime.Unix(),
		EventID:      order.ID.String(),
		ActionSource: "website",
		UserData:     userData,
		CustomData: conversionCustomData{
			Currency:    "BDT",
			Value:       order.Total.InexactFloat64(),
			ContentIDs:  contentIDs,
			ContentType: "product",
			NumItems:    numItems,
			OrderID:     order.OrderNumber,
		},
	}}}
}

// hashIdentifier SHA-256 от нормализованного значения, как требует Conversions API.
func hashIdentifier(v string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(v))))
	return hex.EncodeToString(sum[:])
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}
