package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/utils"
)

const defaultOrderPlacedTemplate = "Dear {name}, your order {order_number} has been received. Total: Tk {total}. Thank you!"

// SettingsReader чтение настроек, нужных SMS-каналу.
type SettingsReader interface {
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
}

// SMSSender отправляет SMS о принятом заказе, если это включено в настройках.
type SMSSender struct {
	poster   *httpPoster
	settings SettingsReader
	apiURL   string
	apiKey   string
	senderID string
}

// NewSMSSender создаёт SMS-канал. Настройки читаются при каждой отправке.
func NewSMSSender(settings SettingsReader, apiURL, apiKey, senderID string, timeout time.Duration) *SMSSender {
	return &SMSSender{
		poster:   newHTTPPoster(timeout),
		settings: settings,
		apiURL:   apiURL,
		apiKey:   apiKey,
		senderID: senderID,
	}
}

// Channel имя канала для логов и метрик.
func (s *SMSSender) Channel() string { return "sms" }

type smsPayload struct {
	APIKey   string `json:"api_key"`
	SenderID string `json:"senderid"`
	Number   string `json:"number"`
	Message  string `json:"message"`
}

// Send отправляет SMS по шаблону из настроек. Выключенный канал молча пропускается.
func (s *SMSSender) Send(ctx context.Context, order *models.Order) error {
	values, err := s.settings.GetMany(ctx,
		models.SettingSMSEnabled,
		models.SettingSMSAutoSendOrderPlaced,
		models.SettingSMSTemplateOrderPlaced,
	)
	if err != nil {
		return fmt.Errorf("load sms settings: %w", err)
	}

	if !models.SettingEnabled(values[models.SettingSMSEnabled]) ||
		!models.SettingEnabled(values[models.SettingSMSAutoSendOrderPlaced]) {
		return nil
	}

	payload := smsPayload{
		APIKey:   s.apiKey,
		SenderID: s.senderID,
		Number:   utils.InternationalPhone(order.PhoneNormalized),
		Message:  renderOrderPlacedSMS(values[models.SettingSMSTemplateOrderPlaced], order),
	}
	return s.poster.postJSON(ctx, s.apiURL, nil, payload)
}

func renderOrderPlacedSMS(template string, order *models.Order) string {
	if strings.TrimSpace(template) == "" {
		template = defaultOrderPlacedTemplate
	}
	return strings.NewReplacer(
		"{name}", order.ShippingName,
		"{order_number}", order.OrderNumber,
		"{total}", order.Total.StringFixed(0),
	).Replace(template)
}
