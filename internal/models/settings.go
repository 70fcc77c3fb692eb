package models

import "strings"

// Ключи таблицы settings.
const (
	SettingTimeBlockingEnabled    = "time_blocking_enabled"
	SettingCooldownHours          = "cooldown_hours"
	SettingSMSEnabled             = "sms_enabled"
	SettingSMSAutoSendOrderPlaced = "sms_auto_send_order_placed"
	SettingSMSTemplateOrderPlaced = "sms_template_order_placed"
)

// SettingEnabled трактует значение настройки как флаг.
func SettingEnabled(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
