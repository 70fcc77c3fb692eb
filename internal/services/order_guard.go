package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/agamariel/storefront/internal/utils"
	"github.com/jackc/pgx/v5"
)

// DefaultCooldownHours используется, если cooldown_hours не задан или не число.
const DefaultCooldownHours = 12.0

// OrderGuard запрещает повторный заказ с того же телефона в течение кулдауна.
type OrderGuard struct {
	settings SettingsStorage
	orders   OrderStorage
}

// NewOrderGuard создаёт проверку кулдауна.
func NewOrderGuard(settings SettingsStorage, orders OrderStorage) *OrderGuard {
	return &OrderGuard{settings: settings, orders: orders}
}

// GuardPolicy настройки кулдауна, прочитанные до открытия транзакции.
type GuardPolicy struct {
	Enabled       bool
	CooldownHours float64
}

// LoadPolicy читает настройки кулдауна. Вызывается вне транзакции заказа.
func (g *OrderGuard) LoadPolicy(ctx context.Context) (GuardPolicy, error) {
	values, err := g.settings.GetMany(ctx, models.SettingTimeBlockingEnabled, models.SettingCooldownHours)
	if err != nil {
		return GuardPolicy{}, fmt.Errorf("load guard settings: %w", err)
	}

	return GuardPolicy{
		Enabled:       models.SettingEnabled(values[models.SettingTimeBlockingEnabled]),
		CooldownHours: parseCooldownHours(values[models.SettingCooldownHours]),
	}, nil
}

// CheckTx возвращает *TimeBlockedError, если с номера уже был заказ в окне кулдауна.
// tx должна быть той же транзакцией, в которой затем пишется заказ. Других соединений пула
// проверка не берёт.
func (g *OrderGuard) CheckTx(ctx context.Context, tx pgx.Tx, policy GuardPolicy, rawPhone, normalized string, now time.Time) error {
	if !policy.Enabled {
		return nil
	}

	cutoff := now.Add(-time.Duration(policy.CooldownHours * float64(time.Hour)))

	last, err := g.orders.FindLatestByPhoneTx(ctx, tx, normalized, utils.PhoneVariants(rawPhone, normalized), cutoff)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil
		}
		return fmt.Errorf("find recent order: %w", err)
	}

	return &TimeBlockedError{
		LastOrderNumber: last.OrderNumber,
		WaitHours:       waitHours(policy.CooldownHours, now.Sub(last.CreatedAt)),
	}
}

func parseCooldownHours(raw string) float64 {
	hours, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return DefaultCooldownHours
	}
	return hours
}

// waitHours округляет оставшееся время вверх, но не меньше часа.
func waitHours(cooldown float64, since time.Duration) int {
	wait := int(math.Ceil(cooldown - since.Hours()))
	if wait < 1 {
		return 1
	}
	return wait
}
