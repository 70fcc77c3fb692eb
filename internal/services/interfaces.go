package services

import (
	"context"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderStorage определяет интерфейс для работы с заказами.
type OrderStorage interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	LockPhoneTx(ctx context.Context, tx pgx.Tx, phone string) error
	NextOrderNumberTx(ctx context.Context, tx pgx.Tx) (string, error)
	CreateTx(ctx context.Context, tx pgx.Tx, order *models.Order) error
	CreateItemsTx(ctx context.Context, tx pgx.Tx, items []*models.OrderItem) error
	FindLatestByPhoneTx(ctx context.Context, tx pgx.Tx, normalized string, variants []string, since time.Time) (*models.Order, error)
	FindByPhone(ctx context.Context, normalized string, variants []string, suffix string) ([]*models.Order, error)
}

// ProductStorage определяет чтение каталога.
type ProductStorage interface {
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
	GetVariationsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.ProductVariation, error)
}

// SettingsStorage определяет чтение настроек.
type SettingsStorage interface {
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
}

// OrderNotifier запускает уведомления о новом заказе. Dispatch не должен блокировать.
type OrderNotifier interface {
	Dispatch(order *models.Order)
}
