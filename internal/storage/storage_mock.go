package storage

import (
	"context"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MockOrderStorage - мок для тестирования (экспортируемый для использования в других пакетах).
// InTx по умолчанию вызывает fn с nil-транзакцией.
type MockOrderStorage struct {
	InTxFunc                func(ctx context.Context, fn func(tx pgx.Tx) error) error
	LockPhoneTxFunc         func(ctx context.Context, tx pgx.Tx, phone string) error
	NextOrderNumberTxFunc   func(ctx context.Context, tx pgx.Tx) (string, error)
	CreateTxFunc            func(ctx context.Context, tx pgx.Tx, order *models.Order) error
	CreateItemsTxFunc       func(ctx context.Context, tx pgx.Tx, items []*models.OrderItem) error
	FindLatestByPhoneTxFunc func(ctx context.Context, tx pgx.Tx, normalized string, variants []string, since time.Time) (*models.Order, error)
	FindByPhoneFunc         func(ctx context.Context, normalized string, variants []string, suffix string) ([]*models.Order, error)
}

func (m *MockOrderStorage) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if m.InTxFunc != nil {
		return m.InTxFunc(ctx, fn)
	}
	return fn(nil)
}

func (m *MockOrderStorage) LockPhoneTx(ctx context.Context, tx pgx.Tx, phone string) error {
	if m.LockPhoneTxFunc != nil {
		return m.LockPhoneTxFunc(ctx, tx, phone)
	}
	return nil
}

func (m *MockOrderStorage) NextOrderNumberTx(ctx context.Context, tx pgx.Tx) (string, error) {
	if m.NextOrderNumberTxFunc != nil {
		return m.NextOrderNumberTxFunc(ctx, tx)
	}
	return "ORD-001000", nil
}

func (m *MockOrderStorage) CreateTx(ctx context.Context, tx pgx.Tx, order *models.Order) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, order)
	}
	return nil
}

func (m *MockOrderStorage) CreateItemsTx(ctx context.Context, tx pgx.Tx, items []*models.OrderItem) error {
	if m.CreateItemsTxFunc != nil {
		return m.CreateItemsTxFunc(ctx, tx, items)
	}
	return nil
}

func (m *MockOrderStorage) FindLatestByPhoneTx(ctx context.Context, tx pgx.Tx, normalized string, variants []string, since time.Time) (*models.Order, error) {
	if m.FindLatestByPhoneTxFunc != nil {
		return m.FindLatestByPhoneTxFunc(ctx, tx, normalized, variants, since)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) FindByPhone(ctx context.Context, normalized string, variants []string, suffix string) ([]*models.Order, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, normalized, variants, suffix)
	}
	return []*models.Order{}, nil
}

// MockProductStorage мок каталога.
type MockProductStorage struct {
	GetProductsByIDsFunc   func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
	GetVariationsByIDsFunc func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.ProductVariation, error)
}

func (m *MockProductStorage) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	if m.GetProductsByIDsFunc != nil {
		return m.GetProductsByIDsFunc(ctx, ids)
	}
	return map[uuid.UUID]*models.Product{}, nil
}

func (m *MockProductStorage) GetVariationsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.ProductVariation, error) {
	if m.GetVariationsByIDsFunc != nil {
		return m.GetVariationsByIDsFunc(ctx, ids)
	}
	return map[uuid.UUID]*models.ProductVariation{}, nil
}

// MockSettingsStorage мок настроек на основе карты.
type MockSettingsStorage struct {
	Values      map[string]string
	GetManyFunc func(ctx context.Context, keys ...string) (map[string]string, error)
}

func (m *MockSettingsStorage) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	if m.GetManyFunc != nil {
		return m.GetManyFunc(ctx, keys...)
	}
	result := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.Values[k]; ok {
			result[k] = v
		}
	}
	return result, nil
}
