package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyExists = errors.New("order already exists")
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var orderColumns = []string{
	"id", "order_number", "user_id", "status", "payment_method", "payment_status",
	"subtotal", "shipping_cost", "discount", "total",
	"shipping_name", "shipping_phone", "phone_normalized", "shipping_address", "shipping_zone",
	"tracking_number", "notes", "order_source", "created_at", "updated_at",
}

// PostgresOrderStorage хранит заказы и их позиции в PostgreSQL.
type PostgresOrderStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderStorage создаёт новый экземпляр PostgresOrderStorage.
func NewPostgresOrderStorage(pool *pgxpool.Pool) *PostgresOrderStorage {
	return &PostgresOrderStorage{pool: pool}
}

// InTx выполняет fn в одной транзакции. Ошибка fn откатывает транзакцию.
func (s *PostgresOrderStorage) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LockPhoneTx берёт транзакционную advisory-блокировку по нормализованному телефону.
// Параллельные заказы с одного номера выполняются последовательно.
func (s *PostgresOrderStorage) LockPhoneTx(ctx context.Context, tx pgx.Tx, phone string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, phone); err != nil {
		return fmt.Errorf("failed to lock phone: %w", err)
	}
	return nil
}

// NextOrderNumberTx выдаёт следующий человекочитаемый номер заказа.
func (s *PostgresOrderStorage) NextOrderNumberTx(ctx context.Context, tx pgx.Tx) (string, error) {
	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to allocate order number: %w", err)
	}
	return fmt.Sprintf("ORD-%06d", seq), nil
}

// CreateTx вставляет заголовок заказа.
func (s *PostgresOrderStorage) CreateTx(ctx context.Context, tx pgx.Tx, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	query, args, err := psql.Insert("orders").
		Columns(
			"id", "order_number", "user_id", "status", "payment_method", "payment_status",
			"subtotal", "shipping_cost", "discount", "total",
			"shipping_name", "shipping_phone", "phone_normalized", "shipping_address", "shipping_zone",
			"notes", "order_source",
		).
		Values(
			order.ID, order.OrderNumber, order.UserID, order.Status, order.PaymentMethod, order.PaymentStatus,
			order.Subtotal, order.ShippingCost, order.Discount, order.Total,
			order.ShippingName, order.ShippingPhone, order.PhoneNormalized, order.ShippingAddress, order.ShippingZone,
			order.Notes, order.OrderSource,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert order query: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrOrderAlreadyExists
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// CreateItemsTx вставляет все позиции заказа одним запросом.
func (s *PostgresOrderStorage) CreateItemsTx(ctx context.Context, tx pgx.Tx, items []*models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	builder := psql.Insert("order_items").Columns(
		"id", "order_id", "product_id", "variation_id",
		"product_name", "variation_name", "product_image", "price", "quantity",
	)
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		builder = builder.Values(
			item.ID, item.OrderID, item.ProductID, item.VariationID,
			item.ProductName, item.VariationName, item.ProductImage, item.Price, item.Quantity,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert items query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

// FindLatestByPhoneTx возвращает последний заказ с этого номера, созданный не раньше since.
func (s *PostgresOrderStorage) FindLatestByPhoneTx(ctx context.Context, tx pgx.Tx, normalized string, variants []string, since time.Time) (*models.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From("orders").
		Where(sq.Or{
			sq.Eq{"phone_normalized": normalized},
			sq.Eq{"shipping_phone": variants},
		}).
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build recent order query: %w", err)
	}

	return scanOrder(tx.QueryRow(ctx, query, args...))
}

// FindByPhone возвращает все заказы номера (новые первыми).
// Совпадение по последним 10 цифрам ловит номера, сохранённые с другим префиксом.
func (s *PostgresOrderStorage) FindByPhone(ctx context.Context, normalized string, variants []string, suffix string) ([]*models.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From("orders").
		Where(sq.Or{
			sq.Eq{"phone_normalized": normalized},
			sq.Eq{"shipping_phone": variants},
			sq.Like{"shipping_phone": "%" + suffix},
		}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build phone history query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query phone history: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return orders, nil
}

// scanOrder помогает читать заказ из строки результата.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.Status,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.Subtotal,
		&order.ShippingCost,
		&order.Discount,
		&order.Total,
		&order.ShippingName,
		&order.ShippingPhone,
		&order.PhoneNormalized,
		&order.ShippingAddress,
		&order.ShippingZone,
		&order.TrackingNumber,
		&order.Notes,
		&order.OrderSource,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	return &order, nil
}
