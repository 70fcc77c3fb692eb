package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProductStorage читает товары и вариации. Каталог редактируется админкой, здесь только чтение.
type PostgresProductStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresProductStorage создаёт новый экземпляр PostgresProductStorage.
func NewPostgresProductStorage(pool *pgxpool.Pool) *PostgresProductStorage {
	return &PostgresProductStorage{pool: pool}
}

// GetProductsByIDs возвращает найденные товары по id. Отсутствующие id просто не попадают в карту.
func (s *PostgresProductStorage) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	result := make(map[uuid.UUID]*models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := psql.Select("id", "name", "price", "image", "stock", "is_active").
		From("products").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build products query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Stock, &p.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result[p.ID] = &p
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return result, nil
}

// GetVariationsByIDs возвращает найденные вариации по id.
func (s *PostgresProductStorage) GetVariationsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.ProductVariation, error) {
	result := make(map[uuid.UUID]*models.ProductVariation, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := psql.Select("id", "product_id", "name", "price", "stock", "is_active").
		From("product_variations").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build variations query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query variations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v models.ProductVariation
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &v.Stock, &v.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan variation: %w", err)
		}
		result[v.ID] = &v
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return result, nil
}
