package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSettingsStorage key/value настройки магазина.
type PostgresSettingsStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresSettingsStorage создаёт новый экземпляр PostgresSettingsStorage.
func NewPostgresSettingsStorage(pool *pgxpool.Pool) *PostgresSettingsStorage {
	return &PostgresSettingsStorage{pool: pool}
}

// GetMany возвращает значения запрошенных ключей. Отсутствующих ключей в карте нет.
func (s *PostgresSettingsStorage) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	query, args, err := psql.Select("key", "value").
		From("settings").
		Where(sq.Eq{"key": keys}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build settings query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		result[key] = value
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return result, nil
}
