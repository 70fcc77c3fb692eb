package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product товар каталога.
type Product struct {
	ID       uuid.UUID       `db:"id"`
	Name     string          `db:"name"`
	Price    decimal.Decimal `db:"price"`
	Image    *string         `db:"image"`
	Stock    int             `db:"stock"`
	IsActive bool            `db:"is_active"`
}

// ProductVariation вариация товара, может переопределять цену и остаток.
type ProductVariation struct {
	ID        uuid.UUID        `db:"id"`
	ProductID uuid.UUID        `db:"product_id"`
	Name      string           `db:"name"`
	Price     *decimal.Decimal `db:"price"`
	Stock     *int             `db:"stock"`
	IsActive  bool             `db:"is_active"`
}
