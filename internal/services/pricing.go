package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinCartItems      = 1
	MaxCartItems      = 50
	MinItemQuantity   = 1
	MaxItemQuantity   = 99
	MaxCustomNameLen  = 150
	MaxCustomImageLen = 2048
	canonicalUUIDLen  = 36
	priceScale        = 2
)

var maxCustomPrice = decimal.NewFromInt(10_000_000)

// PricingResolver пересчитывает корзину по ценам каталога.
// Цена клиента принимается только у custom-позиций, не привязанных к каталогу.
type PricingResolver struct {
	products ProductStorage
}

// NewPricingResolver создаёт резолвер цен.
func NewPricingResolver(products ProductStorage) *PricingResolver {
	return &PricingResolver{products: products}
}

// parseCatalogID распознаёт id каталога. Всё, что не похоже на UUID, считается custom-позицией.
func parseCatalogID(s string) (uuid.UUID, bool) {
	if len(s) != canonicalUUIDLen {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Resolve возвращает позиции с серверными ценами и названиями.
// Любая ошибочная позиция отклоняет всю корзину.
func (r *PricingResolver) Resolve(ctx context.Context, items []models.CartItemRequest) ([]*models.OrderItem, error) {
	if len(items) < MinCartItems || len(items) > MaxCartItems {
		return nil, validationErrorf("cart must contain between %d and %d items", MinCartItems, MaxCartItems)
	}

	productIDs := make([]uuid.UUID, 0, len(items))
	variationIDs := make([]uuid.UUID, 0)
	seenProducts := make(map[uuid.UUID]struct{})
	seenVariations := make(map[uuid.UUID]struct{})

	for i, item := range items {
		if item.Quantity < MinItemQuantity || item.Quantity > MaxItemQuantity {
			return nil, validationErrorf("item %d: quantity must be between %d and %d", i+1, MinItemQuantity, MaxItemQuantity)
		}

		productID, ok := parseCatalogID(item.ProductID)
		if !ok {
			continue
		}
		if _, dup := seenProducts[productID]; !dup {
			seenProducts[productID] = struct{}{}
			productIDs = append(productIDs, productID)
		}

		if item.VariationID == nil || *item.VariationID == "" {
			continue
		}
		variationID, ok := parseCatalogID(*item.VariationID)
		if !ok {
			return nil, validationErrorf("item %d: invalid variation id", i+1)
		}
		if _, dup := seenVariations[variationID]; !dup {
			seenVariations[variationID] = struct{}{}
			variationIDs = append(variationIDs, variationID)
		}
	}

	products, err := r.products.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	variations := map[uuid.UUID]*models.ProductVariation{}
	if len(variationIDs) > 0 {
		variations, err = r.products.GetVariationsByIDs(ctx, variationIDs)
		if err != nil {
			return nil, fmt.Errorf("load variations: %w", err)
		}
	}

	resolved := make([]*models.OrderItem, 0, len(items))
	for i, item := range items {
		var (
			line *models.OrderItem
			err  error
		)
		if productID, ok := parseCatalogID(item.ProductID); ok {
			line, err = resolveCatalogItem(i, item, productID, products, variations)
		} else {
			line, err = resolveCustomItem(i, item)
		}
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, line)
	}

	return resolved, nil
}

func resolveCatalogItem(
	idx int,
	item models.CartItemRequest,
	productID uuid.UUID,
	products map[uuid.UUID]*models.Product,
	variations map[uuid.UUID]*models.ProductVariation,
) (*models.OrderItem, error) {
	product, ok := products[productID]
	if !ok || !product.IsActive {
		return nil, validationErrorf("item %d: product not found or unavailable", idx+1)
	}

	pid := product.ID
	line := &models.OrderItem{
		ProductID:    &pid,
		ProductName:  product.Name,
		ProductImage: product.Image,
		Price:        product.Price,
		Quantity:     item.Quantity,
	}

	if item.VariationID == nil || *item.VariationID == "" {
		return line, nil
	}

	variationID, _ := parseCatalogID(*item.VariationID)
	variation, ok := variations[variationID]
	if !ok || !variation.IsActive {
		return nil, validationErrorf("item %d: variation not found or unavailable", idx+1)
	}
	if variation.ProductID != product.ID {
		return nil, validationErrorf("item %d: variation does not belong to product", idx+1)
	}

	vid := variation.ID
	vname := variation.Name
	line.VariationID = &vid
	line.VariationName = &vname
	line.ProductName = fmt.Sprintf("%s (%s)", product.Name, variation.Name)
	if variation.Price != nil {
		line.Price = *variation.Price
	}

	return line, nil
}

func resolveCustomItem(idx int, item models.CartItemRequest) (*models.OrderItem, error) {
	var name string
	if item.ProductName != nil {
		name = strings.TrimSpace(*item.ProductName)
	}
	if name == "" || utf8.RuneCountInString(name) > MaxCustomNameLen {
		return nil, validationErrorf("item %d: custom item name is required (max %d characters)", idx+1, MaxCustomNameLen)
	}

	if item.Price == nil || !item.Price.IsPositive() || item.Price.GreaterThan(maxCustomPrice) {
		return nil, validationErrorf("item %d: custom item price must be greater than 0 and at most %s", idx+1, maxCustomPrice.String())
	}
	// Колонка price хранит два знака.
	price := item.Price.Round(priceScale)
	if !price.Equal(*item.Price) {
		return nil, validationErrorf("item %d: custom item price must have at most %d decimal places", idx+1, priceScale)
	}

	var image *string
	if item.ProductImage != nil && *item.ProductImage != "" {
		if len(*item.ProductImage) > MaxCustomImageLen {
			return nil, validationErrorf("item %d: image url is too long", idx+1)
		}
		img := *item.ProductImage
		image = &img
	}

	return &models.OrderItem{
		ProductName:  name,
		ProductImage: image,
		Price:        price,
		Quantity:     item.Quantity,
	}, nil
}
