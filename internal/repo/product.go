package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gavran-magic/order-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var productColumns = []string{"product_id", "name", "description", "weight", "price", "image"}

func (r *postgresRepo) Products(ctx context.Context) ([]entities.Product, error) {
	query, args := r.qb.Select(productColumns...).
		From("products").
		OrderBy("name", "weight").
		MustSql()

	var products []Product
	if err := r.selectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select products: %w", err)
	}

	result := make([]entities.Product, 0, len(products))
	for _, p := range products {
		result = append(result, ProductToEntity(p))
	}
	return result, nil
}

func (r *postgresRepo) GetProductByID(ctx context.Context, productID uuid.UUID) (entities.Product, error) {
	query, args := r.qb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"product_id": productID}).
		MustSql()

	var product Product
	err := r.getContext(ctx, &product, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Product{}, entities.ErrProductNotFound
	}
	if err != nil {
		return entities.Product{}, fmt.Errorf("failed to get product: %w", err)
	}

	return ProductToEntity(product), nil
}

// SeedProducts inserts the default catalog. Existing records win, so seeding
// on every startup is safe.
func (r *postgresRepo) SeedProducts(ctx context.Context, products []entities.Product) error {
	if len(products) == 0 {
		return nil
	}

	q := r.qb.Insert("products").
		Columns(productColumns...).
		Suffix("ON CONFLICT (name, weight) DO NOTHING")

	for _, p := range products {
		id := p.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		q = q.Values(id, p.Name, p.Description, p.Weight, p.Price, p.Image)
	}

	query, args := q.MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	return nil
}
