package service

import (
	"context"
	"log/slog"

	"github.com/gavran-magic/order-service/internal/entities"

	"github.com/google/uuid"
)

type ProductRepo interface {
	Products(ctx context.Context) ([]entities.Product, error)
	GetProductByID(ctx context.Context, productID uuid.UUID) (entities.Product, error)
	SeedProducts(ctx context.Context, products []entities.Product) error
}

type productService struct {
	logger *slog.Logger
	repo   ProductRepo
}

func NewProductService(logger *slog.Logger, repo ProductRepo) *productService {
	return &productService{
		logger: logger.With(slog.String("service", "product")),
		repo:   repo,
	}
}

func (s *productService) Products(ctx context.Context) ([]entities.Product, error) {
	return s.repo.Products(ctx)
}

func (s *productService) GetProductByID(ctx context.Context, rawID string) (entities.Product, error) {
	productID, err := uuid.Parse(rawID)
	if err != nil {
		return entities.Product{}, entities.ErrInvalidProductID
	}
	return s.repo.GetProductByID(ctx, productID)
}

const imageBase = "https://sanketpawarr68-jpg.github.io/gavran-magic/images"

var defaultCatalog = []entities.Product{
	{Name: "Vermicelli", Description: "Handmade traditional vermicelli", Weight: "500g", Price: 80, Image: imageBase + "/Vermicelli.jpg"},
	{Name: "Vermicelli", Description: "Handmade traditional vermicelli (Bulk)", Weight: "1kg", Price: 150, Image: imageBase + "/Vermicelli.jpg"},
	{Name: "Kurdai", Description: "Sun-dried Maharashtrian snack", Weight: "250g", Price: 70, Image: imageBase + "/kurdai.avif"},
	{Name: "Kurdai", Description: "Sun-dried Maharashtrian snack (Bulk)", Weight: "500g", Price: 130, Image: imageBase + "/kurdai.avif"},
	{Name: "Papad", Description: "Homemade crispy papad", Weight: "250g", Price: 90, Image: imageBase + "/papad.jpg"},
	{Name: "Papad", Description: "Homemade crispy papad (Bulk)", Weight: "500g", Price: 170, Image: imageBase + "/papad.jpg"},
}

// SeedDefaultCatalog fills the products table with the store's defaults.
// Runs as an application starter; existing rows are kept.
func (s *productService) SeedDefaultCatalog(ctx context.Context) error {
	if err := s.repo.SeedProducts(ctx, defaultCatalog); err != nil {
		return err
	}
	s.logger.Info("product catalog seeded", slog.Int("products", len(defaultCatalog)))
	return nil
}
