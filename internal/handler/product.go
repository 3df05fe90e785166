package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gavran-magic/order-service/internal/entities"
	"github.com/gavran-magic/order-service/pkg/utils"

	"github.com/go-chi/chi/v5"
)

type ProductService interface {
	Products(ctx context.Context) ([]entities.Product, error)
	GetProductByID(ctx context.Context, rawID string) (entities.Product, error)
}

type ProductHandler struct {
	logger *slog.Logger
	svc    ProductService
}

func NewProductHandler(logger *slog.Logger, svc ProductService) *ProductHandler {
	return &ProductHandler{
		logger: logger.With(slog.String("handler", "product")),
		svc:    svc,
	}
}

func (h *ProductHandler) Init(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.Products)
		r.Get("/{product_id}", h.GetProduct)
	})
}

// Products lists the catalog.
// @Summary      List products
// @Tags         products
// @Success      200  {array}  Product
// @Failure      500  {object}  utils.ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) Products(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.svc.Products(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list products", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	result := make([]Product, 0, len(products))
	for _, p := range products {
		result = append(result, ProductEntityToJSON(p))
	}
	utils.WriteJSON(w, result, http.StatusOK)
}

// GetProduct returns one catalog record.
// @Summary      Get product
// @Tags         products
// @Param        product_id  path  string  true  "Product identifier"
// @Success      200  {object}  Product
// @Failure      400  {object}  utils.ErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /products/{product_id} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rawID := chi.URLParam(r, "product_id")

	product, err := h.svc.GetProductByID(ctx, rawID)

	if errors.Is(err, entities.ErrInvalidProductID) {
		utils.WriteError(w, "Invalid product ID format", http.StatusBadRequest)
		return
	}
	if errors.Is(err, entities.ErrProductNotFound) {
		utils.WriteError(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get product", slog.Any("error", err), slog.String("product_id", rawID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, ProductEntityToJSON(product), http.StatusOK)
}
