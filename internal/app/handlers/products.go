package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mkurbatov/footballzone/internal/domain/models"
	"github.com/mkurbatov/footballzone/internal/service"
	"github.com/mkurbatov/footballzone/internal/storage"
)

// ProductsResponse — обёртка списка товаров
type ProductsResponse struct {
	Products []*models.Product `json:"products"`
}

func writeProducts(w http.ResponseWriter, logger *slog.Logger, products []*models.Product) {
	if products == nil {
		products = []*models.Product{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ProductsResponse{Products: products}); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// ProductsHandler обрабатывает запрос GET /api/products
func ProductsHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := catalogService.ListProducts(r.Context())
		if err != nil {
			logger.Error("failed to get products", slog.Any("error", err))
			http.Error(w, "failed to get products", http.StatusInternalServerError)
			return
		}
		writeProducts(w, logger, products)
	}
}

// ProductsByCategoryHandler обрабатывает запрос GET /api/products/category/{slug}
func ProductsByCategoryHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductsByCategoryHandler"
		logger := log.With(slog.String("op", op))

		slug := chi.URLParam(r, "slug")
		if slug == "" {
			logger.Error("slug parameter is missing")
			http.Error(w, "slug parameter is required", http.StatusBadRequest)
			return
		}

		products, err := catalogService.ListByCategory(r.Context(), slug)
		if err != nil {
			logger.Error("failed to get products by category", slog.Any("error", err))
			http.Error(w, "failed to get products", http.StatusInternalServerError)
			return
		}
		writeProducts(w, logger, products)
	}
}

// ProductSearchHandler обрабатывает запрос GET /api/products/search?q=
func ProductSearchHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductSearchHandler"
		logger := log.With(slog.String("op", op))

		query := r.URL.Query().Get("q")
		if query == "" {
			http.Error(w, "search query required", http.StatusBadRequest)
			return
		}

		products, err := catalogService.Search(r.Context(), query)
		if err != nil {
			logger.Error("failed to search products", slog.Any("error", err))
			http.Error(w, "failed to search products", http.StatusInternalServerError)
			return
		}
		writeProducts(w, logger, products)
	}
}

// ProductResponse — обёртка одного товара
type ProductResponse struct {
	Product *models.Product `json:"product"`
}

// ProductHandler обрабатывает запрос GET /api/products/{id}
func ProductHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		product, err := catalogService.GetProduct(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				http.Error(w, "product not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to get product", slog.Any("error", err))
			http.Error(w, "failed to get product", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ProductResponse{Product: product}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// CategoriesResponse — обёртка списка категорий
type CategoriesResponse struct {
	Categories []*models.Category `json:"categories"`
}

// CategoriesHandler обрабатывает запрос GET /api/categories
func CategoriesHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CategoriesHandler"
		logger := log.With(slog.String("op", op))

		categories, err := catalogService.ListCategories(r.Context())
		if err != nil {
			logger.Error("failed to get categories", slog.Any("error", err))
			http.Error(w, "failed to get categories", http.StatusInternalServerError)
			return
		}
		if categories == nil {
			categories = []*models.Category{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(CategoriesResponse{Categories: categories}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}
