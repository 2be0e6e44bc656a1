package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mkurbatov/footballzone/internal/security/jwtmiddleware"
	"github.com/mkurbatov/footballzone/internal/service"
	"github.com/mkurbatov/footballzone/internal/storage"
)

// AddToCartRequest представляет входной JSON для добавления товара в корзину
type AddToCartRequest struct {
	ProductID int64   `json:"productId" validate:"required"`
	Quantity  int     `json:"quantity"`
	Size      *string `json:"size"`
	Color     *string `json:"color"`
}

// UpdateCartRequest представляет входной JSON для изменения количества
type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

// CartMessageResponse — ответ операций изменения корзины
type CartMessageResponse struct {
	Message string `json:"message"`
}

// CartHandler обрабатывает запрос GET /api/cart
func CartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		view, err := cartService.GetCart(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get cart", slog.Any("error", err))
			http.Error(w, "failed to get cart", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(view); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// CartAddHandler обрабатывает запрос POST /api/cart/add
func CartAddHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartAddHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req AddToCartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "productId is required", http.StatusBadRequest)
			return
		}
		// Количество по умолчанию - одна штука
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		if err := cartService.AddItem(r.Context(), userID, req.ProductID, req.Quantity, req.Size, req.Color); err != nil {
			if errors.Is(err, service.ErrInvalidQuantity) {
				http.Error(w, "quantity must be at least 1", http.StatusBadRequest)
				return
			}
			logger.Error("failed to add to cart", slog.Any("error", err))
			http.Error(w, "failed to add to cart", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(CartMessageResponse{Message: "Item added to cart"}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// CartUpdateHandler обрабатывает запрос PUT /api/cart/update/{itemId}
func CartUpdateHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartUpdateHandler"
		logger := log.With(slog.String("op", op))

		if _, ok := jwtmiddleware.FromContext(r.Context()); !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
		if err != nil {
			http.Error(w, "invalid item id", http.StatusBadRequest)
			return
		}

		var req UpdateCartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if err := cartService.UpdateItem(r.Context(), itemID, req.Quantity); err != nil {
			if errors.Is(err, service.ErrInvalidQuantity) {
				http.Error(w, "quantity must be at least 1", http.StatusBadRequest)
				return
			}
			if errors.Is(err, storage.ErrCartItemNotFound) {
				http.Error(w, "cart item not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to update cart", slog.Any("error", err))
			http.Error(w, "failed to update cart", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(CartMessageResponse{Message: "Cart updated"}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// CartRemoveHandler обрабатывает запрос DELETE /api/cart/remove/{itemId}
func CartRemoveHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartRemoveHandler"
		logger := log.With(slog.String("op", op))

		if _, ok := jwtmiddleware.FromContext(r.Context()); !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
		if err != nil {
			http.Error(w, "invalid item id", http.StatusBadRequest)
			return
		}

		if err := cartService.RemoveItem(r.Context(), itemID); err != nil {
			logger.Error("failed to remove from cart", slog.Any("error", err))
			http.Error(w, "failed to remove from cart", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(CartMessageResponse{Message: "Item removed from cart"}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// CartClearHandler обрабатывает запрос DELETE /api/cart/clear
func CartClearHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartClearHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := cartService.Clear(r.Context(), userID); err != nil {
			logger.Error("failed to clear cart", slog.Any("error", err))
			http.Error(w, "failed to clear cart", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(CartMessageResponse{Message: "Cart cleared"}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}
