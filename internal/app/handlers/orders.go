package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mkurbatov/footballzone/internal/domain/models"
	"github.com/mkurbatov/footballzone/internal/security/jwtmiddleware"
	"github.com/mkurbatov/footballzone/internal/service"
)

// CreateOrderRequest представляет входной JSON оформления заказа
type CreateOrderRequest struct {
	ShippingAddressID *int64 `json:"shippingAddressId"`
	BillingAddressID  *int64 `json:"billingAddressId"`
	PaymentMethod     string `json:"paymentMethod" validate:"required"`
}

// OrdersResponse — обёртка списка заказов
type OrdersResponse struct {
	Orders []*models.Order `json:"orders"`
}

// OrderDetailResponse — заказ с позициями
type OrderDetailResponse struct {
	Order *models.Order       `json:"order"`
	Items []*models.OrderItem `json:"items"`
}

// OrderCreateHandler обрабатывает запрос POST /api/orders
func OrderCreateHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderCreateHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "paymentMethod is required", http.StatusBadRequest)
			return
		}

		receipt, err := orderService.CreateOrder(r.Context(), userID, req.ShippingAddressID, req.BillingAddressID, req.PaymentMethod)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrCartNotFound):
				http.Error(w, "cart not found", http.StatusNotFound)
			case errors.Is(err, service.ErrCartEmpty):
				http.Error(w, "cart is empty", http.StatusBadRequest)
			default:
				logger.Error("failed to create order", slog.Any("error", err))
				http.Error(w, "failed to create order", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(receipt); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// OrdersHandler обрабатывает запрос GET /api/orders
func OrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := orderService.ListOrders(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get orders", slog.Any("error", err))
			http.Error(w, "failed to get orders", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(OrdersResponse{Orders: orders}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// OrderDetailHandler обрабатывает запрос GET /api/orders/{orderId}
func OrderDetailHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderDetailHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		order, items, err := orderService.GetOrderDetail(r.Context(), orderID, userID)
		if err != nil {
			if errors.Is(err, service.ErrOrderNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to get order details", slog.Any("error", err))
			http.Error(w, "failed to get order details", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(OrderDetailResponse{Order: order, Items: items}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}
