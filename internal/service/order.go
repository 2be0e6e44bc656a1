package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkurbatov/footballzone/internal/domain/models"
	"github.com/mkurbatov/footballzone/internal/storage"
	"github.com/shopspring/decimal"
)

var (
	ErrCartNotFound  = errors.New("cart not found")
	ErrCartEmpty     = errors.New("cart is empty")
	ErrOrderNotFound = errors.New("order not found")
)

// Порог бесплатной доставки и плоские ставки — единственная ценовая политика магазина
var (
	freeShippingThreshold = decimal.NewFromInt(75)
	flatShippingCost      = decimal.NewFromInt(10)
	taxRate               = decimal.NewFromFloat(0.10)
)

// OrderReceipt — результат успешного оформления заказа.
type OrderReceipt struct {
	OrderID     int64           `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// OrderService определяет интерфейс оформления и чтения заказов.
type OrderService interface {
	CreateOrder(ctx context.Context, userID int64, shippingAddressID, billingAddressID *int64, paymentMethod string) (*OrderReceipt, error)
	ListOrders(ctx context.Context, userID int64) ([]*models.Order, error)
	GetOrderDetail(ctx context.Context, orderID, userID int64) (*models.Order, []*models.OrderItem, error)
}

type orderService struct {
	log       *slog.Logger
	db        *sql.DB
	cartRepo  storage.CartStorage
	orderRepo storage.OrderStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage, orderRepo storage.OrderStorage) OrderService {
	return &orderService{
		log:       log,
		db:        db,
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
	}
}

// newOrderNumber генерирует человекочитаемый номер заказа: префикс магазина,
// миллисекунды и случайный суффикс, чтобы два оформления в одну миллисекунду
// не получили одинаковый номер. Уникальность дополнительно держит ограничение БД.
func newOrderNumber() string {
	return fmt.Sprintf("FZ%d-%s", time.Now().UnixMilli(), strings.ToUpper(uuid.NewString()[:8]))
}

// CreateOrder превращает корзину в заказ: чтение позиций по актуальным ценам,
// расчёт итогов, вставка заказа и снимков позиций, очистка корзины — всё одной
// транзакцией. Любой сбой откатывает все частичные записи.
func (s *orderService) CreateOrder(ctx context.Context, userID int64, shippingAddressID, billingAddressID *int64, paymentMethod string) (*OrderReceipt, error) {
	const op = "service.OrderService.CreateOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("starting checkout transaction")

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrCartNotFound) {
			logger.Warn("cart not found")
			return nil, fmt.Errorf("%s: %w", op, ErrCartNotFound)
		}
		logger.Error("failed to get cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Читаем позиции с текущими ценами каталога внутри транзакции и с блокировкой
	// строк: из двух одновременных оформлений одной корзины заказ получает только
	// первое, второе дожидается коммита и видит пустую корзину
	items, err := s.cartRepo.GetCartItemsForUpdateTx(ctx, tx, cart.ID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get cart items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart items: %w", op, err)
	}
	if len(items) == 0 {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("cart is empty")
		return nil, fmt.Errorf("%s: %w", op, ErrCartEmpty)
	}

	// Итоги: цена фиксируется именно в этот момент
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal)
	}
	shippingCost := flatShippingCost
	if subtotal.GreaterThan(freeShippingThreshold) {
		shippingCost = decimal.Zero
	}
	taxAmount := subtotal.Mul(taxRate).Round(2)
	totalAmount := subtotal.Add(shippingCost).Add(taxAmount)

	order := &models.Order{
		UserID:            userID,
		OrderNumber:       newOrderNumber(),
		Subtotal:          subtotal,
		ShippingCost:      shippingCost,
		TaxAmount:         taxAmount,
		TotalAmount:       totalAmount,
		ShippingAddressID: shippingAddressID,
		BillingAddressID:  billingAddressID,
		PaymentMethod:     paymentMethod,
	}
	orderID, err := s.orderRepo.CreateOrderTx(ctx, tx, order)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	// Снимки позиций: имя и цена товара на момент оформления
	for _, item := range items {
		orderItem := &models.OrderItem{
			OrderID:     orderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Size:        item.Size,
			Color:       item.Color,
			UnitPrice:   item.Price,
			Subtotal:    item.Subtotal,
		}
		if err := s.orderRepo.CreateOrderItemTx(ctx, tx, orderItem); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to create order item", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to create order item: %w", op, err)
		}
	}

	if err := s.cartRepo.ClearCartTx(ctx, tx, cart.ID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to clear cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to clear cart: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order created successfully",
		slog.Int64("orderID", orderID),
		slog.String("orderNumber", order.OrderNumber),
		slog.String("totalAmount", totalAmount.String()),
	)
	return &OrderReceipt{
		OrderID:     orderID,
		OrderNumber: order.OrderNumber,
		TotalAmount: totalAmount,
	}, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.ListOrders"

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

// GetOrderDetail возвращает заказ с позициями только его владельцу.
// Чужой заказ неотличим от несуществующего.
func (s *orderService) GetOrderDetail(ctx context.Context, orderID, userID int64) (*models.Order, []*models.OrderItem, error) {
	const op = "service.OrderService.GetOrderDetail"

	order, err := s.orderRepo.GetOrderByID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		s.log.Error("failed to get order", slog.String("op", op), slog.Any("error", err))
		return nil, nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}

	items, err := s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		s.log.Error("failed to get order items", slog.String("op", op), slog.Any("error", err))
		return nil, nil, fmt.Errorf("%s: failed to get order items: %w", op, err)
	}
	if items == nil {
		items = []*models.OrderItem{}
	}
	return order, items, nil
}
