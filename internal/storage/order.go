package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkurbatov/footballzone/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
// Вставка заказа и его позиций выполняется только внутри транзакции оформления.
type OrderStorage interface {
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error)
	CreateOrderItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	GetOrderByID(ctx context.Context, orderID, userID int64) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error)
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

// CreateOrderTx вставляет строку заказа и возвращает её идентификатор
func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	query := `INSERT INTO orders (user_id, order_number, subtotal, shipping_cost, tax_amount,
	          total_amount, shipping_address_id, billing_address_id, payment_method, order_date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW()) RETURNING order_id`
	var orderID int64
	err := tx.QueryRowContext(ctx, query,
		order.UserID, order.OrderNumber, order.Subtotal, order.ShippingCost, order.TaxAmount,
		order.TotalAmount, order.ShippingAddressID, order.BillingAddressID, order.PaymentMethod,
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return orderID, nil
}

// CreateOrderItemTx вставляет позицию заказа со снимком имени и цены товара
func (r *orderRepository) CreateOrderItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, product_id, product_name, quantity,
	          size, color, unit_price, subtotal)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := tx.ExecContext(ctx, query,
		item.OrderID, item.ProductID, item.ProductName, item.Quantity,
		item.Size, item.Color, item.UnitPrice, item.Subtotal)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

const orderColumns = `order_id, user_id, order_number, subtotal, shipping_cost, tax_amount,
		total_amount, shipping_address_id, billing_address_id, payment_method, order_date`

func scanOrder(order *models.Order, scan func(dest ...any) error) error {
	return scan(&order.ID, &order.UserID, &order.OrderNumber, &order.Subtotal,
		&order.ShippingCost, &order.TaxAmount, &order.TotalAmount,
		&order.ShippingAddressID, &order.BillingAddressID, &order.PaymentMethod, &order.OrderDate)
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := scanOrder(order, rows.Scan); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrderByID возвращает заказ только его владельцу: чужой и несуществующий
// заказ неразличимы, оба — ErrOrderNotFound
func (r *orderRepository) GetOrderByID(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE order_id = $1 AND user_id = $2`
	order := &models.Order{}
	row := r.db.QueryRowContext(ctx, query, orderID, userID)
	if err := scanOrder(order, row.Scan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	query := `
		SELECT order_item_id, order_id, product_id, product_name, quantity, size, color, unit_price, subtotal
		FROM order_items
		WHERE order_id = $1`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Size, &item.Color, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
