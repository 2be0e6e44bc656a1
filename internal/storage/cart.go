package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mkurbatov/footballzone/internal/domain/models"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartExists       = errors.New("cart already exists")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartStorage описывает методы для работы с корзиной и её позициями.
// Методы с суффиксом Tx исполняются внутри переданной транзакции: чтение позиций
// и их удаление при оформлении заказа должны быть одним атомарным блоком.
type CartStorage interface {
	GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error)
	CreateCart(ctx context.Context, userID int64) (*models.Cart, error)
	GetCartItems(ctx context.Context, cartID int64) ([]*models.CartItem, error)
	FindCartItem(ctx context.Context, cartID, productID int64, size, color *string) (*models.CartItem, error)
	InsertCartItem(ctx context.Context, cartID, productID int64, quantity int, size, color *string) error
	UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteCartItem(ctx context.Context, itemID int64) error
	ClearCart(ctx context.Context, cartID int64) error
	GetCartItemsForUpdateTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]*models.CartItem, error)
	ClearCartTx(ctx context.Context, tx *sql.Tx, cartID int64) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	cart := &models.Cart{}
	row := r.db.QueryRowContext(ctx,
		"SELECT cart_id, user_id, created_at FROM shopping_cart WHERE user_id = $1", userID)
	if err := row.Scan(&cart.ID, &cart.UserID, &cart.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return cart, nil
}

// CreateCart создаёт корзину для пользователя. Уникальность user_id закрыта
// ограничением в БД: при гонке двух первых обращений проигравший получает
// ErrCartExists и перечитывает существующую корзину.
func (r *cartRepository) CreateCart(ctx context.Context, userID int64) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO shopping_cart (user_id) VALUES ($1) RETURNING cart_id, created_at",
		userID,
	).Scan(&cart.ID, &cart.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return nil, ErrCartExists
			}
		}
		return nil, err
	}
	return cart, nil
}

const cartItemsQuery = `
		SELECT ci.cart_item_id, ci.cart_id, ci.product_id, ci.quantity, ci.size, ci.color,
		p.product_name, p.price, p.stock_quantity, (ci.quantity * p.price) AS subtotal
		FROM cart_items ci
		INNER JOIN products p ON ci.product_id = p.product_id
		WHERE ci.cart_id = $1`

func scanCartItems(rows *sql.Rows) ([]*models.CartItem, error) {
	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{}
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.Size, &item.Color, &item.ProductName, &item.Price,
			&item.StockQuantity, &item.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetCartItems возвращает позиции корзины с актуальными именем и ценой товара
func (r *cartRepository) GetCartItems(ctx context.Context, cartID int64) ([]*models.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, cartItemsQuery, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCartItems(rows)
}

// GetCartItemsForUpdateTx читает позиции с блокировкой строк. Из двух
// одновременных оформлений одной корзины второе ждёт на этих строках и после
// коммита первого перечитывает уже пустую корзину.
func (r *cartRepository) GetCartItemsForUpdateTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]*models.CartItem, error) {
	rows, err := tx.QueryContext(ctx, cartItemsQuery+"\n\t\tFOR UPDATE OF ci", cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCartItems(rows)
}

// FindCartItem ищет позицию по ключу (product, size, color): NULL совпадает только с NULL,
// вариант без размера — отдельная позиция от варианта с размером
func (r *cartRepository) FindCartItem(ctx context.Context, cartID, productID int64, size, color *string) (*models.CartItem, error) {
	item := &models.CartItem{CartID: cartID, ProductID: productID, Size: size, Color: color}
	query := `
		SELECT cart_item_id, quantity FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
		AND (size = $3 OR (size IS NULL AND $3::text IS NULL))
		AND (color = $4 OR (color IS NULL AND $4::text IS NULL))`
	row := r.db.QueryRowContext(ctx, query, cartID, productID, size, color)
	if err := row.Scan(&item.ID, &item.Quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *cartRepository) InsertCartItem(ctx context.Context, cartID, productID int64, quantity int, size, color *string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO cart_items (cart_id, product_id, quantity, size, color) VALUES ($1, $2, $3, $4, $5)",
		cartID, productID, quantity, size, color)
	if err != nil {
		return fmt.Errorf("failed to insert cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE cart_item_id = $2", quantity, itemID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// DeleteCartItem — идемпотентное удаление, отсутствие строки не ошибка
func (r *cartRepository) DeleteCartItem(ctx context.Context, itemID int64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_item_id = $1", itemID)
	return err
}

func (r *cartRepository) ClearCart(ctx context.Context, cartID int64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_id = $1", cartID)
	return err
}

func (r *cartRepository) ClearCartTx(ctx context.Context, tx *sql.Tx, cartID int64) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_id = $1", cartID)
	return err
}
