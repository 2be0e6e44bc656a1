package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart представляет корзину пользователя, не больше одной на пользователя
type Cart struct {
	ID        int64     `json:"cart_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CartItem представляет позицию корзины
// Ключ уникальности — (cart_id, product_id, size, color): варианты одного
// товара с разными размером/цветом живут отдельными строками
type CartItem struct {
	ID        int64   `json:"cart_item_id"`
	CartID    int64   `json:"cart_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Size      *string `json:"size,omitempty"`
	Color     *string `json:"color,omitempty"`

	// Данные товара на текущий момент, заполняются через JOIN с products
	ProductName   string          `json:"product_name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}
