package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order представляет оформленный заказ, после создания не изменяется
type Order struct {
	ID                int64           `json:"order_id"`
	UserID            int64           `json:"user_id"`
	OrderNumber       string          `json:"order_number"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	ShippingAddressID *int64          `json:"shipping_address_id,omitempty"`
	BillingAddressID  *int64          `json:"billing_address_id,omitempty"`
	PaymentMethod     string          `json:"payment_method"`
	OrderDate         time.Time       `json:"order_date"`
}

// OrderItem представляет позицию заказа со снимком имени и цены товара
// на момент оформления, последующие правки каталога её не затрагивают
type OrderItem struct {
	ID          int64           `json:"order_item_id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Size        *string         `json:"size,omitempty"`
	Color       *string         `json:"color,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}
