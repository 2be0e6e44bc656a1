package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product представляет товар каталога
// CategoryName, CategorySlug и ClubName заполняются через JOIN со справочниками
type Product struct {
	ID            int64           `json:"product_id"`
	Name          string          `json:"product_name"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	CategoryID    int64           `json:"category_id"`
	ClubID        *int64          `json:"club_id,omitempty"`
	StockQuantity int             `json:"stock_quantity"`
	Rating        decimal.Decimal `json:"rating"`
	Badge         *string         `json:"badge,omitempty"`
	IsFeatured    bool            `json:"is_featured"`
	IsActive      bool            `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	CategoryName  *string         `json:"category_name,omitempty"`
	CategorySlug  *string         `json:"category_slug,omitempty"`
	ClubName      *string         `json:"club_name,omitempty"`
}

// Category представляет раздел каталога (jerseys, boots и т.д.)
type Category struct {
	ID           int64  `json:"category_id"`
	Name         string `json:"category_name"`
	Slug         string `json:"category_slug"`
	DisplayOrder int    `json:"display_order"`
}
