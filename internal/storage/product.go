package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mkurbatov/footballzone/internal/domain/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStorage описывает методы чтения каталога. Каталог из этого слоя не изменяется.
type ProductStorage interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	ListProductsByCategory(ctx context.Context, slug string) ([]*models.Product, error)
	SearchProducts(ctx context.Context, query string) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = `p.product_id, p.product_name, p.description, p.price, p.category_id, p.club_id,
		p.stock_quantity, p.rating, p.badge, p.is_featured, p.is_active, p.created_at,
		c.category_name, c.category_slug, fc.club_name`

func scanProducts(rows *sql.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.ClubID,
			&p.StockQuantity, &p.Rating, &p.Badge, &p.IsFeatured, &p.IsActive, &p.CreatedAt,
			&p.CategoryName, &p.CategorySlug, &p.ClubName); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) ListProducts(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.category_id
		LEFT JOIN football_clubs fc ON p.club_id = fc.club_id
		WHERE p.is_active = TRUE
		ORDER BY p.is_featured DESC, p.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) ListProductsByCategory(ctx context.Context, slug string) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		INNER JOIN categories c ON p.category_id = c.category_id
		LEFT JOIN football_clubs fc ON p.club_id = fc.club_id
		WHERE c.category_slug = $1 AND p.is_active = TRUE
		ORDER BY p.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// SearchProducts ищет подстроку в имени, описании и названии категории товара
func (r *productRepository) SearchProducts(ctx context.Context, query string) ([]*models.Product, error) {
	searchTerm := "%" + query + "%"
	q := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.category_id
		LEFT JOIN football_clubs fc ON p.club_id = fc.club_id
		WHERE p.is_active = TRUE
		AND (p.product_name ILIKE $1 OR p.description ILIKE $1 OR c.category_name ILIKE $1)
		ORDER BY p.rating DESC`
	rows, err := r.db.QueryContext(ctx, q, searchTerm)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.category_id
		LEFT JOIN football_clubs fc ON p.club_id = fc.club_id
		WHERE p.product_id = $1`
	p := &models.Product{}
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.ClubID,
		&p.StockQuantity, &p.Rating, &p.Badge, &p.IsFeatured, &p.IsActive, &p.CreatedAt,
		&p.CategoryName, &p.CategorySlug, &p.ClubName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT category_id, category_name, category_slug, display_order
		FROM categories
		WHERE is_active = TRUE
		ORDER BY display_order ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.DisplayOrder); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}
