package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/mkurbatov/footballzone/internal/domain/models"
	"github.com/mkurbatov/footballzone/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

const userColumnsQuery = "SELECT user_id, first_name, last_name, email, password_hash, phone, user_type, is_active, created_at FROM users WHERE email = \\$1"

func TestGetUserByEmail_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()
	email := "test@example.com"

	rows := sqlmock.NewRows([]string{"user_id", "first_name", "last_name", "email", "password_hash", "phone", "user_type", "is_active", "created_at"}).
		AddRow(1, "John", "Doe", email, []byte("hashed-password"), nil, "customer", true, time.Now())
	mock.ExpectQuery(userColumnsQuery).WithArgs(email).WillReturnRows(rows)

	user, err := repo.GetUserByEmail(ctx, email)
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "John", user.FirstName)
	assert.Equal(t, email, user.Email)
	assert.Equal(t, []byte("hashed-password"), user.PassHash)
	assert.True(t, user.IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()
	email := "nonexistent@example.com"

	rows := sqlmock.NewRows([]string{"user_id", "first_name", "last_name", "email", "password_hash", "phone", "user_type", "is_active", "created_at"})
	mock.ExpectQuery(userColumnsQuery).WithArgs(email).WillReturnRows(rows)

	user, err := repo.GetUserByEmail(ctx, email)
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveUserByEmail_InactiveFilteredOut(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()
	email := "deactivated@example.com"

	// Деактивированный аккаунт не попадает в выборку — запрос возвращает 0 строк
	rows := sqlmock.NewRows([]string{"user_id", "first_name", "last_name", "email", "password_hash", "phone", "user_type", "is_active", "created_at"})
	query := regexp.QuoteMeta("SELECT user_id, first_name, last_name, email, password_hash, phone, user_type, is_active, created_at FROM users WHERE email = $1 AND is_active = TRUE")
	mock.ExpectQuery(query).WithArgs(email).WillReturnRows(rows)

	user, err := repo.GetActiveUserByEmail(ctx, email)
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()
	passHash := []byte("hashed")
	now := time.Now()

	query := regexp.QuoteMeta("INSERT INTO users (first_name, last_name, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING user_id, user_type, is_active, created_at")
	mock.ExpectQuery(query).WithArgs("John", "Doe", "create@example.com", passHash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "user_type", "is_active", "created_at"}).
			AddRow(1, "customer", true, now))

	user := &models.User{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "create@example.com",
		PassHash:  passHash,
	}
	createdUser, err := repo.CreateUser(ctx, user)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), createdUser.ID)
	assert.Equal(t, "customer", createdUser.UserType)
	assert.True(t, createdUser.IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta("INSERT INTO users (first_name, last_name, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING user_id, user_type, is_active, created_at")
	mock.ExpectQuery(query).WithArgs("John", "Doe", "dup@example.com", []byte("hashed")).
		WillReturnError(&pq.Error{Code: "23505"})

	user := &models.User{FirstName: "John", LastName: "Doe", Email: "dup@example.com", PassHash: []byte("hashed")}
	created, err := repo.CreateUser(ctx, user)
	assert.Error(t, err)
	assert.Nil(t, created)
	assert.True(t, errors.Is(err, storage.ErrEmailExists))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCartByUserID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()
	userID := int64(5)

	rows := sqlmock.NewRows([]string{"cart_id", "user_id", "created_at"})
	query := regexp.QuoteMeta("SELECT cart_id, user_id, created_at FROM shopping_cart WHERE user_id = $1")
	mock.ExpectQuery(query).WithArgs(userID).WillReturnRows(rows)

	cart, err := repo.GetCartByUserID(ctx, userID)
	assert.Error(t, err)
	assert.Nil(t, cart)
	assert.True(t, errors.Is(err, storage.ErrCartNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCart_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()
	userID := int64(5)

	query := regexp.QuoteMeta("INSERT INTO shopping_cart (user_id) VALUES ($1) RETURNING cart_id, created_at")
	mock.ExpectQuery(query).WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "created_at"}).AddRow(10, time.Now()))

	cart, err := repo.CreateCart(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), cart.ID)
	assert.Equal(t, userID, cart.UserID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCart_DuplicateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()
	userID := int64(5)

	// Гонка двух первых обращений: проигравший insert упирается в уникальность user_id
	query := regexp.QuoteMeta("INSERT INTO shopping_cart (user_id) VALUES ($1) RETURNING cart_id, created_at")
	mock.ExpectQuery(query).WithArgs(userID).WillReturnError(&pq.Error{Code: "23505"})

	cart, err := repo.CreateCart(ctx, userID)
	assert.Error(t, err)
	assert.Nil(t, cart)
	assert.True(t, errors.Is(err, storage.ErrCartExists))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCartItem_NullVariant(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"cart_item_id", "quantity"}).AddRow(3, 2)
	mock.ExpectQuery("SELECT cart_item_id, quantity FROM cart_items").
		WithArgs(int64(10), int64(7), nil, nil).WillReturnRows(rows)

	item, err := repo.FindCartItem(ctx, 10, 7, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), item.ID)
	assert.Equal(t, 2, item.Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCartItem_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()
	size := "M"

	rows := sqlmock.NewRows([]string{"cart_item_id", "quantity"})
	mock.ExpectQuery("SELECT cart_item_id, quantity FROM cart_items").
		WithArgs(int64(10), int64(7), &size, nil).WillReturnRows(rows)

	item, err := repo.FindCartItem(ctx, 10, 7, &size, nil)
	assert.Error(t, err)
	assert.Nil(t, item)
	assert.True(t, errors.Is(err, storage.ErrCartItemNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCartItemQuantity_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta("UPDATE cart_items SET quantity = $1 WHERE cart_item_id = $2")
	mock.ExpectExec(query).WithArgs(5, int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateCartItemQuantity(ctx, 99, 5)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrCartItemNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCartItemsForUpdateTx_LocksRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	rows := sqlmock.NewRows([]string{"cart_item_id", "cart_id", "product_id", "quantity", "size", "color",
		"product_name", "price", "stock_quantity", "subtotal"}).
		AddRow(1, 10, 7, 2, "M", nil, "Home Jersey 2025", "89.99", 120, "179.98")
	// Чтение в транзакции оформления обязано держать блокировку строк корзины
	mock.ExpectQuery(`SELECT ci\.cart_item_id, ci\.cart_id, ci\.product_id(?s:.*)FOR UPDATE OF ci`).
		WithArgs(int64(10)).WillReturnRows(rows)

	items, err := repo.GetCartItemsForUpdateTx(ctx, tx, 10)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "Home Jersey 2025", items[0].ProductName)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("89.99")))
	assert.True(t, items[0].Subtotal.Equal(decimal.RequireFromString("179.98")))
	assert.NotNil(t, items[0].Size)
	assert.Equal(t, "M", *items[0].Size)
	assert.Nil(t, items[0].Color)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	order := &models.Order{
		UserID:        1,
		OrderNumber:   "FZ1700000000000-ABCD1234",
		Subtotal:      decimal.RequireFromString("80.00"),
		ShippingCost:  decimal.Zero,
		TaxAmount:     decimal.RequireFromString("8.00"),
		TotalAmount:   decimal.RequireFromString("88.00"),
		PaymentMethod: "card",
	}

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(order.UserID, order.OrderNumber, order.Subtotal, order.ShippingCost,
			order.TaxAmount, order.TotalAmount, nil, nil, order.PaymentMethod).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(42))

	orderID, err := repo.CreateOrderTx(ctx, tx, order)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), orderID)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderItemTx_InsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	item := &models.OrderItem{
		OrderID:     42,
		ProductID:   7,
		ProductName: "Home Jersey 2025",
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("89.99"),
		Subtotal:    decimal.RequireFromString("179.98"),
	}
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(item.OrderID, item.ProductID, item.ProductName, item.Quantity,
			nil, nil, item.UnitPrice, item.Subtotal).
		WillReturnError(errors.New("db error"))

	err = repo.CreateOrderItemTx(ctx, tx, item)
	assert.Error(t, err)

	mock.ExpectRollback()
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByID_WrongUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	// Чужой заказ фильтруется условием user_id и неотличим от несуществующего
	rows := sqlmock.NewRows([]string{"order_id", "user_id", "order_number", "subtotal", "shipping_cost",
		"tax_amount", "total_amount", "shipping_address_id", "billing_address_id", "payment_method", "order_date"})
	mock.ExpectQuery("SELECT order_id, user_id, order_number").
		WithArgs(int64(42), int64(2)).WillReturnRows(rows)

	order, err := repo.GetOrderByID(ctx, 42, 2)
	assert.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, errors.Is(err, storage.ErrOrderNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrdersByUserID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()
	userID := int64(1)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"order_id", "user_id", "order_number", "subtotal", "shipping_cost",
		"tax_amount", "total_amount", "shipping_address_id", "billing_address_id", "payment_method", "order_date"}).
		AddRow(42, userID, "FZ1700000000000-ABCD1234", "80.00", "0.00", "8.00", "88.00", nil, nil, "card", now)
	mock.ExpectQuery("SELECT order_id, user_id, order_number").
		WithArgs(userID).WillReturnRows(rows)

	orders, err := repo.GetOrdersByUserID(ctx, userID)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, "FZ1700000000000-ABCD1234", orders[0].OrderNumber)
	assert.True(t, orders[0].TotalAmount.Equal(decimal.RequireFromString("88.00")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"product_id", "product_name", "description", "price", "category_id",
		"club_id", "stock_quantity", "rating", "badge", "is_featured", "is_active", "created_at",
		"category_name", "category_slug", "club_name"}).
		AddRow(7, "Home Jersey 2025", "Official home kit", "89.99", 1, 2, 120, "4.70", "New", true, true, now,
			"Jerseys", "jerseys", "FC Barcelona")
	mock.ExpectQuery("SELECT p\\.product_id, p\\.product_name").WillReturnRows(rows)

	products, err := repo.ListProducts(ctx)
	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "Home Jersey 2025", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("89.99")))
	assert.NotNil(t, products[0].ClubName)
	assert.Equal(t, "FC Barcelona", *products[0].ClubName)
	assert.True(t, products[0].IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductByID_InactiveFlagComesFromRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"product_id", "product_name", "description", "price", "category_id",
		"club_id", "stock_quantity", "rating", "badge", "is_featured", "is_active", "created_at",
		"category_name", "category_slug", "club_name"}).
		AddRow(7, "Retired Jersey", nil, "59.99", 1, nil, 0, "4.00", nil, false, false, time.Now(),
			"Jerseys", "jerseys", nil)
	mock.ExpectQuery("SELECT p\\.product_id, p\\.product_name").
		WithArgs(int64(7)).WillReturnRows(rows)

	product, err := repo.GetProductByID(ctx, 7)
	assert.NoError(t, err)
	assert.False(t, product.IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchProducts_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT p\\.product_id, p\\.product_name").
		WithArgs("%jersey%").WillReturnError(errors.New("query error"))

	products, err := repo.SearchProducts(ctx, "jersey")
	assert.Error(t, err)
	assert.Nil(t, products)

	assert.NoError(t, mock.ExpectationsWereMet())
}
