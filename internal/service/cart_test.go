package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/mkurbatov/footballzone/internal/domain/models"
	"github.com/mkurbatov/footballzone/internal/service"
	"github.com/mkurbatov/footballzone/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type fakeCartRepo struct {
	cart       *models.Cart
	items      []*models.CartItem
	nextItemID int64
	nextCartID int64

	// имитация проигранной гонки: первый insert корзины возвращает ErrCartExists
	createCartConflict bool
	cleared            bool
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{nextItemID: 1, nextCartID: 1}
}

func (f *fakeCartRepo) GetCartByUserID(_ context.Context, userID int64) (*models.Cart, error) {
	if f.cart == nil || f.cart.UserID != userID {
		return nil, storage.ErrCartNotFound
	}
	return f.cart, nil
}

func (f *fakeCartRepo) CreateCart(_ context.Context, userID int64) (*models.Cart, error) {
	if f.createCartConflict {
		f.createCartConflict = false
		f.cart = &models.Cart{ID: f.nextCartID, UserID: userID, CreatedAt: time.Now()}
		f.nextCartID++
		return nil, storage.ErrCartExists
	}
	f.cart = &models.Cart{ID: f.nextCartID, UserID: userID, CreatedAt: time.Now()}
	f.nextCartID++
	return f.cart, nil
}

func (f *fakeCartRepo) GetCartItems(_ context.Context, cartID int64) ([]*models.CartItem, error) {
	var items []*models.CartItem
	for _, item := range f.items {
		if item.CartID == cartID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeCartRepo) FindCartItem(_ context.Context, cartID, productID int64, size, color *string) (*models.CartItem, error) {
	for _, item := range f.items {
		if item.CartID == cartID && item.ProductID == productID &&
			strPtrEqual(item.Size, size) && strPtrEqual(item.Color, color) {
			return item, nil
		}
	}
	return nil, storage.ErrCartItemNotFound
}

func (f *fakeCartRepo) InsertCartItem(_ context.Context, cartID, productID int64, quantity int, size, color *string) error {
	f.items = append(f.items, &models.CartItem{
		ID:        f.nextItemID,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
	})
	f.nextItemID++
	return nil
}

func (f *fakeCartRepo) UpdateCartItemQuantity(_ context.Context, itemID int64, quantity int) error {
	for _, item := range f.items {
		if item.ID == itemID {
			item.Quantity = quantity
			return nil
		}
	}
	return storage.ErrCartItemNotFound
}

func (f *fakeCartRepo) DeleteCartItem(_ context.Context, itemID int64) error {
	for i, item := range f.items {
		if item.ID == itemID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeCartRepo) ClearCart(_ context.Context, cartID int64) error {
	var kept []*models.CartItem
	for _, item := range f.items {
		if item.CartID != cartID {
			kept = append(kept, item)
		}
	}
	f.items = kept
	f.cleared = true
	return nil
}

func (f *fakeCartRepo) GetCartItemsForUpdateTx(ctx context.Context, _ *sql.Tx, cartID int64) ([]*models.CartItem, error) {
	return f.GetCartItems(ctx, cartID)
}

func (f *fakeCartRepo) ClearCartTx(ctx context.Context, _ *sql.Tx, cartID int64) error {
	return f.ClearCart(ctx, cartID)
}

func TestGetCart_CreatesCartLazily(t *testing.T) {
	repo := newFakeCartRepo()
	cartService := service.NewCartService(discardLogger(), repo)

	view, err := cartService.GetCart(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, repo.cart)
	assert.Equal(t, repo.cart.ID, view.CartID)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())
}

func TestGetCart_SurvivesCreateRace(t *testing.T) {
	repo := newFakeCartRepo()
	repo.createCartConflict = true
	cartService := service.NewCartService(discardLogger(), repo)

	view, err := cartService.GetCart(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, repo.cart.ID, view.CartID)
}

func TestGetCart_TotalSumsSubtotals(t *testing.T) {
	repo := newFakeCartRepo()
	cartService := service.NewCartService(discardLogger(), repo)
	ctx := context.Background()

	require.NoError(t, cartService.AddItem(ctx, 1, 7, 2, ptr("M"), nil))
	require.NoError(t, cartService.AddItem(ctx, 1, 8, 1, nil, nil))
	for _, item := range repo.items {
		item.Subtotal = decimal.NewFromInt(int64(item.Quantity * 20))
	}

	view, err := cartService.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(60)))
}

func TestAddItem_NewItem(t *testing.T) {
	repo := newFakeCartRepo()
	cartService := service.NewCartService(discardLogger(), repo)

	err := cartService.AddItem(context.Background(), 1, 7, 2, ptr("M"), nil)
	require.NoError(t, err)
	require.Len(t, repo.items, 1)
	assert.Equal(t, 2, repo.items[0].Quantity)
	assert.Equal(t, "M", *repo.items[0].Size)
}

func TestAddItem_SameVariantMergesQuantity(t *testing.T) {
	repo := newFakeCartRepo()
	cartService := service.NewCartService(discardLogger(), repo)
	ctx := context.Background()

	require.NoError(t, cartService.AddItem(ctx, 1, 7, 2, ptr("M"), nil))
	require.NoError(t, cartService.AddItem(ctx, 1, 7, 3, ptr("M"), nil))

	require.Len(t, repo.items, 1)
	assert.Equal(t, 5, repo.items[0].Quantity)
}

func TestAddItem_DifferentSizeIsSeparateLine(t *testing.T) {
	repo := newFakeCartRepo()
	cartService := service.NewCartService(discardLogger(), repo)
	ctx := context.Background()

	require.NoError(t, cartService.AddItem(ctx, 1, 7, 1, ptr("M"), nil))
	require.NoError(t, cartService.AddItem(ctx, 1, 7, 1, ptr("L"), nil))
	// Вариант без размера — тоже отдельная позиция
	require.NoError(t, cartService.AddItem(ctx, 1, 7, 1, nil, nil))

	assert.Len(t, repo.items, 3)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	repo := newFakeCartRepo()
	cartService := service.NewCartService(discardLogger(), repo)

	err := cartService.AddItem(context.Background(), 1, 7, 0, nil, nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidQuantity))
	assert.Empty(t, repo.items)
}

func TestUpdateItem_InvalidQuantity(t *testing.T) {
	repo := newFakeCartRepo()
	cartService := service.NewCartService(discardLogger(), repo)
	ctx := context.Background()

	require.NoError(t, cartService.AddItem(ctx, 1, 7, 2, nil, nil))

	err := cartService.UpdateItem(ctx, repo.items[0].ID, 0)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidQuantity))
	assert.Equal(t, 2, repo.items[0].Quantity)
}

func TestUpdateItem_NotFound(t *testing.T) {
	repo := newFakeCartRepo()
	cartService := service.NewCartService(discardLogger(), repo)

	err := cartService.UpdateItem(context.Background(), 99, 3)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrCartItemNotFound))
}

func TestRemoveItem_MissingIsNoop(t *testing.T) {
	repo := newFakeCartRepo()
	cartService := service.NewCartService(discardLogger(), repo)

	assert.NoError(t, cartService.RemoveItem(context.Background(), 99))
}

func TestClear_NoCartIsNoop(t *testing.T) {
	repo := newFakeCartRepo()
	cartService := service.NewCartService(discardLogger(), repo)

	assert.NoError(t, cartService.Clear(context.Background(), 1))
	assert.False(t, repo.cleared)
}

func TestClear_RemovesAllItems(t *testing.T) {
	repo := newFakeCartRepo()
	cartService := service.NewCartService(discardLogger(), repo)
	ctx := context.Background()

	require.NoError(t, cartService.AddItem(ctx, 1, 7, 2, ptr("M"), nil))
	require.NoError(t, cartService.AddItem(ctx, 1, 8, 1, nil, nil))

	require.NoError(t, cartService.Clear(ctx, 1))
	assert.Empty(t, repo.items)
}
