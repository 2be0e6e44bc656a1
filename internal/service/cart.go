package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkurbatov/footballzone/internal/domain/models"
	"github.com/mkurbatov/footballzone/internal/storage"
	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// CartView — корзина с позициями и суммой по актуальным ценам каталога.
// Цена фиксируется только при оформлении заказа, до этого момента она живая.
type CartView struct {
	CartID int64              `json:"cartId"`
	Items  []*models.CartItem `json:"items"`
	Total  decimal.Decimal    `json:"total"`
}

// CartService определяет интерфейс для работы с корзиной пользователя.
type CartService interface {
	GetCart(ctx context.Context, userID int64) (*CartView, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int, size, color *string) error
	UpdateItem(ctx context.Context, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, itemID int64) error
	Clear(ctx context.Context, userID int64) error
}

type cartService struct {
	log      *slog.Logger
	cartRepo storage.CartStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage) CartService {
	return &cartService{
		log:      log,
		cartRepo: cartRepo,
	}
}

// getOrCreateCart возвращает корзину пользователя, лениво создавая её при первом
// обращении. Гонку двух первых обращений разрешает ограничение уникальности
// user_id: проигравший insert получает ErrCartExists и перечитывает строку.
func (s *cartService) getOrCreateCart(ctx context.Context, userID int64) (*models.Cart, error) {
	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, storage.ErrCartNotFound) {
		return nil, err
	}

	cart, err = s.cartRepo.CreateCart(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrCartExists) {
			return s.cartRepo.GetCartByUserID(ctx, userID)
		}
		return nil, err
	}
	return cart, nil
}

func (s *cartService) GetCart(ctx context.Context, userID int64) (*CartView, error) {
	const op = "service.CartService.GetCart"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		logger.Error("failed to get cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart: %w", op, err)
	}

	items, err := s.cartRepo.GetCartItems(ctx, cart.ID)
	if err != nil {
		logger.Error("failed to get cart items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart items: %w", op, err)
	}
	if items == nil {
		items = []*models.CartItem{}
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}

	return &CartView{CartID: cart.ID, Items: items, Total: total}, nil
}

// AddItem добавляет товар в корзину. Позиция с тем же (товар, размер, цвет)
// увеличивает количество, новая комбинация варианта заводит отдельную строку.
func (s *cartService) AddItem(ctx context.Context, userID, productID int64, quantity int, size, color *string) error {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	if quantity < 1 {
		return fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		logger.Error("failed to get cart", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get cart: %w", op, err)
	}

	existing, err := s.cartRepo.FindCartItem(ctx, cart.ID, productID, size, color)
	if err != nil {
		if !errors.Is(err, storage.ErrCartItemNotFound) {
			logger.Error("failed to find cart item", slog.Any("error", err))
			return fmt.Errorf("%s: failed to find cart item: %w", op, err)
		}
		if err := s.cartRepo.InsertCartItem(ctx, cart.ID, productID, quantity, size, color); err != nil {
			logger.Error("failed to insert cart item", slog.Any("error", err))
			return fmt.Errorf("%s: failed to insert cart item: %w", op, err)
		}
		logger.Info("cart item added", slog.Int("quantity", quantity))
		return nil
	}

	newQuantity := existing.Quantity + quantity
	if err := s.cartRepo.UpdateCartItemQuantity(ctx, existing.ID, newQuantity); err != nil {
		logger.Error("failed to update cart item quantity", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update cart item quantity: %w", op, err)
	}
	logger.Info("cart item quantity increased", slog.Int("quantity", newQuantity))
	return nil
}

func (s *cartService) UpdateItem(ctx context.Context, itemID int64, quantity int) error {
	const op = "service.CartService.UpdateItem"

	if quantity < 1 {
		return fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	if err := s.cartRepo.UpdateCartItemQuantity(ctx, itemID, quantity); err != nil {
		if errors.Is(err, storage.ErrCartItemNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Error("failed to update cart item", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: failed to update cart item: %w", op, err)
	}
	return nil
}

// RemoveItem убирает позицию из корзины, удаление несуществующей — no-op
func (s *cartService) RemoveItem(ctx context.Context, itemID int64) error {
	const op = "service.CartService.RemoveItem"

	if err := s.cartRepo.DeleteCartItem(ctx, itemID); err != nil {
		s.log.Error("failed to remove cart item", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: failed to remove cart item: %w", op, err)
	}
	return nil
}

// Clear удаляет все позиции корзины, отсутствие корзины — no-op
func (s *cartService) Clear(ctx context.Context, userID int64) error {
	const op = "service.CartService.Clear"

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrCartNotFound) {
			return nil
		}
		s.log.Error("failed to get cart", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: failed to get cart: %w", op, err)
	}

	if err := s.cartRepo.ClearCart(ctx, cart.ID); err != nil {
		s.log.Error("failed to clear cart", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: failed to clear cart: %w", op, err)
	}
	return nil
}
