package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jo3qma.com/book_market/internal/domain/model"
	"jo3qma.com/book_market/internal/domain/repository"
)

// BuyerUsecase は購入者ダッシュボード（自分のオファーの一覧と提示額の変更）を担当します
type BuyerUsecase struct {
	orders repository.OrderRepository
	events repository.EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewBuyerUsecase は新しいBuyerUsecaseインスタンスを作成します
func NewBuyerUsecase(orders repository.OrderRepository, events repository.EventPublisher, logger *slog.Logger) *BuyerUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuyerUsecase{
		orders: orders,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// MyOrders はログイン中のユーザーが出したオファーを返します
// 取得に失敗した場合は空の一覧として扱います
func (u *BuyerUsecase) MyOrders(ctx context.Context, token string) ([]*model.Order, error) {
	if token == "" {
		return nil, repository.ErrUnauthenticated
	}
	orders, err := u.orders.ListByUser(ctx, token)
	if err != nil {
		u.logger.Warn("failed to list own orders", "error", err)
		return []*model.Order{}, nil
	}
	return orders, nil
}

// UpdateMyOffer は自分のオファーの提示額を変更し、更新後のオファーを返します
// 他のフィールドは最新の data を読み込んだうえで保持したまま送信します
func (u *BuyerUsecase) UpdateMyOffer(ctx context.Context, token, orderID, rawPrice string) (*model.Order, error) {
	if token == "" {
		return nil, repository.ErrUnauthenticated
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrMissingID
	}
	price, err := parseAmount(rawPrice)
	if err != nil {
		return nil, err
	}

	changed := false
	order, err := u.orders.Mutate(ctx, token, orderID, func(d *model.OrderData) (bool, error) {
		if d.Price == price {
			return false, nil
		}
		d.Price = price
		changed = true
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update offer %s: %w", orderID, err)
	}

	if changed {
		publish(ctx, u.events, u.logger, orderEvent(model.EventOfferUpdated, order, u.now()))
	}
	return order, nil
}
