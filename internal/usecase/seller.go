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

// SellerUsecase は出品者ダッシュボード（受信したオファーへのカウンターオファーと状態変更）を担当します
// 状態遷移の制約はなく、どの状態からどの状態へも変更できます
type SellerUsecase struct {
	books  repository.BookRepository
	orders repository.OrderRepository
	events repository.EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewSellerUsecase は新しいSellerUsecaseインスタンスを作成します
func NewSellerUsecase(books repository.BookRepository, orders repository.OrderRepository, events repository.EventPublisher, logger *slog.Logger) *SellerUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SellerUsecase{
		books:  books,
		orders: orders,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// IncomingOrders は自分の出品に対するオファーを返します
// 自分の出品（list-by-user）と全オファー（list）をクライアント側で結合します
func (u *SellerUsecase) IncomingOrders(ctx context.Context, token string) ([]*model.IncomingOrder, error) {
	if token == "" {
		return nil, repository.ErrUnauthenticated
	}

	books, err := u.books.ListByUser(ctx, token)
	if err != nil {
		u.logger.Warn("failed to list own books", "error", err)
		return []*model.IncomingOrder{}, nil
	}
	if len(books) == 0 {
		return []*model.IncomingOrder{}, nil
	}

	orders, err := u.orders.List(ctx)
	if err != nil {
		u.logger.Warn("failed to list orders", "error", err)
		return []*model.IncomingOrder{}, nil
	}

	titles := make(map[string]string, len(books))
	for _, b := range books {
		titles[b.ID] = b.Data.Name
	}

	rows := make([]*model.IncomingOrder, 0)
	for _, o := range orders {
		title, ok := titles[o.Data.Book]
		if !ok {
			continue
		}
		rows = append(rows, &model.IncomingOrder{
			Order:         o,
			BookTitle:     title,
			StatusOptions: model.StatusOptions(o.Data.Status),
		})
	}
	return rows, nil
}

// UpdateCounter はカウンターオファーの金額を設定し、更新後のオファーを返します
func (u *SellerUsecase) UpdateCounter(ctx context.Context, token, orderID, rawCounter string) (*model.Order, error) {
	if token == "" {
		return nil, repository.ErrUnauthenticated
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrMissingID
	}
	counter, err := parseAmount(rawCounter)
	if err != nil {
		return nil, err
	}

	changed := false
	order, err := u.orders.Mutate(ctx, token, orderID, func(d *model.OrderData) (bool, error) {
		if d.Counter != nil && *d.Counter == counter {
			return false, nil
		}
		d.Counter = &counter
		changed = true
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update counter offer %s: %w", orderID, err)
	}

	if changed {
		publish(ctx, u.events, u.logger, orderEvent(model.EventOfferCountered, order, u.now()))
	}
	return order, nil
}

// UpdateStatus はオファーの状態を変更し、更新後のオファーを返します
// 現在と同じ状態が選ばれた場合は何もしません
func (u *SellerUsecase) UpdateStatus(ctx context.Context, token, orderID, rawStatus string) (*model.Order, error) {
	if token == "" {
		return nil, repository.ErrUnauthenticated
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrMissingID
	}
	status, ok := model.ParseStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, rawStatus)
	}

	changed := false
	order, err := u.orders.Mutate(ctx, token, orderID, func(d *model.OrderData) (bool, error) {
		if d.Status == status {
			return false, nil
		}
		d.Status = status
		changed = true
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update status of %s: %w", orderID, err)
	}

	if changed {
		publish(ctx, u.events, u.logger, orderEvent(model.EventStatusChanged, order, u.now()))
	}
	return order, nil
}
