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

// ProductUsecase は書籍詳細ページ（オファー一覧と新規オファー）のビジネスロジックを担当します
type ProductUsecase struct {
	books  repository.BookRepository
	orders repository.OrderRepository
	events repository.EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewProductUsecase は新しいProductUsecaseインスタンスを作成します
func NewProductUsecase(books repository.BookRepository, orders repository.OrderRepository, events repository.EventPublisher, logger *slog.Logger) *ProductUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductUsecase{
		books:  books,
		orders: orders,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// GetProduct は書籍とその本へのオファー、最高提示額を取得します
// 書籍が取得できない場合はエラー、オファーが取得できない場合はオファーなしとして扱います
func (u *ProductUsecase) GetProduct(ctx context.Context, bookID string) (*model.ProductView, error) {
	if strings.TrimSpace(bookID) == "" {
		return nil, ErrMissingID
	}

	book, err := u.books.FetchByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch book %s: %w", bookID, err)
	}

	offers := u.offersFor(ctx, bookID)
	return &model.ProductView{
		Book:         book,
		Offers:       offers,
		HighestOffer: HighestOffer(bookID, offers),
	}, nil
}

// PlaceOffer は入力された金額でオファーを作成し、この本のオファーを再取得して返します
// 金額が正の数でない場合は通信せずに ErrInvalidPrice を返します
func (u *ProductUsecase) PlaceOffer(ctx context.Context, token, bookID, rawPrice string) (*model.OfferPlacement, error) {
	if token == "" {
		return nil, repository.ErrUnauthenticated
	}
	if strings.TrimSpace(bookID) == "" {
		return nil, ErrMissingID
	}
	price, err := parseAmount(rawPrice)
	if err != nil {
		return nil, err
	}

	order, err := u.orders.Create(ctx, token, model.OrderData{
		Book:    bookID,
		Price:   price,
		Status:  model.StatusReceived,
		Counter: nil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	publish(ctx, u.events, u.logger, orderEvent(model.EventOfferCreated, order, u.now()))

	// 全体ではなく、この本のオファーだけを更新する
	offers := u.offersFor(ctx, bookID)
	if !containsOrder(offers, order.ID) {
		// 一覧への反映が遅れるバックエンドでも、作成したオファーは結果に含める
		offers = append(offers, order)
	}

	return &model.OfferPlacement{
		Order:        order,
		Offers:       offers,
		HighestOffer: HighestOffer(bookID, offers),
	}, nil
}

func (u *ProductUsecase) offersFor(ctx context.Context, bookID string) []*model.Order {
	orders, err := u.orders.List(ctx)
	if err != nil {
		u.logger.Warn("failed to list orders", "book", bookID, "error", err)
		return nil
	}
	return OffersForBook(bookID, orders)
}

func containsOrder(orders []*model.Order, id string) bool {
	for _, o := range orders {
		if o.ID == id {
			return true
		}
	}
	return false
}
