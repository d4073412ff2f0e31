package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"jo3qma.com/book_market/internal/domain/model"
	"jo3qma.com/book_market/internal/domain/repository"
)

// ListingUsecase はトップページの書籍一覧を組み立てます
type ListingUsecase struct {
	books  repository.BookRepository
	orders repository.OrderRepository
	logger *slog.Logger
}

// NewListingUsecase は新しいListingUsecaseインスタンスを作成します
func NewListingUsecase(books repository.BookRepository, orders repository.OrderRepository, logger *slog.Logger) *ListingUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingUsecase{
		books:  books,
		orders: orders,
		logger: logger,
	}
}

// Home は全ての出品とオファーを取得し、検索語に一致するカードを出版社順で返します
// 取得に失敗した場合はログに残し、空の一覧として扱います
func (u *ListingUsecase) Home(ctx context.Context, search string) []*model.ListingCard {
	books, err := u.books.List(ctx)
	if err != nil {
		u.logger.Warn("failed to list books", "error", err)
		books = nil
	}
	orders, err := u.orders.List(ctx)
	if err != nil {
		// オファーが取れなくても一覧は表示する（最高提示額が0になるだけ）
		u.logger.Warn("failed to list orders", "error", err)
		orders = nil
	}

	cards := BuildCards(books, orders)
	SortByPublisher(cards)
	return FilterCards(cards, search)
}

// BuildCards は Book を表示用のカードに変換し、最高提示額を付与します
func BuildCards(books []*model.Book, orders []*model.Order) []*model.ListingCard {
	highest := highestOffers(orders)
	cards := make([]*model.ListingCard, 0, len(books))
	for _, b := range books {
		if b == nil {
			continue
		}
		cards = append(cards, &model.ListingCard{
			ID:            b.ID,
			Title:         b.Data.Name,
			Author:        b.Data.Author,
			ISBN:          b.Data.ISBN,
			Cover:         b.Data.Cover,
			Publisher:     b.Data.Publisher,
			OriginalPrice: b.Data.OriginalPrice,
			Description:   b.Data.Description,
			HighestOffer:  highest[b.ID],
		})
	}
	return cards
}

// SortByPublisher は出版社名の昇順（大文字小文字を区別しない、ロケールを考慮した比較）で並べ替えます
// 出版社が空のカードは先頭に来ます。比較結果が等しいカードは元の順序を保ちます
func SortByPublisher(cards []*model.ListingCard) {
	// Collator はゴルーチンセーフではないので呼び出しごとに作成する
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(cards, func(i, j int) bool {
		return c.CompareString(cards[i].Publisher, cards[j].Publisher) < 0
	})
}

// FilterCards はタイトル・著者・ISBNのいずれかに検索語を含むカードを返します
// 大文字小文字は区別しません。検索語が空の場合は全件を返します
func FilterCards(cards []*model.ListingCard, search string) []*model.ListingCard {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return cards
	}
	out := make([]*model.ListingCard, 0, len(cards))
	for _, c := range cards {
		if strings.Contains(strings.ToLower(c.Title), q) ||
			strings.Contains(strings.ToLower(c.Author), q) ||
			strings.Contains(strings.ToLower(c.ISBN), q) {
			out = append(out, c)
		}
	}
	return out
}
