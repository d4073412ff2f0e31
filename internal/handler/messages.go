package handler

import (
	"time"

	"jo3qma.com/book_market/internal/domain/model"
)

// Book は書籍の詳細です
type Book struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Author        string   `json:"author"`
	Publisher     string   `json:"publisher"`
	ISBN          string   `json:"isbn"`
	Description   string   `json:"description,omitempty"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Cover         string   `json:"cover,omitempty"`
	CreatedBy     string   `json:"createdBy,omitempty"`
	CreatedAt     string   `json:"createdAt,omitempty"`
}

// BookCard は一覧用の書籍カードです
type BookCard struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	ISBN          string   `json:"isbn"`
	Cover         string   `json:"cover,omitempty"`
	Publisher     string   `json:"publisher"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Description   string   `json:"description,omitempty"`
	HighestOffer  float64  `json:"highestOffer"`
}

// Offer は1件のオファーです。Status は未設定の場合 pending になります
type Offer struct {
	ID        string   `json:"id"`
	BookID    string   `json:"bookId"`
	Price     float64  `json:"price"`
	Counter   *float64 `json:"counter"`
	Status    string   `json:"status"`
	CreatedBy string   `json:"createdBy,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

type IncomingOrder struct {
	Offer         *Offer   `json:"offer"`
	BookTitle     string   `json:"bookTitle"`
	StatusOptions []string `json:"statusOptions"`
}

type ListBooksRequest struct {
	Search string `json:"search"`
}

type ListBooksResponse struct {
	Books []*BookCard `json:"books"`
}

type GetProductRequest struct {
	BookID string `json:"bookId"`
}

type GetProductResponse struct {
	Book         *Book    `json:"book"`
	Offers       []*Offer `json:"offers"`
	HighestOffer float64  `json:"highestOffer"`
}

// PlaceOfferRequest の Price は入力欄の文字列をそのまま受け取ります
type PlaceOfferRequest struct {
	BookID string `json:"bookId"`
	Price  string `json:"price"`
}

type PlaceOfferResponse struct {
	Offer        *Offer   `json:"offer"`
	Offers       []*Offer `json:"offers"`
	HighestOffer float64  `json:"highestOffer"`
}

type ListMyOrdersRequest struct{}

type ListMyOrdersResponse struct {
	Orders []*Offer `json:"orders"`
}

type UpdateMyOfferRequest struct {
	OrderID string `json:"orderId"`
	Price   string `json:"price"`
}

// UpdateOfferResponse は更新後のオファーです
type UpdateOfferResponse struct {
	Offer *Offer `json:"offer"`
}

type ListIncomingOrdersRequest struct{}

type ListIncomingOrdersResponse struct {
	Orders []*IncomingOrder `json:"orders"`
}

type UpdateCounterRequest struct {
	OrderID string `json:"orderId"`
	Counter string `json:"counter"`
}

type UpdateStatusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// CreateListingRequest の CoverImage は base64 でエンコードされた画像です
type CreateListingRequest struct {
	Name          string   `json:"name"`
	Author        string   `json:"author"`
	Publisher     string   `json:"publisher"`
	ISBN          string   `json:"isbn"`
	Description   string   `json:"description"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Cover         string   `json:"cover,omitempty"`
	CoverFilename string   `json:"coverFilename,omitempty"`
	CoverImage    []byte   `json:"coverImage,omitempty"`
}

type CreateListingResponse struct {
	Book *Book `json:"book"`
}

type LookupISBNRequest struct {
	ISBN string `json:"isbn"`
}

type LookupISBNResponse struct {
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	Cover       string `json:"cover,omitempty"`
	Description string `json:"description,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse の SessionID は以降のリクエストで X-Session-ID ヘッダーに指定します
type SessionResponse struct {
	SessionID string    `json:"sessionId"`
	Subject   string    `json:"subject,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

func toBook(b *model.Book) *Book {
	if b == nil {
		return nil
	}
	return &Book{
		ID:            b.ID,
		Name:          b.Data.Name,
		Author:        b.Data.Author,
		Publisher:     b.Data.Publisher,
		ISBN:          b.Data.ISBN,
		Description:   b.Data.Description,
		OriginalPrice: b.Data.OriginalPrice,
		Cover:         b.Data.Cover,
		CreatedBy:     b.CreatedBy,
		CreatedAt:     b.CreatedAt,
	}
}

func toBookCards(cards []*model.ListingCard) []*BookCard {
	out := make([]*BookCard, 0, len(cards))
	for _, c := range cards {
		out = append(out, &BookCard{
			ID:            c.ID,
			Title:         c.Title,
			Author:        c.Author,
			ISBN:          c.ISBN,
			Cover:         c.Cover,
			Publisher:     c.Publisher,
			OriginalPrice: c.OriginalPrice,
			Description:   c.Description,
			HighestOffer:  c.HighestOffer,
		})
	}
	return out
}

func toOffer(o *model.Order) *Offer {
	if o == nil {
		return nil
	}
	return &Offer{
		ID:        o.ID,
		BookID:    o.Data.Book,
		Price:     o.Data.Price,
		Counter:   o.Data.Counter,
		Status:    string(o.Data.Status.Display()),
		CreatedBy: o.CreatedBy,
		CreatedAt: o.CreatedAt,
	}
}

func toOffers(orders []*model.Order) []*Offer {
	out := make([]*Offer, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOffer(o))
	}
	return out
}

func toIncomingOrders(rows []*model.IncomingOrder) []*IncomingOrder {
	out := make([]*IncomingOrder, 0, len(rows))
	for _, r := range rows {
		opts := make([]string, 0, len(r.StatusOptions))
		for _, s := range r.StatusOptions {
			opts = append(opts, string(s))
		}
		out = append(out, &IncomingOrder{
			Offer:         toOffer(r.Order),
			BookTitle:     r.BookTitle,
			StatusOptions: opts,
		})
	}
	return out
}

func toSessionResponse(s *model.Session) *SessionResponse {
	return &SessionResponse{
		SessionID: s.ID,
		Subject:   s.Subject,
		ExpiresAt: s.ExpiresAt,
	}
}
