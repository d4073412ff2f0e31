package handler

import (
	"context"
	"io"
	"sync"
	"time"

	"jo3qma.com/book_market/internal/domain/model"
	"jo3qma.com/book_market/internal/domain/repository"
	"jo3qma.com/book_market/internal/usecase"
)

type fakeListings struct {
	cards []*model.ListingCard
}

func (f fakeListings) Home(ctx context.Context, search string) []*model.ListingCard {
	return usecase.FilterCards(f.cards, search)
}

type fakeProducts struct {
	view   *model.ProductView
	err    error
	mu     sync.Mutex
	tokens []string
}

func (f *fakeProducts) GetProduct(ctx context.Context, bookID string) (*model.ProductView, error) {
	return f.view, f.err
}

func (f *fakeProducts) PlaceOffer(ctx context.Context, token, bookID, rawPrice string) (*model.OfferPlacement, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	o := &model.Order{ID: "o1", Data: model.OrderData{Book: bookID, Price: 19.99, Status: model.StatusReceived}}
	return &model.OfferPlacement{Order: o, Offers: []*model.Order{o}, HighestOffer: 19.99}, nil
}

func (f *fakeProducts) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

type fakeBuyers struct {
	orders []*model.Order
	err    error
}

func (f fakeBuyers) MyOrders(ctx context.Context, token string) ([]*model.Order, error) {
	return f.orders, f.err
}

func (f fakeBuyers) UpdateMyOffer(ctx context.Context, token, orderID, rawPrice string) (*model.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Order{ID: orderID, Data: model.OrderData{Book: "B1", Price: 25}}, nil
}

type fakeSellers struct {
	rows []*model.IncomingOrder
	err  error
}

func (f fakeSellers) IncomingOrders(ctx context.Context, token string) ([]*model.IncomingOrder, error) {
	return f.rows, f.err
}

func (f fakeSellers) UpdateCounter(ctx context.Context, token, orderID, rawCounter string) (*model.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := 15.0
	return &model.Order{ID: orderID, Data: model.OrderData{Book: "B1", Price: 20, Counter: &c, Status: model.StatusReceived}}, nil
}

func (f fakeSellers) UpdateStatus(ctx context.Context, token, orderID, rawStatus string) (*model.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Order{ID: orderID, Data: model.OrderData{Book: "B1", Price: 20, Status: model.Status(rawStatus)}}, nil
}

type fakeSell struct {
	err      error
	meta     *model.BookMetadata
	gotCover string
}

func (f *fakeSell) CreateListing(ctx context.Context, token string, in usecase.NewListing, cover *usecase.CoverUpload) (*model.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	if cover != nil {
		b, _ := io.ReadAll(cover.Body)
		f.gotCover = cover.Filename + ":" + string(b)
	}
	return &model.Book{ID: "B9", Data: model.BookData{Name: in.Name, Cover: in.Cover}}, nil
}

func (f *fakeSell) PrefillFromISBN(ctx context.Context, isbn string) (*model.BookMetadata, error) {
	return f.meta, f.err
}

// fakeSessions は "sess-1" だけを有効なセッションとして扱います
type fakeSessions struct {
	loginErr  error
	loggedOut []string
}

func (f *fakeSessions) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &model.Session{ID: "sess-1", Token: "tok", Subject: "user-1", ExpiresAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func (f *fakeSessions) Register(ctx context.Context, name, email, password string) (*model.Session, error) {
	return f.Login(ctx, email, password)
}

func (f *fakeSessions) Logout(ctx context.Context, sessionID string) error {
	f.loggedOut = append(f.loggedOut, sessionID)
	return nil
}

func (f *fakeSessions) Resolve(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID != "sess-1" {
		return nil, repository.ErrUnauthenticated
	}
	return &model.Session{ID: sessionID, Token: "tok"}, nil
}

type fakeEvents struct {
	ch chan model.NegotiationEvent
}

func (f fakeEvents) Subscribe(buffer int) (<-chan model.NegotiationEvent, func()) {
	return f.ch, func() {}
}

func sampleCards() []*model.ListingCard {
	return []*model.ListingCard{
		{ID: "B1", Title: "Dune", Author: "Herbert", ISBN: "123", Publisher: "Ace", HighestOffer: 25},
		{ID: "B2", Title: "Emma", Author: "Austen", ISBN: "456", Publisher: "Penguin"},
	}
}

func newTestHandler() (*MarketHandler, *fakeProducts, *fakeSell, *fakeSessions) {
	products := &fakeProducts{}
	sell := &fakeSell{}
	sessions := &fakeSessions{}
	h := NewMarketHandler(Services{
		Listings: fakeListings{cards: sampleCards()},
		Products: products,
		Buyers:   fakeBuyers{},
		Sellers:  fakeSellers{},
		Sell:     sell,
		Sessions: sessions,
	})
	return h, products, sell, sessions
}
