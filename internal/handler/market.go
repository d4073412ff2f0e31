package handler

import (
	"bytes"
	"context"
	"net/http"

	"connectrpc.com/connect"
	"jo3qma.com/book_market/internal/domain/model"
	"jo3qma.com/book_market/internal/usecase"
)

// SessionHeader はセッションIDを受け渡すヘッダーです
const SessionHeader = "X-Session-ID"

type ListingService interface {
	Home(ctx context.Context, search string) []*model.ListingCard
}

type ProductService interface {
	GetProduct(ctx context.Context, bookID string) (*model.ProductView, error)
	PlaceOffer(ctx context.Context, token, bookID, rawPrice string) (*model.OfferPlacement, error)
}

type BuyerService interface {
	MyOrders(ctx context.Context, token string) ([]*model.Order, error)
	UpdateMyOffer(ctx context.Context, token, orderID, rawPrice string) (*model.Order, error)
}

type SellerService interface {
	IncomingOrders(ctx context.Context, token string) ([]*model.IncomingOrder, error)
	UpdateCounter(ctx context.Context, token, orderID, rawCounter string) (*model.Order, error)
	UpdateStatus(ctx context.Context, token, orderID, rawStatus string) (*model.Order, error)
}

type SellService interface {
	CreateListing(ctx context.Context, token string, in usecase.NewListing, cover *usecase.CoverUpload) (*model.Book, error)
	PrefillFromISBN(ctx context.Context, isbn string) (*model.BookMetadata, error)
}

type SessionService interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Register(ctx context.Context, name, email, password string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
	Resolve(ctx context.Context, sessionID string) (*model.Session, error)
}

// MarketHandler は MarketService の Connect ハンドラー実装です
// プロトコル層（JSONメッセージ）とドメイン層（usecase）を橋渡しします
type MarketHandler struct {
	listings ListingService
	products ProductService
	buyers   BuyerService
	sellers  SellerService
	sell     SellService
	sessions SessionService
}

// Services は MarketHandler が使用するユースケースの一覧です
type Services struct {
	Listings ListingService
	Products ProductService
	Buyers   BuyerService
	Sellers  SellerService
	Sell     SellService
	Sessions SessionService
}

// NewMarketHandler は新しいMarketHandlerインスタンスを作成します
func NewMarketHandler(s Services) *MarketHandler {
	return &MarketHandler{
		listings: s.Listings,
		products: s.Products,
		buyers:   s.Buyers,
		sellers:  s.Sellers,
		sell:     s.Sell,
		sessions: s.Sessions,
	}
}

// ListBooks はトップページの書籍一覧を返すRPCハンドラーです
func (h *MarketHandler) ListBooks(
	ctx context.Context,
	req *connect.Request[ListBooksRequest],
) (*connect.Response[ListBooksResponse], error) {
	cards := h.listings.Home(ctx, req.Msg.Search)
	return connect.NewResponse(&ListBooksResponse{Books: toBookCards(cards)}), nil
}

// GetProduct は書籍の詳細とオファー一覧を返すRPCハンドラーです
func (h *MarketHandler) GetProduct(
	ctx context.Context,
	req *connect.Request[GetProductRequest],
) (*connect.Response[GetProductResponse], error) {
	view, err := h.products.GetProduct(ctx, req.Msg.BookID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetProductResponse{
		Book:         toBook(view.Book),
		Offers:       toOffers(view.Offers),
		HighestOffer: view.HighestOffer,
	}), nil
}

// PlaceOffer は書籍にオファーを出すRPCハンドラーです
func (h *MarketHandler) PlaceOffer(
	ctx context.Context,
	req *connect.Request[PlaceOfferRequest],
) (*connect.Response[PlaceOfferResponse], error) {
	token, err := h.token(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	placed, err := h.products.PlaceOffer(ctx, token, req.Msg.BookID, req.Msg.Price)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PlaceOfferResponse{
		Offer:        toOffer(placed.Order),
		Offers:       toOffers(placed.Offers),
		HighestOffer: placed.HighestOffer,
	}), nil
}

// ListMyOrders は自分が出したオファーを返すRPCハンドラーです
func (h *MarketHandler) ListMyOrders(
	ctx context.Context,
	req *connect.Request[ListMyOrdersRequest],
) (*connect.Response[ListMyOrdersResponse], error) {
	token, err := h.token(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	orders, err := h.buyers.MyOrders(ctx, token)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListMyOrdersResponse{Orders: toOffers(orders)}), nil
}

// UpdateMyOffer は自分のオファーの提示額を変更するRPCハンドラーです
func (h *MarketHandler) UpdateMyOffer(
	ctx context.Context,
	req *connect.Request[UpdateMyOfferRequest],
) (*connect.Response[UpdateOfferResponse], error) {
	token, err := h.token(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	order, err := h.buyers.UpdateMyOffer(ctx, token, req.Msg.OrderID, req.Msg.Price)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UpdateOfferResponse{Offer: toOffer(order)}), nil
}

// ListIncomingOrders は自分の出品に届いたオファーを返すRPCハンドラーです
func (h *MarketHandler) ListIncomingOrders(
	ctx context.Context,
	req *connect.Request[ListIncomingOrdersRequest],
) (*connect.Response[ListIncomingOrdersResponse], error) {
	token, err := h.token(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	rows, err := h.sellers.IncomingOrders(ctx, token)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListIncomingOrdersResponse{Orders: toIncomingOrders(rows)}), nil
}

// UpdateCounter はカウンターオファーを設定するRPCハンドラーです
func (h *MarketHandler) UpdateCounter(
	ctx context.Context,
	req *connect.Request[UpdateCounterRequest],
) (*connect.Response[UpdateOfferResponse], error) {
	token, err := h.token(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	order, err := h.sellers.UpdateCounter(ctx, token, req.Msg.OrderID, req.Msg.Counter)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UpdateOfferResponse{Offer: toOffer(order)}), nil
}

// UpdateStatus はオファーの状態を変更するRPCハンドラーです
func (h *MarketHandler) UpdateStatus(
	ctx context.Context,
	req *connect.Request[UpdateStatusRequest],
) (*connect.Response[UpdateOfferResponse], error) {
	token, err := h.token(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	order, err := h.sellers.UpdateStatus(ctx, token, req.Msg.OrderID, req.Msg.Status)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UpdateOfferResponse{Offer: toOffer(order)}), nil
}

// CreateListing は出品を作成するRPCハンドラーです
func (h *MarketHandler) CreateListing(
	ctx context.Context,
	req *connect.Request[CreateListingRequest],
) (*connect.Response[CreateListingResponse], error) {
	token, err := h.token(ctx, req.Header())
	if err != nil {
		return nil, err
	}

	m := req.Msg
	var cover *usecase.CoverUpload
	if len(m.CoverImage) > 0 {
		cover = &usecase.CoverUpload{
			Filename: m.CoverFilename,
			Body:     bytes.NewReader(m.CoverImage),
		}
	}

	book, err := h.sell.CreateListing(ctx, token, usecase.NewListing{
		Name:          m.Name,
		Author:        m.Author,
		Publisher:     m.Publisher,
		ISBN:          m.ISBN,
		Description:   m.Description,
		OriginalPrice: m.OriginalPrice,
		Cover:         m.Cover,
	}, cover)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CreateListingResponse{Book: toBook(book)}), nil
}

// LookupISBN は出品フォームの事前入力用にISBNから書誌情報を取得するRPCハンドラーです
func (h *MarketHandler) LookupISBN(
	ctx context.Context,
	req *connect.Request[LookupISBNRequest],
) (*connect.Response[LookupISBNResponse], error) {
	meta, err := h.sell.PrefillFromISBN(ctx, req.Msg.ISBN)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&LookupISBNResponse{
		ISBN:        meta.ISBN,
		Title:       meta.Title,
		Author:      meta.Author,
		Publisher:   meta.Publisher,
		Cover:       meta.Cover,
		Description: meta.Description,
	}), nil
}

// Login はログインしてセッションを開始するRPCハンドラーです
func (h *MarketHandler) Login(
	ctx context.Context,
	req *connect.Request[LoginRequest],
) (*connect.Response[SessionResponse], error) {
	sess, err := h.sessions.Login(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(sess), nil
}

// Register はアカウントを作成してセッションを開始するRPCハンドラーです
func (h *MarketHandler) Register(
	ctx context.Context,
	req *connect.Request[RegisterRequest],
) (*connect.Response[SessionResponse], error) {
	sess, err := h.sessions.Register(ctx, req.Msg.Name, req.Msg.Email, req.Msg.Password)
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(sess), nil
}

// Logout はセッションを破棄するRPCハンドラーです
func (h *MarketHandler) Logout(
	ctx context.Context,
	req *connect.Request[LogoutRequest],
) (*connect.Response[LogoutResponse], error) {
	if err := h.sessions.Logout(ctx, req.Header().Get(SessionHeader)); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&LogoutResponse{}), nil
}

// token はリクエストのセッションIDからバックエンドのトークンを取り出します
func (h *MarketHandler) token(ctx context.Context, header http.Header) (string, error) {
	sess, err := h.sessions.Resolve(ctx, header.Get(SessionHeader))
	if err != nil {
		return "", toConnectError(err)
	}
	return sess.Token, nil
}

func sessionResponse(sess *model.Session) *connect.Response[SessionResponse] {
	res := connect.NewResponse(toSessionResponse(sess))
	res.Header().Set(SessionHeader, sess.ID)
	return res
}
