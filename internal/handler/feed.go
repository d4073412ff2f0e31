package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"jo3qma.com/book_market/internal/domain/model"
	"jo3qma.com/book_market/internal/usecase"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = 54 * time.Second
	feedReadLimit  = 4096
)

// EventSource は交渉イベントの購読元です
type EventSource interface {
	Subscribe(buffer int) (<-chan model.NegotiationEvent, func())
}

// feedRequest はクライアントから届く検索語です
type feedRequest struct {
	Search string `json:"search"`
}

// feedMessage はクライアントに送る一覧です
type feedMessage struct {
	Type   string      `json:"type"`
	Search string      `json:"search"`
	Books  []*BookCard `json:"books"`
}

// ListingFeed は書籍一覧をWebSocketで配信します
// 検索語は入力が落ち着いてから反映し、オファーや出品が変わるたびに一覧を送り直します
type ListingFeed struct {
	listings ListingService
	events   EventSource
	debounce time.Duration
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewListingFeed は新しいListingFeedを作成します
// allowedOrigins に含まれない Origin からの接続は、同一ホストでない限り 403 で拒否します
func NewListingFeed(listings ListingService, events EventSource, debounce time.Duration, allowedOrigins []string, logger *slog.Logger) *ListingFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingFeed{
		listings: listings,
		events:   events,
		debounce: debounce,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

// originChecker は Origin ヘッダーを検証する関数を返します
// Origin がない（ブラウザ以外の）接続と同一ホストからの接続は常に許可し、"*" は全て許可します
func originChecker(allowed []string) func(r *http.Request) bool {
	all := false
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		if o == "*" {
			all = true
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || all {
			return true
		}
		if set[strings.ToLower(origin)] {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

func (f *ListingFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade がエラーレスポンスを返している
		f.logger.Warn("failed to upgrade listing feed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	refresh := make(chan struct{}, 1)
	notify := func() {
		select {
		case refresh <- struct{}{}:
		default:
		}
	}

	search := usecase.NewSearchService(f.debounce, func(string) { notify() })
	defer search.Stop()

	var events <-chan model.NegotiationEvent
	if f.events != nil {
		ch, unsubscribe := f.events.Subscribe(16)
		defer unsubscribe()
		events = ch
	}

	go f.readPump(conn, search, cancel)

	ping := time.NewTicker(feedPingPeriod)
	defer ping.Stop()

	notify()
	for {
		select {
		case <-ctx.Done():
			return

		case <-refresh:
			if err := f.push(ctx, conn, search.Term()); err != nil {
				return
			}

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			f.logger.Debug("listing feed refresh", "kind", ev.Kind, "book", ev.BookID)
			notify()

		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (f *ListingFeed) push(ctx context.Context, conn *websocket.Conn, term string) error {
	cards := f.listings.Home(ctx, term)
	_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	return conn.WriteJSON(feedMessage{
		Type:   "listings",
		Search: term,
		Books:  toBookCards(cards),
	})
}

// readPump はクライアントの検索語を受け取り、切断されたら cancel を呼びます
func (f *ListingFeed) readPump(conn *websocket.Conn, search *usecase.SearchService, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(feedReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})

	for {
		var req feedRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Warn("listing feed read failed", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
		search.Set(req.Search)
	}
}
