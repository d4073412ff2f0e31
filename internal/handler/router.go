package handler

import (
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewRouter は Connect の各RPC、ヘルスチェック、一覧のライブフィードを登録した http.Handler を返します
// 全てのリクエストは otelhttp でトレースされます
func NewRouter(market *MarketHandler, feed *ListingFeed, opts ...connect.HandlerOption) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", health).Methods(http.MethodGet)
	if feed != nil {
		r.Handle("/ws/listings", feed).Methods(http.MethodGet)
	}
	market.Mount(r, opts...)

	return otelhttp.NewHandler(r, "book_market")
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
