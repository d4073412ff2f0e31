package handler

import (
	"mime"
	"net/http"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
)

// MarketServiceName は Connect のサービス名です
const MarketServiceName = "bookmarket.v1.MarketService"

// 各RPCのパスです
const (
	ListBooksProcedure          = "/" + MarketServiceName + "/ListBooks"
	GetProductProcedure         = "/" + MarketServiceName + "/GetProduct"
	PlaceOfferProcedure         = "/" + MarketServiceName + "/PlaceOffer"
	ListMyOrdersProcedure       = "/" + MarketServiceName + "/ListMyOrders"
	UpdateMyOfferProcedure      = "/" + MarketServiceName + "/UpdateMyOffer"
	ListIncomingOrdersProcedure = "/" + MarketServiceName + "/ListIncomingOrders"
	UpdateCounterProcedure      = "/" + MarketServiceName + "/UpdateCounter"
	UpdateStatusProcedure       = "/" + MarketServiceName + "/UpdateStatus"
	CreateListingProcedure      = "/" + MarketServiceName + "/CreateListing"
	LookupISBNProcedure         = "/" + MarketServiceName + "/LookupISBN"
	LoginProcedure              = "/" + MarketServiceName + "/Login"
	RegisterProcedure           = "/" + MarketServiceName + "/Register"
	LogoutProcedure             = "/" + MarketServiceName + "/Logout"
)

// codecOptions は JSON コーデックを登録するオプションです
// Content-Type に charset が付いている場合も同じコーデックで扱います
func codecOptions() []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(jsonCodec{name: "json"}),
		connect.WithCodec(jsonCodec{name: "json; charset=utf-8"}),
	}
}

// protoContentTypes は proto エンコードを指定する Content-Type です
// メッセージは proto ではないため、connect が既定で持つ proto コーデックではエンコードできません
var protoContentTypes = map[string]bool{
	"application/proto":          true,
	"application/grpc":           true,
	"application/grpc+proto":     true,
	"application/grpc-web":       true,
	"application/grpc-web+proto": true,
	"application/connect+proto":  true,
}

// acceptedContentTypes は 415 応答で案内する Content-Type です
const acceptedContentTypes = "application/json, application/grpc+json, application/grpc-web+json"

// jsonOnly は proto エンコードのリクエストを 415 Unsupported Media Type で拒否します
func jsonOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if protoContentTypes[mediaType] {
				w.Header().Set("Accept-Post", acceptedContentTypes)
				w.WriteHeader(http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Mount は全てのRPCをルーターに登録します
// 受け付けるのは JSON エンコードのみです
func (h *MarketHandler) Mount(r *mux.Router, opts ...connect.HandlerOption) {
	opts = append(codecOptions(), opts...)
	handle := func(procedure string, handler http.Handler) {
		r.Handle(procedure, jsonOnly(handler))
	}

	handle(ListBooksProcedure, connect.NewUnaryHandler(ListBooksProcedure, h.ListBooks, opts...))
	handle(GetProductProcedure, connect.NewUnaryHandler(GetProductProcedure, h.GetProduct, opts...))
	handle(PlaceOfferProcedure, connect.NewUnaryHandler(PlaceOfferProcedure, h.PlaceOffer, opts...))
	handle(ListMyOrdersProcedure, connect.NewUnaryHandler(ListMyOrdersProcedure, h.ListMyOrders, opts...))
	handle(UpdateMyOfferProcedure, connect.NewUnaryHandler(UpdateMyOfferProcedure, h.UpdateMyOffer, opts...))
	handle(ListIncomingOrdersProcedure, connect.NewUnaryHandler(ListIncomingOrdersProcedure, h.ListIncomingOrders, opts...))
	handle(UpdateCounterProcedure, connect.NewUnaryHandler(UpdateCounterProcedure, h.UpdateCounter, opts...))
	handle(UpdateStatusProcedure, connect.NewUnaryHandler(UpdateStatusProcedure, h.UpdateStatus, opts...))
	handle(CreateListingProcedure, connect.NewUnaryHandler(CreateListingProcedure, h.CreateListing, opts...))
	handle(LookupISBNProcedure, connect.NewUnaryHandler(LookupISBNProcedure, h.LookupISBN, opts...))
	handle(LoginProcedure, connect.NewUnaryHandler(LoginProcedure, h.Login, opts...))
	handle(RegisterProcedure, connect.NewUnaryHandler(RegisterProcedure, h.Register, opts...))
	handle(LogoutProcedure, connect.NewUnaryHandler(LogoutProcedure, h.Logout, opts...))
}

// ClientOptions は MarketService を呼び出すクライアントに必要なオプションです
func ClientOptions() []connect.ClientOption {
	return []connect.ClientOption{
		connect.WithCodec(jsonCodec{name: "json"}),
	}
}
