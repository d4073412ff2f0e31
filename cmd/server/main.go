package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"jo3qma.com/book_market/internal/config"
	"jo3qma.com/book_market/internal/domain/repository"
	"jo3qma.com/book_market/internal/handler"
	"jo3qma.com/book_market/internal/infrastructure/catalog"
	"jo3qma.com/book_market/internal/infrastructure/content"
	"jo3qma.com/book_market/internal/infrastructure/events"
	"jo3qma.com/book_market/internal/infrastructure/tokenstore"
	"jo3qma.com/book_market/internal/telemetry"
	"jo3qma.com/book_market/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

// run はサーバーを起動し、シグナルを受け取るまで待機します
// 終了処理は defer で行うため、途中で失敗しても接続は閉じられます
func run() error {
	cfg, err := config.LoadFromEnvironment()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTelemetry, err := telemetry.Setup(context.Background(), cfg.Telemetry, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			log.Printf("⚠️  Failed to flush telemetry: %v", err)
		}
	}()

	// 依存関係の組み立て（依存性注入）
	// 保存先はコンテンツAPIで、infrastructure 層が腐敗防止層としてレコード形式を吸収する
	contentClient := content.NewClient(cfg.Content.BaseURL, cfg.Content.Timeout, logger)
	books := content.NewBookRepository(contentClient, cfg.Content.BooksTypeID)
	orders := content.NewOrderRepository(contentClient, cfg.Content.OrdersTypeID)
	accounts := content.NewAccountRepository(contentClient)
	assets := content.NewAssetRepository(contentClient)

	var catalogRepo repository.CatalogRepository
	if cfg.Catalog.BaseURL != "" {
		catalogRepo = catalog.NewCatalogScraper(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
	}

	// セッションの保存先（Redis がなければメモリ）
	var store repository.TokenStore
	if cfg.Redis.URL != "" {
		redisStore, err := tokenstore.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisStore.Close()
		store = redisStore
		log.Println("🗄️  Sessions stored in Redis")
	} else {
		store = tokenstore.NewMemoryStore()
		log.Println("🗄️  Sessions stored in memory")
	}

	// 交渉イベントの配信（NATS があればインスタンス間で共有）
	hub := events.NewHub(logger)
	var publisher repository.EventPublisher = hub
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("book_market"))
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Drain()

		if _, err := events.Bridge(nc, hub, logger); err != nil {
			return fmt.Errorf("failed to subscribe to NATS: %w", err)
		}
		publisher = events.NewNATSPublisher(nc)
		log.Printf("📡 Negotiation events published to NATS (%s.>)", events.SubjectPrefix)
	}

	listingUC := usecase.NewListingUsecase(books, orders, logger)
	productUC := usecase.NewProductUsecase(books, orders, publisher, logger)
	buyerUC := usecase.NewBuyerUsecase(orders, publisher, logger)
	sellerUC := usecase.NewSellerUsecase(books, orders, publisher, logger)
	sellUC := usecase.NewSellUsecase(books, assets, catalogRepo, publisher, logger)
	sessions := usecase.NewSessionService(accounts, store, cfg.Session.TTL)

	h := handler.NewMarketHandler(handler.Services{
		Listings: listingUC,
		Products: productUC,
		Buyers:   buyerUC,
		Sellers:  sellerUC,
		Sell:     sellUC,
		Sessions: sessions,
	})
	feed := handler.NewListingFeed(listingUC, hub, cfg.Search.Debounce, cfg.AllowedOrigins, logger)

	metrics, err := handler.NewMetricsInterceptor(otel.Meter("jo3qma.com/book_market"))
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	router := handler.NewRouter(h, feed,
		connect.WithInterceptors(handler.NewLoggingInterceptor(logger), metrics),
	)

	// HTTPサーバーの設定
	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンの設定
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// シグナル待機（Ctrl+Cなど）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server exited")
	return nil
}
