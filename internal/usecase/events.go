package usecase

import (
	"context"
	"log/slog"
	"time"

	"jo3qma.com/book_market/internal/domain/model"
	"jo3qma.com/book_market/internal/domain/repository"
)

// publish は交渉イベントを配信します
// 配信の失敗はログに残すだけで、呼び出し元の操作は失敗させません
func publish(ctx context.Context, pub repository.EventPublisher, logger *slog.Logger, event model.NegotiationEvent) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		logger.Warn("failed to publish negotiation event", "kind", event.Kind, "book", event.BookID, "error", err)
	}
}

func orderEvent(kind model.EventKind, o *model.Order, at time.Time) model.NegotiationEvent {
	return model.NegotiationEvent{
		Kind:    kind,
		OrderID: o.ID,
		BookID:  o.Data.Book,
		Price:   o.Data.Price,
		Counter: o.Data.Counter,
		Status:  o.Data.Status,
		At:      at,
	}
}
