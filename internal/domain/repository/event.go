package repository

import (
	"context"

	"jo3qma.com/book_market/internal/domain/model"
)

// EventPublisher は交渉イベントの配信先を抽象化します。
type EventPublisher interface {
	Publish(ctx context.Context, event model.NegotiationEvent) error
}
