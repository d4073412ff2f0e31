package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
	"jo3qma.com/book_market/internal/domain/model"
)

// SubjectPrefix は交渉イベントの NATS サブジェクトの接頭辞です
const SubjectPrefix = "market.offers"

// Subject は本ごとのサブジェクト（market.offers.<bookID>）を返します
// NATS のトークンに使えない文字は '_' に置き換えます
func Subject(bookID string) string {
	token := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, bookID)
	if token == "" {
		token = "_"
	}
	return SubjectPrefix + "." + token
}

// NATSPublisher は交渉イベントを NATS に配信する EventPublisher です
// 複数インスタンス間でライブフィードを共有する場合に使用します
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher は新しいNATSPublisherを作成します
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (p *NATSPublisher) Publish(ctx context.Context, event model.NegotiationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(Subject(event.BookID), payload); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Bridge は NATS の全交渉イベントを購読し、ローカルの Hub に流します
func Bridge(conn *nats.Conn, hub *Hub, logger *slog.Logger) (*nats.Subscription, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sub, err := conn.Subscribe(SubjectPrefix+".>", func(msg *nats.Msg) {
		var event model.NegotiationEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Warn("ignoring malformed event", "subject", msg.Subject, "error", err)
			return
		}
		_ = hub.Publish(context.Background(), event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe %s.>: %w", SubjectPrefix, err)
	}
	return sub, nil
}
