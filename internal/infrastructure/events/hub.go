package events

import (
	"context"
	"log/slog"
	"sync"

	"jo3qma.com/book_market/internal/domain/model"
)

// Hub はプロセス内で交渉イベントを購読者に配信します
// 遅い購読者のためにイベントを待たせることはせず、バッファが一杯なら破棄します
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan model.NegotiationEvent
	nextID uint64
	logger *slog.Logger
}

// NewHub は新しいHubを作成します
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[uint64]chan model.NegotiationEvent),
		logger: logger,
	}
}

// Publish はイベントを全ての購読者に配信します
func (h *Hub) Publish(ctx context.Context, event model.NegotiationEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.logger.Warn("dropping event for slow subscriber", "subscriber", id, "kind", event.Kind)
		}
	}
	return nil
}

// Subscribe は購読を開始します。返された関数を呼ぶと購読を解除し、チャネルを閉じます
func (h *Hub) Subscribe(buffer int) (<-chan model.NegotiationEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan model.NegotiationEvent, buffer)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers は現在の購読者数を返します
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
