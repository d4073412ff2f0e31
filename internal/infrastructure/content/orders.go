package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"jo3qma.com/book_market/internal/domain/model"
	"jo3qma.com/book_market/internal/domain/repository"
)

// orderData はオファーレコードの data オブジェクトのJSON構造です
// counter は未提示でも null として送ります。status は欠けている場合は書き足しません
type orderData struct {
	Book    flexString `json:"book"`
	Price   flexNumber `json:"price"`
	Status  string     `json:"status,omitempty"`
	Counter optNumber  `json:"counter"`
}

// orderRepository はコンテンツAPIの Orders コレクションを OrderRepository として扱う実装です
type orderRepository struct {
	client *Client
	typeID string
}

// NewOrderRepository は Orders コンテンツタイプのリポジトリを作成します
func NewOrderRepository(client *Client, typeID string) repository.OrderRepository {
	return &orderRepository{client: client, typeID: typeID}
}

func (r *orderRepository) List(ctx context.Context) ([]*model.Order, error) {
	recs, err := r.client.List(ctx, r.typeID)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(recs), nil
}

func (r *orderRepository) ListByUser(ctx context.Context, token string) ([]*model.Order, error) {
	recs, err := r.client.ListByUser(ctx, token, r.typeID)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(recs), nil
}

func (r *orderRepository) FetchByID(ctx context.Context, orderID string) (*model.Order, error) {
	rec, err := r.client.Read(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return decodeOrder(rec)
}

func (r *orderRepository) Create(ctx context.Context, token string, data model.OrderData) (*model.Order, error) {
	rec, err := r.client.Create(ctx, token, r.typeID, toOrderData(data))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("create order: %w: empty content", ErrBackend)
	}
	return decodeOrder(rec)
}

// Mutate は read-modify-write でオファーを更新します
// 直前に読み込んだ data に変更を重ね、未知のキーも含めた data 全体を送信します
// バージョンチェックはないため、同じオファーへの同時更新は後勝ちになります
func (r *orderRepository) Mutate(ctx context.Context, token, orderID string, mutate repository.OrderMutation) (*model.Order, error) {
	if token == "" {
		return nil, repository.ErrUnauthenticated
	}

	rec, err := r.client.Read(ctx, orderID)
	if err != nil {
		return nil, err
	}
	current, err := decodeOrder(rec)
	if err != nil {
		return nil, err
	}

	data := current.Data
	changed, err := mutate(&data)
	if err != nil {
		return nil, err
	}
	if !changed {
		return current, nil
	}

	merged, err := mergeOrderData(rec.Data, current.Data, data)
	if err != nil {
		return nil, err
	}

	updated, err := r.client.Update(ctx, token, orderID, merged)
	if err != nil {
		return nil, err
	}
	if updated == nil || len(updated.Data) == 0 {
		// 更新後のレコードを返さないバックエンドもあるので、送信した内容で組み立てる
		current.Data = data
		return current, nil
	}
	return decodeOrder(updated)
}

func (r *orderRepository) decodeAll(recs []record) []*model.Order {
	orders := make([]*model.Order, 0, len(recs))
	for i := range recs {
		o, err := decodeOrder(&recs[i])
		if err != nil {
			r.client.logger.Warn("skipping malformed order record", "id", string(recs[i].ID), "error", err)
			continue
		}
		orders = append(orders, o)
	}
	return orders
}

// mergeOrderData は元の data オブジェクトに、変更された既知のフィールドだけを上書きします
// 変更していないフィールドは保存されていた値（"5" と 5 のようなJSONの型も含む）をそのまま残します
func mergeOrderData(raw json.RawMessage, before, after model.OrderData) (map[string]json.RawMessage, error) {
	blob := map[string]json.RawMessage{}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &blob); err != nil {
			return nil, fmt.Errorf("failed to decode existing order data: %w", err)
		}
	}

	known, err := json.Marshal(toOrderData(after))
	if err != nil {
		return nil, fmt.Errorf("failed to encode order data: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode order data: %w", err)
	}
	unchanged := map[string]bool{
		"book":    before.Book == after.Book,
		"price":   before.Price == after.Price,
		"status":  before.Status == after.Status,
		"counter": sameAmount(before.Counter, after.Counter),
	}
	for k, v := range fields {
		if _, stored := blob[k]; stored && unchanged[k] {
			continue
		}
		blob[k] = v
	}
	return blob, nil
}

func sameAmount(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func decodeOrder(rec *record) (*model.Order, error) {
	var d orderData
	if len(rec.Data) > 0 {
		if err := json.Unmarshal(rec.Data, &d); err != nil {
			return nil, fmt.Errorf("failed to decode order %s: %w", string(rec.ID), err)
		}
	}
	return &model.Order{
		ID: string(rec.ID),
		Data: model.OrderData{
			Book:    string(d.Book),
			Price:   float64(d.Price),
			Counter: d.Counter.ptr(),
			Status:  model.Status(d.Status),
		},
		CreatedBy: string(rec.CreatedBy),
		CreatedAt: rec.CreatedAt,
	}, nil
}

func toOrderData(d model.OrderData) orderData {
	return orderData{
		Book:    flexString(d.Book),
		Price:   flexNumber(d.Price),
		Status:  string(d.Status),
		Counter: optFrom(d.Counter),
	}
}
