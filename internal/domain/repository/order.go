package repository

import (
	"context"

	"jo3qma.com/book_market/internal/domain/model"
)

// OrderMutation は既存オファーの data を書き換える関数です。
// 変更がない場合は false を返し、その場合は更新リクエストを送りません。
type OrderMutation func(data *model.OrderData) (changed bool, err error)

// OrderRepository はオファー（注文）の取得・作成・更新方法を抽象化します。
type OrderRepository interface {
	// List は全てのオファーを取得します（認証不要）
	List(ctx context.Context) ([]*model.Order, error)
	// ListByUser はトークンの持ち主が出したオファーのみを取得します
	ListByUser(ctx context.Context, token string) ([]*model.Order, error)
	// FetchByID は指定されたIDのオファーを取得します
	FetchByID(ctx context.Context, orderID string) (*model.Order, error)
	// Create は新しいオファーを作成します。token は空でも構いません
	Create(ctx context.Context, token string, data model.OrderData) (*model.Order, error)
	// Mutate は最新の data を読み込み、mutate を適用した data 全体を書き戻します。
	// 更新後のオファーを返します
	Mutate(ctx context.Context, token, orderID string, mutate OrderMutation) (*model.Order, error)
}
