package repository

import (
	"context"

	"jo3qma.com/book_market/internal/domain/model"
)

// BookRepository は出品書籍の取得・作成方法を抽象化します。
// 実装がコンテンツAPIなのか別のストアなのかはドメイン層は知りません。
type BookRepository interface {
	// List は全ての出品を取得します（認証不要）
	List(ctx context.Context) ([]*model.Book, error)
	// ListByUser はトークンの持ち主が出品した書籍のみを取得します
	ListByUser(ctx context.Context, token string) ([]*model.Book, error)
	// FetchByID は指定されたIDの書籍を取得します
	FetchByID(ctx context.Context, bookID string) (*model.Book, error)
	// Create は新しい出品を作成します
	Create(ctx context.Context, token string, data model.BookData) (*model.Book, error)
}
