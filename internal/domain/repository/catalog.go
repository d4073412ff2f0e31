package repository

import (
	"context"

	"jo3qma.com/book_market/internal/domain/model"
)

// CatalogRepository は外部の書誌カタログからのISBN検索を抽象化します。
type CatalogRepository interface {
	// LookupISBN はISBNから書誌情報を取得します。見つからない場合は ErrNotFound を返します
	LookupISBN(ctx context.Context, isbn string) (*model.BookMetadata, error)
}
