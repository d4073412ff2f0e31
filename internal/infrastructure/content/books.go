package content

import (
	"context"
	"encoding/json"
	"fmt"

	"jo3qma.com/book_market/internal/domain/model"
	"jo3qma.com/book_market/internal/domain/repository"
)

// bookData は書籍レコードの data オブジェクトのJSON構造です
// キー名はフロントエンドが保存している形式（"Original price", "Cover"）に合わせます
type bookData struct {
	Name          string     `json:"name"`
	Author        string     `json:"author"`
	Publisher     string     `json:"publisher"`
	ISBN          flexString `json:"isbn"`
	Description   string     `json:"description,omitempty"`
	OriginalPrice optNumber  `json:"Original price,omitzero"`
	Cover         string     `json:"Cover,omitempty"`
}

// bookRepository はコンテンツAPIの Books コレクションを BookRepository として扱う実装です
type bookRepository struct {
	client *Client
	typeID string
}

// NewBookRepository は Books コンテンツタイプのリポジトリを作成します
func NewBookRepository(client *Client, typeID string) repository.BookRepository {
	return &bookRepository{client: client, typeID: typeID}
}

func (r *bookRepository) List(ctx context.Context) ([]*model.Book, error) {
	recs, err := r.client.List(ctx, r.typeID)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(recs), nil
}

func (r *bookRepository) ListByUser(ctx context.Context, token string) ([]*model.Book, error) {
	recs, err := r.client.ListByUser(ctx, token, r.typeID)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(recs), nil
}

func (r *bookRepository) FetchByID(ctx context.Context, bookID string) (*model.Book, error) {
	rec, err := r.client.Read(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return decodeBook(rec)
}

func (r *bookRepository) Create(ctx context.Context, token string, data model.BookData) (*model.Book, error) {
	rec, err := r.client.Create(ctx, token, r.typeID, toBookData(data))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("create book: %w: empty content", ErrBackend)
	}
	return decodeBook(rec)
}

// decodeAll は壊れたレコードを読み飛ばしながら変換します
// 1件の不正なデータで一覧全体が表示できなくなるのを避けます
func (r *bookRepository) decodeAll(recs []record) []*model.Book {
	books := make([]*model.Book, 0, len(recs))
	for i := range recs {
		b, err := decodeBook(&recs[i])
		if err != nil {
			r.client.logger.Warn("skipping malformed book record", "id", string(recs[i].ID), "error", err)
			continue
		}
		books = append(books, b)
	}
	return books
}

func decodeBook(rec *record) (*model.Book, error) {
	var d bookData
	if len(rec.Data) > 0 {
		if err := json.Unmarshal(rec.Data, &d); err != nil {
			return nil, fmt.Errorf("failed to decode book %s: %w", string(rec.ID), err)
		}
	}
	return &model.Book{
		ID: string(rec.ID),
		Data: model.BookData{
			Name:          d.Name,
			Author:        d.Author,
			Publisher:     d.Publisher,
			ISBN:          string(d.ISBN),
			Description:   d.Description,
			OriginalPrice: d.OriginalPrice.ptr(),
			Cover:         d.Cover,
		},
		CreatedBy: string(rec.CreatedBy),
		CreatedAt: rec.CreatedAt,
	}, nil
}

func toBookData(d model.BookData) bookData {
	return bookData{
		Name:          d.Name,
		Author:        d.Author,
		Publisher:     d.Publisher,
		ISBN:          flexString(d.ISBN),
		Description:   d.Description,
		OriginalPrice: optFrom(d.OriginalPrice),
		Cover:         d.Cover,
	}
}
