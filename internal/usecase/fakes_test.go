package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"jo3qma.com/book_market/internal/domain/model"
	"jo3qma.com/book_market/internal/domain/repository"
)

type fakeBookRepo struct {
	books     []*model.Book
	mine      []*model.Book
	err       error
	createErr error
	created   []model.BookData
}

func (f *fakeBookRepo) List(ctx context.Context) ([]*model.Book, error) {
	return f.books, f.err
}

func (f *fakeBookRepo) ListByUser(ctx context.Context, token string) ([]*model.Book, error) {
	return f.mine, f.err
}

func (f *fakeBookRepo) FetchByID(ctx context.Context, bookID string) (*model.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.books {
		if b.ID == bookID {
			return b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBookRepo) Create(ctx context.Context, token string, data model.BookData) (*model.Book, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, data)
	return &model.Book{ID: "new-book", Data: data}, nil
}

// fakeOrderRepo はメモリ上のオファーを保持します
// Mutate は実装と同じく読み込み・変更・変更があれば書き込みを行います
type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    []*model.Order
	listErr   error
	createErr error
	hideNew   bool // 作成直後のオファーを List に含めない
	calls     int  // List を含む全呼び出し回数
	updates   int
}

func (f *fakeOrderRepo) List(ctx context.Context) ([]*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*model.Order, 0, len(f.orders))
	for _, o := range f.orders {
		if f.hideNew && o.ID == "new-order" {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, token string) ([]*model.Order, error) {
	return f.List(ctx)
}

func (f *fakeOrderRepo) FetchByID(ctx context.Context, orderID string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, o := range f.orders {
		if o.ID == orderID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrderRepo) Create(ctx context.Context, token string, data model.OrderData) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	o := &model.Order{ID: "new-order", Data: data}
	f.orders = append(f.orders, o)
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) Mutate(ctx context.Context, token, orderID string, mutate repository.OrderMutation) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, o := range f.orders {
		if o.ID != orderID {
			continue
		}
		data := o.Data
		changed, err := mutate(&data)
		if err != nil {
			return nil, err
		}
		if changed {
			f.updates++
			o.Data = data
		}
		cp := *o
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.NegotiationEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event model.NegotiationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *fakePublisher) kinds() []model.EventKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.EventKind, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Kind)
	}
	return out
}

type fakeAssetRepo struct {
	url       string
	uploadErr error
	uploaded  []string
	deleted   []string
	deleteCtx context.Context
}

func (f *fakeAssetRepo) Upload(ctx context.Context, token, filename string, body io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	f.uploaded = append(f.uploaded, filename)
	return f.url, nil
}

func (f *fakeAssetRepo) Delete(ctx context.Context, token, url string) error {
	f.deleteCtx = ctx
	f.deleted = append(f.deleted, url)
	return nil
}

type fakeCatalog struct {
	meta *model.BookMetadata
	err  error
}

func (f fakeCatalog) LookupISBN(ctx context.Context, isbn string) (*model.BookMetadata, error) {
	return f.meta, f.err
}

type fakeAccountRepo struct {
	token string
	err   error
}

func (f fakeAccountRepo) Login(ctx context.Context, email, password string) (string, error) {
	return f.token, f.err
}

func (f fakeAccountRepo) Register(ctx context.Context, name, email, password string) (string, error) {
	return f.token, f.err
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
	ttls   map[string]time.Duration
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeTokenStore) Save(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[sessionID] = token
	f.ttls[sessionID] = ttl
	return nil
}

func (f *fakeTokenStore) Load(ctx context.Context, sessionID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[sessionID]
	if !ok {
		return "", repository.ErrTokenNotFound
	}
	return tok, nil
}

func (f *fakeTokenStore) Delete(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, sessionID)
	return nil
}

var errBackend = errors.New("backend down")

func ptr(f float64) *float64 { return &f }

func order(id, book string, price float64) *model.Order {
	return &model.Order{ID: id, Data: model.OrderData{Book: book, Price: price, Status: model.StatusReceived}}
}
