package content

import (
	"context"
	"fmt"

	"jo3qma.com/book_market/internal/domain/repository"
)

// accountRepository はバックエンドの /auth/* エンドポイントを呼び出す実装です
type accountRepository struct {
	client *Client
}

// NewAccountRepository は新しいAccountRepositoryの実装を作成します
func NewAccountRepository(client *Client) repository.AccountRepository {
	return &accountRepository{client: client}
}

func (r *accountRepository) Login(ctx context.Context, email, password string) (string, error) {
	return r.issue(ctx, "/auth/login", map[string]any{
		"email":    email,
		"password": password,
	})
}

func (r *accountRepository) Register(ctx context.Context, name, email, password string) (string, error) {
	return r.issue(ctx, "/auth/register", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

func (r *accountRepository) issue(ctx context.Context, path string, body map[string]any) (string, error) {
	env, err := r.client.postJSON(ctx, path, "", body)
	if err != nil {
		return "", err
	}
	if env.Token == "" {
		return "", fmt.Errorf("%s: %w: no token in response", path, ErrBackend)
	}
	return env.Token, nil
}
