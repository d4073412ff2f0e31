package content

import (
	"context"
	"fmt"
	"io"

	"jo3qma.com/book_market/internal/domain/repository"
)

// assetRepository はバックエンドのアップロードエンドポイントを呼び出す実装です
type assetRepository struct {
	client *Client
}

// NewAssetRepository は新しいAssetRepositoryの実装を作成します
func NewAssetRepository(client *Client) repository.AssetRepository {
	return &assetRepository{client: client}
}

func (r *assetRepository) Upload(ctx context.Context, token, filename string, body io.Reader) (string, error) {
	if token == "" {
		return "", repository.ErrUnauthenticated
	}
	env, err := r.client.postMultipart(ctx, "/upload", token, "file", filename, body)
	if err != nil {
		return "", err
	}
	if env.URL == "" {
		return "", fmt.Errorf("upload: %w: no url in response", ErrBackend)
	}
	return env.URL, nil
}

func (r *assetRepository) Delete(ctx context.Context, token, url string) error {
	if token == "" {
		return repository.ErrUnauthenticated
	}
	_, err := r.client.postJSON(ctx, "/upload/delete", token, map[string]any{"url": url})
	return err
}
