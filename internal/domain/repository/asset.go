package repository

import (
	"context"
	"io"
)

// AssetRepository は表紙画像などのファイルのアップロード先を抽象化します。
type AssetRepository interface {
	// Upload はファイルをアップロードし、公開URLを返します
	Upload(ctx context.Context, token, filename string, body io.Reader) (string, error)
	// Delete はアップロード済みのファイルを削除します
	Delete(ctx context.Context, token, url string) error
}
