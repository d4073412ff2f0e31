package repository

import (
	"context"
	"time"
)

// TokenStore はセッションIDとバックエンドのトークンの対応を保存します。
// 保存先がメモリなのか Redis なのかはユースケース層は知りません。
type TokenStore interface {
	Save(ctx context.Context, sessionID, token string, ttl time.Duration) error
	// Load は保存されたトークンを返します。存在しない・期限切れの場合は ErrTokenNotFound を返します
	Load(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}
