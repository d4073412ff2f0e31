package repository

import "context"

// AccountRepository はバックエンドの認証エンドポイントを抽象化します。
// どちらもバックエンドが発行したトークン（JWT）を返します
type AccountRepository interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) (string, error)
}
