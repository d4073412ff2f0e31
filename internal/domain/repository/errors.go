package repository

import "errors"

var (
	// ErrNotFound は対象のレコードが存在しないことを表します
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated はトークンが必要な操作でトークンがない、または拒否されたことを表します
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrTokenNotFound はセッションIDに対応するトークンが保存されていないことを表します
	ErrTokenNotFound = errors.New("token not found")
	// ErrInvalidISBN はISBNの形式が不正なことを表します
	ErrInvalidISBN = errors.New("invalid isbn")
)
