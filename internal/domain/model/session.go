package model

import "time"

// Session はログイン中のユーザーのセッションです
// バックエンドが発行したトークンはサーバー側でのみ保持します
type Session struct {
	ID        string
	Token     string
	Subject   string // トークンの sub クレーム。取得できない場合は空
	ExpiresAt time.Time
}
