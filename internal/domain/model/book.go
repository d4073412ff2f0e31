package model

// Book は出品者が登録した古本の出品情報を表すドメインモデルです
// コンテンツバックエンドの汎用レコード形式（id / data / created_by）を知らない、純粋なデータ構造です
type Book struct {
	ID        string
	Data      BookData
	CreatedBy string // 出品者のID
	CreatedAt string // ISO 8601
}

// BookData は書籍レコードの data オブジェクトに保存される書誌情報です
type BookData struct {
	Name          string
	Author        string
	Publisher     string
	ISBN          string // バックエンド上では数値の場合もあるため文字列に正規化します
	Description   string
	OriginalPrice *float64 // 定価。未設定の場合は nil
	Cover         string   // 表紙画像のURL。空の場合はプレースホルダーを表示します
}

// BookMetadata は外部カタログから取得した書誌情報です
// 出品フォームの事前入力に利用します
type BookMetadata struct {
	ISBN        string
	Title       string
	Author      string
	Publisher   string
	Cover       string
	Description string
}
