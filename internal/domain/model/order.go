package model

import "strings"

// Order は1冊の本に対する購入希望者のオファー（注文）を表すドメインモデルです
type Order struct {
	ID        string
	Data      OrderData
	CreatedBy string // オファーを出した購入者のID
	CreatedAt string // ISO 8601
}

// OrderData はオファーレコードの data オブジェクトです
type OrderData struct {
	Book    string   // 対象となる Book の ID
	Price   float64  // 購入者の提示額
	Counter *float64 // 出品者のカウンターオファー。未提示の場合は nil
	Status  Status
}

// Status はオファーの状態を表します
type Status string

const (
	// StatusPending は status が欠けているレコードの表示用フォールバックです。書き込みには使いません
	StatusPending  Status = "pending"
	StatusReceived Status = "received" // 作成直後
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// WritableStatuses は出品者が選択できる状態の一覧です（表示順）
var WritableStatuses = []Status{StatusReceived, StatusApproved, StatusRejected}

// Display は表示用の状態を返します。未設定の場合は pending です
func (s Status) Display() Status {
	if s == "" {
		return StatusPending
	}
	return s
}

// IsWritable は状態が書き込み可能な値かどうかを返します
func (s Status) IsWritable() bool {
	for _, w := range WritableStatuses {
		if s == w {
			return true
		}
	}
	return false
}

// ParseStatus は入力文字列を書き込み可能な Status に変換します
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsWritable() {
		return "", false
	}
	return s, true
}

// StatusOptions はステータス選択肢を返します
// 現在の状態を先頭に固定し、残りは WritableStatuses の順に並べます
func StatusOptions(current Status) []Status {
	options := make([]Status, 0, len(WritableStatuses))
	if current.IsWritable() {
		options = append(options, current)
	}
	for _, s := range WritableStatuses {
		if s != current {
			options = append(options, s)
		}
	}
	return options
}
