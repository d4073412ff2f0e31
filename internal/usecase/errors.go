package usecase

import "errors"

var (
	// ErrInvalidPrice は提示額が正の数として解釈できないことを表します
	ErrInvalidPrice = errors.New("price must be a positive number")
	// ErrInvalidStatus は書き込めない状態が指定されたことを表します
	ErrInvalidStatus = errors.New("status must be one of received, approved, rejected")
	// ErrInvalidListing は出品内容の入力チェックに失敗したことを表します
	ErrInvalidListing = errors.New("invalid listing")
	// ErrInvalidCredentials はログイン・登録の入力が不足していることを表します
	ErrInvalidCredentials = errors.New("email and password are required")
	// ErrMissingID は対象のIDが指定されていないことを表します
	ErrMissingID = errors.New("id is required")
)
