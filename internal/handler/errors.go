package handler

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"jo3qma.com/book_market/internal/domain/repository"
	"jo3qma.com/book_market/internal/usecase"
)

// ValidationHeaderPrefix は入力チェックに失敗したフィールドを返すメタデータのキーの接頭辞です
const ValidationHeaderPrefix = "X-Validation-"

// toConnectError はドメインのエラーを Connect のエラーコードに変換します
func toConnectError(err error) error {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidListing):
		ce := connect.NewError(connect.CodeInvalidArgument, err)
		for field, msg := range usecase.ValidationMessages(err) {
			ce.Meta().Set(ValidationHeaderPrefix+field, msg)
		}
		return ce
	case errors.Is(err, usecase.ErrInvalidPrice),
		errors.Is(err, usecase.ErrInvalidStatus),
		errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrMissingID),
		errors.Is(err, repository.ErrInvalidISBN):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, repository.ErrUnauthenticated):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, repository.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
