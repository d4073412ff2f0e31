package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"jo3qma.com/book_market/internal/domain/model"
	"jo3qma.com/book_market/internal/domain/repository"
)

// NewListing は出品フォームの入力です
type NewListing struct {
	Name          string   `validate:"required,max=300"`
	Author        string   `validate:"max=300"`
	Publisher     string   `validate:"max=300"`
	ISBN          string   `validate:"max=17"`
	Description   string   `validate:"max=5000"`
	OriginalPrice *float64 `validate:"omitempty,gt=0"`
	Cover         string   `validate:"omitempty,url"`
}

// CoverUpload は出品と同時にアップロードする表紙画像です
type CoverUpload struct {
	Filename string
	Body     io.Reader
}

// SellUsecase は出品（書籍の登録）と、ISBNによる書誌情報の事前入力を担当します
type SellUsecase struct {
	books    repository.BookRepository
	assets   repository.AssetRepository
	catalog  repository.CatalogRepository
	events   repository.EventPublisher
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewSellUsecase は新しいSellUsecaseインスタンスを作成します
func NewSellUsecase(books repository.BookRepository, assets repository.AssetRepository, catalog repository.CatalogRepository, events repository.EventPublisher, logger *slog.Logger) *SellUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SellUsecase{
		books:    books,
		assets:   assets,
		catalog:  catalog,
		events:   events,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		now:      time.Now,
	}
}

// CreateListing は出品を作成します
// 表紙画像がある場合は先にアップロードし、返されたURLを Cover に設定してから作成します
// 作成に失敗した場合はアップロード済みの画像を削除します
func (u *SellUsecase) CreateListing(ctx context.Context, token string, in NewListing, cover *CoverUpload) (*model.Book, error) {
	if token == "" {
		return nil, repository.ErrUnauthenticated
	}
	in.Name = strings.TrimSpace(in.Name)
	in.ISBN = strings.TrimSpace(in.ISBN)
	if err := u.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidListing, err)
	}

	data := model.BookData{
		Name:          in.Name,
		Author:        strings.TrimSpace(in.Author),
		Publisher:     strings.TrimSpace(in.Publisher),
		ISBN:          in.ISBN,
		Description:   in.Description,
		OriginalPrice: in.OriginalPrice,
		Cover:         in.Cover,
	}

	uploaded := ""
	if cover != nil && cover.Body != nil {
		url, err := u.assets.Upload(ctx, token, coverFilename(cover.Filename), cover.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to upload cover: %w", err)
		}
		uploaded = url
		data.Cover = url
	}

	book, err := u.books.Create(ctx, token, data)
	if err != nil {
		if uploaded != "" {
			u.discardUpload(ctx, token, uploaded)
		}
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	publish(ctx, u.events, u.logger, model.NegotiationEvent{
		Kind:   model.EventListingCreated,
		BookID: book.ID,
		At:     u.now(),
	})
	return book, nil
}

// PrefillFromISBN は外部カタログから書誌情報を取得します
func (u *SellUsecase) PrefillFromISBN(ctx context.Context, isbn string) (*model.BookMetadata, error) {
	if strings.TrimSpace(isbn) == "" {
		return nil, ErrMissingID
	}
	if u.catalog == nil {
		return nil, fmt.Errorf("isbn lookup disabled: %w", repository.ErrNotFound)
	}
	return u.catalog.LookupISBN(ctx, isbn)
}

// discardUpload は作成に失敗した出品の表紙画像を削除します
// 呼び出し元のコンテキストがキャンセルされていても削除は試みます
func (u *SellUsecase) discardUpload(ctx context.Context, token, url string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := u.assets.Delete(ctx, token, url); err != nil {
		u.logger.Error("failed to delete orphaned cover", "url", url, "error", err)
	}
}

// coverFilename はアップロード用のファイル名を生成します（拡張子のみ元のファイル名から引き継ぎます）
func coverFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".jpg"
	}
	return uuid.NewString() + ext
}

// ValidationMessages は入力チェックのエラーをフィールドごとのメッセージに変換します
func ValidationMessages(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fmt.Sprintf("failed on %q", fe.Tag())
	}
	return out
}
