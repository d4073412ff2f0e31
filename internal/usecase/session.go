package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"jo3qma.com/book_market/internal/domain/model"
	"jo3qma.com/book_market/internal/domain/repository"
)

// SessionService はログイン状態を管理します
// バックエンドが発行したトークンは TokenStore に保存し、クライアントにはセッションIDだけを渡します
type SessionService struct {
	accounts repository.AccountRepository
	store    repository.TokenStore
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionService は新しいSessionServiceインスタンスを作成します
// ttl はトークンに有効期限（exp）がない場合のセッションの有効期間です
func NewSessionService(accounts repository.AccountRepository, store repository.TokenStore, ttl time.Duration) *SessionService {
	return &SessionService{
		accounts: accounts,
		store:    store,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login はバックエンドで認証し、新しいセッションを開始します
func (s *SessionService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	token, err := s.accounts.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return s.start(ctx, token)
}

// Register はアカウントを作成し、新しいセッションを開始します
func (s *SessionService) Register(ctx context.Context, name, email, password string) (*model.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	token, err := s.accounts.Register(ctx, strings.TrimSpace(name), email, password)
	if err != nil {
		return nil, fmt.Errorf("register failed: %w", err)
	}
	return s.start(ctx, token)
}

// Logout はセッションを破棄します
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.store.Delete(ctx, sessionID)
}

// Resolve はセッションIDからセッションを復元します
// 存在しない、または期限切れの場合は repository.ErrUnauthenticated を返します
func (s *SessionService) Resolve(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, repository.ErrUnauthenticated
	}
	token, err := s.store.Load(ctx, sessionID)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return nil, repository.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	subject, exp := tokenClaims(token)
	if !exp.IsZero() && !s.now().Before(exp) {
		_ = s.store.Delete(ctx, sessionID)
		return nil, repository.ErrUnauthenticated
	}
	return &model.Session{
		ID:        sessionID,
		Token:     token,
		Subject:   subject,
		ExpiresAt: exp,
	}, nil
}

// IsAuthenticated はセッションが有効かどうかを返します
func (s *SessionService) IsAuthenticated(ctx context.Context, sessionID string) bool {
	_, err := s.Resolve(ctx, sessionID)
	return err == nil
}

func (s *SessionService) start(ctx context.Context, token string) (*model.Session, error) {
	now := s.now()
	subject, exp := tokenClaims(token)

	expiresAt := now.Add(s.ttl)
	if !exp.IsZero() && exp.Before(expiresAt) {
		expiresAt = exp
	}
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return nil, fmt.Errorf("token already expired: %w", repository.ErrUnauthenticated)
	}

	id := uuid.NewString()
	if err := s.store.Save(ctx, id, token, ttl); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return &model.Session{
		ID:        id,
		Token:     token,
		Subject:   subject,
		ExpiresAt: expiresAt,
	}, nil
}

// tokenClaims はトークンの sub と exp を読み取ります
// 署名の検証はバックエンドの責務なのでここでは行いません。JWTでないトークンはゼロ値を返します
func tokenClaims(token string) (string, time.Time) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", time.Time{}
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return claims.Subject, exp
}
