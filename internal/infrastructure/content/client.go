package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"jo3qma.com/book_market/internal/domain/repository"
)

// ErrBackend はバックエンドが異常な応答を返したことを表します
var ErrBackend = errors.New("content backend error")

// APIError は非2xxの応答、または success=false の応答です
type APIError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("content backend %s: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("content backend %s: status %d: %s", e.Path, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return ErrBackend }

// Is は 404 を repository.ErrNotFound に、401/403 を repository.ErrUnauthenticated に対応させます
func (e *APIError) Is(target error) bool {
	switch target {
	case repository.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case repository.ErrUnauthenticated:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// envelope はバックエンドの共通レスポンス形式です
type envelope struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message,omitempty"`
	Contents []record `json:"contents,omitempty"`
	Content  *record  `json:"content,omitempty"`
	Token    string   `json:"token,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// record は汎用コンテンツレコードです。data の中身はコンテンツタイプごとに異なります
type record struct {
	ID        flexString      `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedBy flexString      `json:"created_by"`
	CreatedAt string          `json:"created_at"`
}

// Client は汎用コンテンツAPI（/content/*）を呼び出すHTTPクライアントです
// 外部システムのレスポンス形式をドメインモデルに変換する腐敗防止層の土台になります
// リトライは行いません。1回の呼び出しにつき1回だけリクエストします
type Client struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewClient は新しいClientを作成します
// HTTPトランスポートは OpenTelemetry で計装されます
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return newClient(
		&http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		baseURL,
		logger,
	)
}

// newClient はテスト容易性のための内部コンストラクタです。
func newClient(client *http.Client, baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// List は content_type_id の全レコードを取得します（認証不要）
func (c *Client) List(ctx context.Context, typeID string) ([]record, error) {
	env, err := c.postJSON(ctx, "/content/list", "", map[string]any{"content_type_id": typeID})
	if err != nil {
		return nil, err
	}
	return env.Contents, nil
}

// ListByUser はトークンの持ち主が作成したレコードのみを取得します
func (c *Client) ListByUser(ctx context.Context, token, typeID string) ([]record, error) {
	if token == "" {
		return nil, repository.ErrUnauthenticated
	}
	env, err := c.postJSON(ctx, "/content/list-by-user", token, map[string]any{"content_type_id": typeID})
	if err != nil {
		return nil, err
	}
	return env.Contents, nil
}

// Read はIDを指定して1件取得します
func (c *Client) Read(ctx context.Context, id string) (*record, error) {
	env, err := c.postJSON(ctx, "/content/read", "", map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if env.Content == nil {
		return nil, fmt.Errorf("content %s: %w", id, repository.ErrNotFound)
	}
	return env.Content, nil
}

// Create はレコードを作成します。token が空の場合は匿名で作成します
func (c *Client) Create(ctx context.Context, token, typeID string, data any) (*record, error) {
	env, err := c.postJSON(ctx, "/content/create", token, map[string]any{
		"content_type_id": typeID,
		"data":            data,
	})
	if err != nil {
		return nil, err
	}
	return env.Content, nil
}

// Update はレコードの data を置き換えます
// バックエンドが部分更新するか全置換するかは保証されないため、呼び出し側は常に data 全体を渡します
func (c *Client) Update(ctx context.Context, token, id string, data any) (*record, error) {
	if token == "" {
		return nil, repository.ErrUnauthenticated
	}
	env, err := c.postJSON(ctx, "/content/update", token, map[string]any{
		"id":   id,
		"data": data,
	})
	if err != nil {
		return nil, err
	}
	return env.Content, nil
}

// postJSON はJSONボディをPOSTし、共通レスポンスをデコードします
func (c *Client) postJSON(ctx context.Context, path, token string, body any) (*envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, path, token)
}

// postMultipart は1ファイルを multipart/form-data でPOSTします
func (c *Client) postMultipart(ctx context.Context, path, token, field, filename string, file io.Reader) (*envelope, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, path, token)
}

func (c *Client) do(req *http.Request, path, token string) (*envelope, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close response body", "path", path, "error", closeErr)
		}
	}()

	var env envelope
	decodeErr := json.NewDecoder(res.Body).Decode(&env)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		// エラー応答でも message が取れれば添える
		return nil, &APIError{Path: path, StatusCode: res.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w: %w", path, ErrBackend, decodeErr)
	}
	if !env.Success {
		return nil, &APIError{Path: path, StatusCode: res.StatusCode, Message: env.Message}
	}

	return &env, nil
}
