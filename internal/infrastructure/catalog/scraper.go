package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"jo3qma.com/book_market/internal/domain/model"
	"jo3qma.com/book_market/internal/domain/repository"
)

// catalogScraper は公開書誌カタログのISBNページをスクレイピングして書誌情報を取得する実装です
// 外部サイトのHTML構造をドメインモデルに変換する腐敗防止層です
type catalogScraper struct {
	client  *http.Client
	baseURL string
}

// NewCatalogScraper は新しいCatalogRepositoryの実装を作成します
func NewCatalogScraper(baseURL string, timeout time.Duration) repository.CatalogRepository {
	return newCatalogScraper(
		&http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		baseURL,
	)
}

// newCatalogScraper はテスト容易性のための内部コンストラクタです。
func newCatalogScraper(client *http.Client, baseURL string) *catalogScraper {
	return &catalogScraper{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// LookupISBN はISBNから書誌情報を取得します
func (s *catalogScraper) LookupISBN(ctx context.Context, isbn string) (*model.BookMetadata, error) {
	normalized, ok := normalizeISBN(isbn)
	if !ok {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidISBN, isbn)
	}

	url := fmt.Sprintf("%s/isbn/%s", s.baseURL, normalized)

	doc, err := fetchHTML(ctx, s.client, url)
	if err != nil {
		return nil, err
	}

	meta := s.extractMetadata(doc)
	if meta.Title == "" {
		return nil, fmt.Errorf("no metadata for isbn %s: %w", normalized, repository.ErrNotFound)
	}
	meta.ISBN = normalized
	return meta, nil
}

// extractMetadata はHTMLドキュメントから書誌情報を抽出します
// JSON-LD の Book を優先し、欠けている項目は OpenGraph / microdata で補います
func (s *catalogScraper) extractMetadata(doc *goquery.Document) *model.BookMetadata {
	meta := &model.BookMetadata{}

	if ld := s.parseLinkedData(doc); ld != nil {
		meta.Title = ld.Name
		meta.Author = ld.Author.joined()
		meta.Publisher = ld.Publisher.first()
		meta.Cover = ld.Image.first()
		meta.Description = ld.Description
	}

	attr := func(selector, name string) string {
		v, _ := doc.Find(selector).First().Attr(name)
		return v
	}
	text := func(selector string) string {
		return doc.Find(selector).First().Text()
	}

	meta.Title = firstNonEmpty(meta.Title, attr(`meta[property="og:title"]`, "content"), text(`[itemprop="name"]`), text("h1"))
	meta.Author = firstNonEmpty(meta.Author, attr(`meta[name="author"]`, "content"), text(`[itemprop="author"]`))
	meta.Publisher = firstNonEmpty(meta.Publisher, text(`[itemprop="publisher"]`))
	meta.Cover = firstNonEmpty(meta.Cover, attr(`meta[property="og:image"]`, "content"), attr(`img[itemprop="image"]`, "src"))
	meta.Description = firstNonEmpty(meta.Description, attr(`meta[property="og:description"]`, "content"), attr(`meta[name="description"]`, "content"))

	return meta
}

// linkedBook は schema.org の Book を表す JSON-LD です
type linkedBook struct {
	Type        ldText `json:"@type"`
	Name        string `json:"name"`
	Author      ldText `json:"author"`
	Publisher   ldText `json:"publisher"`
	Image       ldText `json:"image"`
	Description string `json:"description"`
}

// parseLinkedData は script[type="application/ld+json"] から Book を探します
func (s *catalogScraper) parseLinkedData(doc *goquery.Document) *linkedBook {
	var found *linkedBook
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		raw := bytes.TrimSpace([]byte(sel.Text()))
		if len(raw) == 0 {
			return true
		}

		var candidates []linkedBook
		if raw[0] == '[' {
			if err := json.Unmarshal(raw, &candidates); err != nil {
				return true
			}
		} else {
			var one linkedBook
			if err := json.Unmarshal(raw, &one); err != nil {
				return true
			}
			candidates = append(candidates, one)
		}

		for j := range candidates {
			if candidates[j].Type.has("Book") {
				found = &candidates[j]
				return false
			}
		}
		return true
	})
	return found
}

// ldText は JSON-LD の値で、文字列・{name}/{url} オブジェクト・それらの配列のいずれも受け付けます
type ldText []string

func (t *ldText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = append(*t, s)
	case '{':
		var obj struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		if v := firstNonEmpty(obj.Name, obj.URL); v != "" {
			*t = append(*t, v)
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		for _, item := range items {
			var one ldText
			if err := one.UnmarshalJSON(item); err != nil {
				return err
			}
			*t = append(*t, one...)
		}
	}
	return nil
}

func (t ldText) first() string {
	if len(t) == 0 {
		return ""
	}
	return strings.TrimSpace(t[0])
}

// joined は複数の値（共著者など）を ", " で連結します
func (t ldText) joined() string {
	parts := make([]string, 0, len(t))
	for _, s := range t {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// has は値のいずれかが v と一致するかを返します（@type が配列の場合があるため）
func (t ldText) has(v string) bool {
	for _, s := range t {
		if s == v {
			return true
		}
	}
	return false
}
