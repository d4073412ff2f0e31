package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"jo3qma.com/book_market/internal/domain/repository"
)

// fetchHTML は指定されたURLからHTMLを取得してgoquery.Documentを返します
// 共通のUser-Agent設定やエラーハンドリングを行います
func fetchHTML(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			fmt.Printf("warning: failed to close response body: %v\n", closeErr)
		}
	}()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("failed to fetch page: %w", repository.ErrNotFound)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch page: status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}

// normalizeISBN はハイフンや空白を取り除き、ISBN-10/13 の形式か検証します
// バーコード読み取り結果のように数字以外が混ざる入力も受け付けます
func normalizeISBN(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'X':
			b.WriteRune(r)
		case r == '-' || r == ' ':
			// 区切り文字は無視
		default:
			return "", false
		}
	}
	isbn := b.String()
	switch len(isbn) {
	case 10:
		// X はチェックディジットとして末尾にのみ現れる
		if strings.Contains(isbn[:9], "X") {
			return "", false
		}
		return isbn, true
	case 13:
		if strings.Contains(isbn, "X") {
			return "", false
		}
		return isbn, true
	}
	return "", false
}

// firstNonEmpty は最初の空でない文字列を返します
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
