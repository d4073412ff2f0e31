package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"jo3qma.com/book_market/internal/domain/repository"
)

func TestCatalogScraper_extractMetadata_prefersLinkedData(t *testing.T) {
	t.Parallel()

	html := `<html><head>
<meta property="og:title" content="OG Title">
<meta property="og:image" content="https://example.com/og.jpg">
<script type="application/ld+json">{"@type":"WebSite","name":"Catalog"}</script>
<script type="application/ld+json">[{"@type":["Book","CreativeWork"],"name":"Dune",
 "author":[{"@type":"Person","name":"Frank Herbert"},"Brian Herbert"],
 "publisher":{"@type":"Organization","name":"Ace"},
 "image":"https://example.com/dune.jpg","description":"Desert planet."}]</script>
</head><body></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to build doc: %v", err)
	}

	s := &catalogScraper{}
	got := s.extractMetadata(doc)

	if got.Title != "Dune" {
		t.Errorf("Title got %q, want %q", got.Title, "Dune")
	}
	if got.Author != "Frank Herbert, Brian Herbert" {
		t.Errorf("Author got %q", got.Author)
	}
	if got.Publisher != "Ace" {
		t.Errorf("Publisher got %q, want %q", got.Publisher, "Ace")
	}
	if got.Cover != "https://example.com/dune.jpg" {
		t.Errorf("Cover got %q", got.Cover)
	}
	if got.Description != "Desert planet." {
		t.Errorf("Description got %q", got.Description)
	}
}

func TestCatalogScraper_extractMetadata_fallsBackToMetaTags(t *testing.T) {
	t.Parallel()

	html := `<html><head>
<meta property="og:title" content="Neuromancer">
<meta name="author" content="William Gibson">
<meta property="og:image" content="https://example.com/n.jpg">
<meta name="description" content="Cyberpunk.">
<script type="application/ld+json">{invalid json}</script>
</head><body><span itemprop="publisher"> Ace Books </span></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to build doc: %v", err)
	}

	s := &catalogScraper{}
	got := s.extractMetadata(doc)

	if got.Title != "Neuromancer" || got.Author != "William Gibson" {
		t.Errorf("got title=%q author=%q", got.Title, got.Author)
	}
	if got.Publisher != "Ace Books" {
		t.Errorf("Publisher got %q, want %q", got.Publisher, "Ace Books")
	}
	if got.Cover != "https://example.com/n.jpg" || got.Description != "Cyberpunk." {
		t.Errorf("got cover=%q description=%q", got.Cover, got.Description)
	}
}

func TestNormalizeISBN(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"978-0-441-01359-3", "9780441013593", true},
		{"0 441 01359 7", "0441013597", true},
		{"080442957x", "080442957X", true},
		{"08044X9570", "", false},
		{"12345", "", false},
		{"978044101359A", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeISBN(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("normalizeISBN(%q) got (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCatalogScraper_LookupISBN_fetchesNormalizedPath(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `<html><head><meta property="og:title" content="Dune"></head></html>`)
	}))
	t.Cleanup(srv.Close)

	s := newCatalogScraper(srv.Client(), srv.URL)
	got, err := s.LookupISBN(context.Background(), "978-0-441-01359-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/isbn/9780441013593" {
		t.Errorf("path got %q", gotPath)
	}
	if got.ISBN != "9780441013593" || got.Title != "Dune" {
		t.Errorf("got %+v", got)
	}
}

func TestCatalogScraper_LookupISBN_errors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "9780441013593") {
			_, _ = io.WriteString(w, `<html><body></body></html>`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	s := newCatalogScraper(srv.Client(), srv.URL)

	if _, err := s.LookupISBN(context.Background(), "abc"); !errors.Is(err, repository.ErrInvalidISBN) {
		t.Errorf("invalid isbn got %v, want ErrInvalidISBN", err)
	}
	if _, err := s.LookupISBN(context.Background(), "9780441013593"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("empty page got %v, want ErrNotFound", err)
	}
	if _, err := s.LookupISBN(context.Background(), "0441013597"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("404 got %v, want ErrNotFound", err)
	}
}
