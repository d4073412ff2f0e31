package usecase

import (
	"errors"
	"testing"

	"jo3qma.com/book_market/internal/domain/model"
)

func TestHighestOffer(t *testing.T) {
	t.Parallel()

	orders := []*model.Order{
		order("o1", "B1", 10),
		order("o2", "B1", 25),
		order("o3", "B2", 5),
	}

	tests := []struct {
		book string
		want float64
	}{
		{book: "B1", want: 25},
		{book: "B2", want: 5},
		{book: "B3", want: 0},
	}
	for _, tt := range tests {
		if got := HighestOffer(tt.book, orders); got != tt.want {
			t.Errorf("HighestOffer(%q) = %v, want %v", tt.book, got, tt.want)
		}
	}
}

func TestHighestOffer_ignoresNilAndEmpty(t *testing.T) {
	t.Parallel()

	if got := HighestOffer("B1", nil); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
	if got := HighestOffer("B1", []*model.Order{nil, order("o1", "B1", 3)}); got != 3 {
		t.Errorf("got %v, want 3", got)
	}
}

func TestHighestOffers_matchesHighestOffer(t *testing.T) {
	t.Parallel()

	orders := []*model.Order{
		order("o1", "B1", 10),
		order("o2", "B2", 7),
		order("o3", "B1", 12.5),
		order("o4", "B2", 1),
	}
	all := highestOffers(orders)
	for _, b := range []string{"B1", "B2", "B3"} {
		if all[b] != HighestOffer(b, orders) {
			t.Errorf("book %s: map %v, func %v", b, all[b], HighestOffer(b, orders))
		}
	}
}

func TestOffersForBook(t *testing.T) {
	t.Parallel()

	orders := []*model.Order{order("o1", "B1", 1), order("o2", "B2", 2), order("o3", "B1", 3)}
	got := OffersForBook("B1", orders)
	if len(got) != 2 || got[0].ID != "o1" || got[1].ID != "o3" {
		t.Errorf("unexpected offers: %+v", got)
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	valid := map[string]float64{"19.99": 19.99, " 5 ": 5, "1e2": 100}
	for raw, want := range valid {
		got, err := parseAmount(raw)
		if err != nil {
			t.Errorf("parseAmount(%q) unexpected error: %v", raw, err)
			continue
		}
		if got != want {
			t.Errorf("parseAmount(%q) = %v, want %v", raw, got, want)
		}
	}

	for _, raw := range []string{"", "abc", "-5", "0", "NaN", "Inf"} {
		if _, err := parseAmount(raw); !errors.Is(err, ErrInvalidPrice) {
			t.Errorf("parseAmount(%q) error = %v, want ErrInvalidPrice", raw, err)
		}
	}
}
