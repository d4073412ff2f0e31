package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"jo3qma.com/book_market/internal/domain/model"
)

// OffersForBook は指定された本に対するオファーのみを返します
func OffersForBook(bookID string, orders []*model.Order) []*model.Order {
	var out []*model.Order
	for _, o := range orders {
		if o != nil && o.Data.Book == bookID {
			out = append(out, o)
		}
	}
	return out
}

// HighestOffer は指定された本に対する最高提示額を返します
// オファーがない場合は0です。キャッシュせず、呼ばれるたびに計算します
func HighestOffer(bookID string, orders []*model.Order) float64 {
	var highest float64
	found := false
	for _, o := range orders {
		if o == nil || o.Data.Book != bookID {
			continue
		}
		if !found || o.Data.Price > highest {
			highest = o.Data.Price
			found = true
		}
	}
	return highest
}

// highestOffers は全ての本の最高提示額を一度に計算します
func highestOffers(orders []*model.Order) map[string]float64 {
	out := make(map[string]float64)
	for _, o := range orders {
		if o == nil {
			continue
		}
		if cur, ok := out[o.Data.Book]; !ok || o.Data.Price > cur {
			out[o.Data.Book] = o.Data.Price
		}
	}
	return out
}

// parseAmount は入力欄の文字列を正の金額に変換します
func parseAmount(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return v, nil
}
