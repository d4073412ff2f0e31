package model

// ListingCard はトップページの一覧に表示する書籍カードです
// Book とオファー集計結果を合成した表示用データです
type ListingCard struct {
	ID            string
	Title         string
	Author        string
	ISBN          string
	Cover         string
	Publisher     string
	OriginalPrice *float64
	Description   string
	HighestOffer  float64 // 最高提示額。オファーがない場合は0
}

// ProductView は書籍詳細ページの表示内容です
type ProductView struct {
	Book         *Book
	Offers       []*Order // この本に対するオファーのみ
	HighestOffer float64
}

// OfferPlacement はオファー作成結果と、作成後に再取得したこの本のオファー一覧です
type OfferPlacement struct {
	Order        *Order
	Offers       []*Order
	HighestOffer float64
}

// IncomingOrder は出品者ダッシュボードに表示する受信オファーの1行です
type IncomingOrder struct {
	Order         *Order
	BookTitle     string
	StatusOptions []Status // 現在の状態が先頭
}
