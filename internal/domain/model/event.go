package model

import "time"

// EventKind は交渉イベントの種類です
type EventKind string

const (
	EventOfferCreated   EventKind = "offer.created"
	EventOfferUpdated   EventKind = "offer.updated"
	EventOfferCountered EventKind = "offer.countered"
	EventStatusChanged  EventKind = "offer.status_changed"
	EventListingCreated EventKind = "listing.created"
)

// NegotiationEvent はオファーや出品が変更されたことを購読者に伝えるメッセージです
type NegotiationEvent struct {
	Kind    EventKind `json:"kind"`
	OrderID string    `json:"order_id,omitempty"`
	BookID  string    `json:"book_id"`
	Price   float64   `json:"price,omitempty"`
	Counter *float64  `json:"counter,omitempty"`
	Status  Status    `json:"status,omitempty"`
	At      time.Time `json:"at"`
}
