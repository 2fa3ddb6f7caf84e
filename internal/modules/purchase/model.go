package purchase

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo"
)

// AlertMessage is all a visitor is told when a purchase does not go through.
const AlertMessage = "Something went wrong, or user denied transaction"

var (
	// ErrPurchaseFailed wraps any gateway failure while submitting a purchase.
	ErrPurchaseFailed = errors.New("purchase failed")
	// ErrInvalidRequest is returned for a click missing its item id or price.
	ErrInvalidRequest = errors.New("invalid purchase request")
)

// Request is what a buy button carries: the resale item id and its raw
// base-unit price.
type Request struct {
	ResaleItemID string    `json:"resaleid"`
	Price        cargo.Wei `json:"price"`
}

// Confirmation is one line of a visitor's transaction log.
type Confirmation struct {
	ID           uuid.UUID `json:"id"`
	ResaleItemID string    `json:"resale_item_id"`
	Price        cargo.Wei `json:"price"`
	TxHash       string    `json:"tx_hash"`
	Link         string    `json:"link"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
