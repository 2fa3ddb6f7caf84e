package catalog

import (
	"fmt"
	"strings"

	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo"
)

// ResaleCatalog is every token contract of a crate's vendors with its resale
// listings. Items has an entry, possibly empty, for every contract id.
type ResaleCatalog struct {
	Contracts []cargo.TokenContract `json:"contracts"`
	Items     cargo.ResaleItems     `json:"resale_items"`
}

// Snapshot is what a storefront page shows: the resale catalog and the
// tokens held by the connected wallet.
type Snapshot struct {
	Resale *ResaleCatalog      `json:"resale"`
	Owned  []cargo.OwnedToken `json:"owned"`
}

// JoinPolicy decides how a fan-out reacts to a failed branch. Either way the
// whole fetch fails; no partial result is returned.
type JoinPolicy string

const (
	// JoinAbort cancels the remaining branches and returns the first error.
	JoinAbort JoinPolicy = "abort"
	// JoinCollect lets every branch finish and returns all errors combined.
	JoinCollect JoinPolicy = "collect"
)

// ParseJoinPolicy maps a config value to a JoinPolicy; empty means abort.
func ParseJoinPolicy(s string) (JoinPolicy, error) {
	switch JoinPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", JoinAbort:
		return JoinAbort, nil
	case JoinCollect:
		return JoinCollect, nil
	}
	return "", fmt.Errorf("invalid join policy %q (want %q or %q)", s, JoinAbort, JoinCollect)
}

// DefaultConcurrency is used when Options leaves Concurrency unset.
const DefaultConcurrency = 8

// Options tunes the aggregator's fan-outs.
type Options struct {
	// Concurrency caps the gateway calls in flight for one FetchResaleCatalog,
	// FetchOwnedCatalog or Load call, summed over every fan-out level.
	Concurrency int
	Policy      JoinPolicy
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Policy == "" {
		o.Policy = JoinAbort
	}
	return o
}
