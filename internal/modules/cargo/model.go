package cargo

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Vendor is an account permitted to register token contracts under a crate.
type Vendor struct {
	VendorID string `json:"vendorId"`
}

// TokenContract is a token contract deployed by a vendor. TokenContractID is
// cargo's internal catalog id; some calls take it, others the on-chain address.
type TokenContract struct {
	TokenContractID string         `json:"tokenContractId"`
	TokenAddress    common.Address `json:"tokenAddress"`
	Name            string         `json:"name"`
	Symbol          string         `json:"symbol"`
}

// Metadata is the display metadata attached to a token.
type Metadata struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description,omitempty"`
}

// Wei is an integer amount in base units. It is kept as a decimal string so
// 256-bit prices survive the round trip.
type Wei string

func (w *Wei) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*w = Wei(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("wei: %w", err)
	}
	// Serialisers may write large amounts as 1e+21; keep the plain integer.
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return fmt.Errorf("wei: %w", err)
	}
	*w = Wei(d.String())
	return nil
}

// ResaleItem is a secondary-market listing of a previously minted token.
type ResaleItem struct {
	ResaleItemID    string   `json:"resaleItemId"`
	Price           Wei      `json:"price"`
	Metadata        Metadata `json:"metadata"`
	TokenContractID string   `json:"tokenContractId"`
}

// ResaleItems maps a token contract id to its listings, in gateway order.
type ResaleItems map[string][]ResaleItem

// OwnedToken is a token held by a wallet, enriched with its metadata.
type OwnedToken struct {
	TokenID              string         `json:"tokenId"`
	TokenContractAddress common.Address `json:"tokenContractAddress"`
	Name                 string         `json:"name"`
	Image                string         `json:"image"`
}

// InitConfig selects the network the gateway talks to.
type InitConfig struct {
	Network string `json:"network"`
}

// ── Gateway results ───────────────────────────────────────────────────────────
// The SDK wraps most reads in a {data: ...} envelope; these mirror it.

type VendorsResult struct {
	Data []Vendor `json:"data"`
}

type TokenContractsResult struct {
	Data []TokenContract `json:"data"`
}

type ResaleItemsResult struct {
	Data ResaleItems `json:"data"`
}

type TokenContractResult struct {
	Data TokenContract `json:"data"`
}

type MetadataResult struct {
	Data Metadata `json:"data"`
}
