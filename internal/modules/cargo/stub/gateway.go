package stub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo"
)

// ErrNotFound is returned when a contract or token is not in the stub store.
var ErrNotFound = errors.New("not found")

// Purchase records one PurchaseResaleToken call that succeeded.
type Purchase struct {
	ResaleItemID string
	Price        cargo.Wei
	TxHash       string
}

var _ cargo.Gateway = (*Gateway)(nil)

// Gateway implements cargo.Gateway from in-memory maps.
type Gateway struct {
	Enabled   bool
	Vendors   map[string][]cargo.Vendor        // crate id → vendors
	Contracts map[string][]cargo.TokenContract // vendor id → contracts
	Resale    cargo.ResaleItems

	OwnedContracts map[common.Address][]string
	OwnedTokens    map[common.Address]map[string][]string // owner → contract id → token ids
	Metadata       map[string]cargo.Metadata              // see MetadataKey

	// Fail, when set, is consulted before every call; a non-nil result is
	// returned as the call's error.
	Fail func(method string, args ...string) error
	// PurchaseFunc overrides the transaction hash produced by purchases.
	PurchaseFunc func(resaleItemID string, price cargo.Wei) (string, error)

	mu        sync.Mutex
	network   string
	purchases []Purchase
	calls     map[string]int
}

// NewGateway creates an empty, enabled stub gateway.
func NewGateway() *Gateway {
	return &Gateway{
		Enabled:        true,
		Vendors:        make(map[string][]cargo.Vendor),
		Contracts:      make(map[string][]cargo.TokenContract),
		Resale:         make(cargo.ResaleItems),
		OwnedContracts: make(map[common.Address][]string),
		OwnedTokens:    make(map[common.Address]map[string][]string),
		Metadata:       make(map[string]cargo.Metadata),
	}
}

// MetadataKey is the Metadata map key for a token.
func MetadataKey(tokenAddress common.Address, tokenID string) string {
	return strings.ToLower(tokenAddress.Hex()) + "/" + tokenID
}

// AddContract registers a contract under a vendor, creating the vendor in
// the crate on first use.
func (g *Gateway) AddContract(crateID, vendorID string, c cargo.TokenContract) {
	known := false
	for _, v := range g.Vendors[crateID] {
		if v.VendorID == vendorID {
			known = true
			break
		}
	}
	if !known {
		g.Vendors[crateID] = append(g.Vendors[crateID], cargo.Vendor{VendorID: vendorID})
	}
	g.Contracts[vendorID] = append(g.Contracts[vendorID], c)
}

// AddResaleItem lists an item for resale under its contract.
func (g *Gateway) AddResaleItem(item cargo.ResaleItem) {
	g.Resale[item.TokenContractID] = append(g.Resale[item.TokenContractID], item)
}

// AddOwnedToken records that owner holds tokenID of the given contract.
func (g *Gateway) AddOwnedToken(owner common.Address, c cargo.TokenContract, tokenID string, md cargo.Metadata) {
	byContract, ok := g.OwnedTokens[owner]
	if !ok {
		byContract = make(map[string][]string)
		g.OwnedTokens[owner] = byContract
	}
	if _, seen := byContract[c.TokenContractID]; !seen {
		g.OwnedContracts[owner] = append(g.OwnedContracts[owner], c.TokenContractID)
	}
	byContract[c.TokenContractID] = append(byContract[c.TokenContractID], tokenID)
	g.Metadata[MetadataKey(c.TokenAddress, tokenID)] = md
}

// Network returns the network passed to Init.
func (g *Gateway) Network() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.network
}

// Purchases returns the purchases submitted so far.
func (g *Gateway) Purchases() []Purchase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Purchase(nil), g.purchases...)
}

// Calls returns how many times method was invoked.
func (g *Gateway) Calls(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[method]
}

func (g *Gateway) enter(method string, args ...string) error {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]int)
	}
	g.calls[method]++
	g.mu.Unlock()
	if g.Fail != nil {
		return g.Fail(method, args...)
	}
	return nil
}

func (g *Gateway) Init(_ context.Context, cfg cargo.InitConfig) error {
	if err := g.enter("init", cfg.Network); err != nil {
		return err
	}
	g.mu.Lock()
	g.network = cfg.Network
	g.mu.Unlock()
	return nil
}

func (g *Gateway) Enable(_ context.Context) (bool, error) {
	if err := g.enter("enable"); err != nil {
		return false, err
	}
	return g.Enabled, nil
}

func (g *Gateway) CrateVendors(_ context.Context, crateID string) (*cargo.VendorsResult, error) {
	if err := g.enter("getCrateVendors", crateID); err != nil {
		return nil, err
	}
	return &cargo.VendorsResult{Data: g.Vendors[crateID]}, nil
}

func (g *Gateway) VendorTokenContracts(_ context.Context, vendorID string) (*cargo.TokenContractsResult, error) {
	if err := g.enter("getVendorTokenContracts", vendorID); err != nil {
		return nil, err
	}
	return &cargo.TokenContractsResult{Data: g.Contracts[vendorID]}, nil
}

// ContractResaleItems only returns keys that have listings, like the SDK can.
func (g *Gateway) ContractResaleItems(_ context.Context, contractIDs []string) (*cargo.ResaleItemsResult, error) {
	if err := g.enter("getContractResaleItems", contractIDs...); err != nil {
		return nil, err
	}
	out := make(cargo.ResaleItems)
	for _, id := range contractIDs {
		if items, ok := g.Resale[id]; ok {
			out[id] = items
		}
	}
	return &cargo.ResaleItemsResult{Data: out}, nil
}

func (g *Gateway) OwnedTokenContractIDs(_ context.Context, owner common.Address) ([]string, error) {
	if err := g.enter("getOwnedCargoTokenContractIds", owner.Hex()); err != nil {
		return nil, err
	}
	return g.OwnedContracts[owner], nil
}

func (g *Gateway) OwnedTokenIDs(_ context.Context, owner common.Address, contractID string) ([]string, error) {
	if err := g.enter("getOwnedTokenIdsByCargoTokenContractId", contractID, owner.Hex()); err != nil {
		return nil, err
	}
	return g.OwnedTokens[owner][contractID], nil
}

func (g *Gateway) TokenContract(_ context.Context, contractID string) (*cargo.TokenContractResult, error) {
	if err := g.enter("getTokenContractById", contractID); err != nil {
		return nil, err
	}
	for _, contracts := range g.Contracts {
		for _, c := range contracts {
			if c.TokenContractID == contractID {
				return &cargo.TokenContractResult{Data: c}, nil
			}
		}
	}
	return nil, fmt.Errorf("token contract %s: %w", contractID, ErrNotFound)
}

func (g *Gateway) TokenMetadata(_ context.Context, tokenAddress common.Address, tokenID string) (*cargo.MetadataResult, error) {
	if err := g.enter("getTokenMetadata", tokenAddress.Hex(), tokenID); err != nil {
		return nil, err
	}
	md, ok := g.Metadata[MetadataKey(tokenAddress, tokenID)]
	if !ok {
		return nil, fmt.Errorf("metadata %s/%s: %w", tokenAddress.Hex(), tokenID, ErrNotFound)
	}
	return &cargo.MetadataResult{Data: md}, nil
}

func (g *Gateway) PurchaseResaleToken(_ context.Context, resaleItemID string, price cargo.Wei) (string, error) {
	if err := g.enter("purchaseResaleToken", resaleItemID, string(price)); err != nil {
		return "", err
	}

	var txHash string
	if g.PurchaseFunc != nil {
		h, err := g.PurchaseFunc(resaleItemID, price)
		if err != nil {
			return "", err
		}
		txHash = h
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if txHash == "" {
		txHash = fmt.Sprintf("0x%064x", len(g.purchases)+1)
	}
	g.purchases = append(g.purchases, Purchase{ResaleItemID: resaleItemID, Price: price, TxHash: txHash})
	return txHash, nil
}
