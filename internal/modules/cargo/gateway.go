package cargo

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Gateway is the cargo SDK surface the storefront consumes. All blockchain
// state comes through it.
type Gateway interface {
	// Init fetches the cargo contract information for the given network.
	Init(ctx context.Context, cfg InitConfig) error
	// Enable reports whether a provider is available to talk to cargo contracts.
	Enable(ctx context.Context) (bool, error)

	CrateVendors(ctx context.Context, crateID string) (*VendorsResult, error)
	VendorTokenContracts(ctx context.Context, vendorID string) (*TokenContractsResult, error)
	// ContractResaleItems takes cargo token contract ids, not addresses.
	ContractResaleItems(ctx context.Context, contractIDs []string) (*ResaleItemsResult, error)

	OwnedTokenContractIDs(ctx context.Context, owner common.Address) ([]string, error)
	OwnedTokenIDs(ctx context.Context, owner common.Address, contractID string) ([]string, error)
	TokenContract(ctx context.Context, contractID string) (*TokenContractResult, error)
	TokenMetadata(ctx context.Context, tokenAddress common.Address, tokenID string) (*MetadataResult, error)

	// PurchaseResaleToken submits a purchase and returns the transaction hash.
	PurchaseResaleToken(ctx context.Context, resaleItemID string, price Wei) (string, error)
}
