package catalog

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/semaphore"

	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo"
)

// Service aggregates catalog data from the cargo gateway.
type Service interface {
	// FetchResaleCatalog lists every contract of the crate's vendors and
	// their resale items.
	FetchResaleCatalog(ctx context.Context, crateID string) (*ResaleCatalog, error)
	// FetchOwnedCatalog lists every token owner holds, with metadata.
	FetchOwnedCatalog(ctx context.Context, owner common.Address) ([]cargo.OwnedToken, error)
	// Load runs both fetches concurrently.
	Load(ctx context.Context, crateID string, owner common.Address) (*Snapshot, error)
}

type service struct {
	gateway cargo.Gateway
	opts    Options
}

func NewService(gateway cargo.Gateway, opts Options) Service {
	return &service{gateway: gateway, opts: opts.withDefaults()}
}

// fetch is one top-level aggregation. Every gateway call it makes, at any
// fan-out depth, holds a slot of calls.
type fetch struct {
	gateway cargo.Gateway
	opts    Options
	calls   *semaphore.Weighted
}

func (s *service) newFetch() *fetch {
	return &fetch{gateway: s.gateway, opts: s.opts, calls: semaphore.NewWeighted(int64(s.opts.Concurrency))}
}

func (s *service) FetchResaleCatalog(ctx context.Context, crateID string) (*ResaleCatalog, error) {
	return s.newFetch().resale(ctx, crateID)
}

func (s *service) FetchOwnedCatalog(ctx context.Context, owner common.Address) ([]cargo.OwnedToken, error) {
	return s.newFetch().owned(ctx, owner)
}

func (f *fetch) resale(ctx context.Context, crateID string) (*ResaleCatalog, error) {
	vendors, err := limited(ctx, f.calls, func(ctx context.Context) (*cargo.VendorsResult, error) {
		return f.gateway.CrateVendors(ctx, crateID)
	})
	if err != nil {
		return nil, fmt.Errorf("get vendors of crate %s: %w", crateID, err)
	}

	batches, err := fanOut(ctx, f.opts, vendors.Data, func(ctx context.Context, v cargo.Vendor) ([]cargo.TokenContract, error) {
		res, err := limited(ctx, f.calls, func(ctx context.Context) (*cargo.TokenContractsResult, error) {
			return f.gateway.VendorTokenContracts(ctx, v.VendorID)
		})
		if err != nil {
			return nil, fmt.Errorf("get token contracts of vendor %s: %w", v.VendorID, err)
		}
		return res.Data, nil
	})
	if err != nil {
		return nil, err
	}
	contracts := lo.Flatten(batches)

	ids := lo.Map(contracts, func(c cargo.TokenContract, _ int) string { return c.TokenContractID })
	fetched := cargo.ResaleItems{}
	if len(ids) > 0 {
		res, err := limited(ctx, f.calls, func(ctx context.Context) (*cargo.ResaleItemsResult, error) {
			return f.gateway.ContractResaleItems(ctx, ids)
		})
		if err != nil {
			return nil, fmt.Errorf("get resale items: %w", err)
		}
		fetched = res.Data
	}

	// Only keep keys for aggregated contracts, and give every contract a
	// non-nil list so rendering never looks up a missing key.
	items := make(cargo.ResaleItems, len(ids))
	for _, id := range ids {
		list := fetched[id]
		if list == nil {
			list = []cargo.ResaleItem{}
		}
		items[id] = list
	}
	if stray := len(lo.OmitByKeys(fetched, ids)); stray > 0 {
		log.Ctx(ctx).Debug().Int("stray", stray).Str("crate", crateID).Msg("dropping resale items of unknown contracts")
	}

	log.Ctx(ctx).Debug().
		Str("crate", crateID).
		Int("vendors", len(vendors.Data)).
		Int("contracts", len(contracts)).
		Msg("resale catalog fetched")
	return &ResaleCatalog{Contracts: contracts, Items: items}, nil
}

func (f *fetch) owned(ctx context.Context, owner common.Address) ([]cargo.OwnedToken, error) {
	ids, err := limited(ctx, f.calls, func(ctx context.Context) ([]string, error) {
		return f.gateway.OwnedTokenContractIDs(ctx, owner)
	})
	if err != nil {
		return nil, fmt.Errorf("get owned token contracts of %s: %w", owner.Hex(), err)
	}

	nested, err := fanOut(ctx, f.opts, ids, func(ctx context.Context, contractID string) ([]cargo.OwnedToken, error) {
		return f.ownedInContract(ctx, owner, contractID)
	})
	if err != nil {
		return nil, err
	}

	tokens := lo.Flatten(nested)
	log.Ctx(ctx).Debug().
		Str("owner", owner.Hex()).
		Int("contracts", len(ids)).
		Int("tokens", len(tokens)).
		Msg("owned catalog fetched")
	return tokens, nil
}

// ownedInContract fetches the owner's token ids and the contract address side
// by side, then the metadata of each token.
func (f *fetch) ownedInContract(ctx context.Context, owner common.Address, contractID string) ([]cargo.OwnedToken, error) {
	var (
		tokenIDs []string
		contract cargo.TokenContract
	)
	g, gctx := newGroup(ctx, f.opts)
	g.Go(func() error {
		ids, err := limited(gctx, f.calls, func(ctx context.Context) ([]string, error) {
			return f.gateway.OwnedTokenIDs(ctx, owner, contractID)
		})
		if err != nil {
			return fmt.Errorf("get owned token ids in contract %s: %w", contractID, err)
		}
		tokenIDs = ids
		return nil
	})
	g.Go(func() error {
		res, err := limited(gctx, f.calls, func(ctx context.Context) (*cargo.TokenContractResult, error) {
			return f.gateway.TokenContract(ctx, contractID)
		})
		if err != nil {
			return fmt.Errorf("get token contract %s: %w", contractID, err)
		}
		contract = res.Data
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return fanOut(ctx, f.opts, tokenIDs, func(ctx context.Context, tokenID string) (cargo.OwnedToken, error) {
		md, err := limited(ctx, f.calls, func(ctx context.Context) (*cargo.MetadataResult, error) {
			return f.gateway.TokenMetadata(ctx, contract.TokenAddress, tokenID)
		})
		if err != nil {
			return cargo.OwnedToken{}, fmt.Errorf("get metadata of token %s in contract %s: %w", tokenID, contractID, err)
		}
		return cargo.OwnedToken{
			TokenID:              tokenID,
			TokenContractAddress: contract.TokenAddress,
			Name:                 md.Data.Name,
			Image:                md.Data.Image,
		}, nil
	})
}

func (s *service) Load(ctx context.Context, crateID string, owner common.Address) (*Snapshot, error) {
	f := s.newFetch()
	snap := &Snapshot{}
	g, gctx := newGroup(ctx, s.opts)
	g.Go(func() error {
		resale, err := f.resale(gctx, crateID)
		if err != nil {
			return err
		}
		snap.Resale = resale
		return nil
	})
	g.Go(func() error {
		owned, err := f.owned(gctx, owner)
		if err != nil {
			return err
		}
		snap.Owned = owned
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
