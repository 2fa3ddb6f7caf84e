package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo"
	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo/stub"
)

const crateID = "98"

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	errBoom  = errors.New("boom")
	addrOf   = func(n int) common.Address { return common.BigToAddress(big.NewInt(int64(n))) }
	contract = func(id string, n int) cargo.TokenContract {
		return cargo.TokenContract{TokenContractID: id, TokenAddress: addrOf(n), Name: "C" + id, Symbol: "S" + id}
	}
)

// threeVendors registers vendors whose contract counts are 2, 0 and 3.
func threeVendors() *stub.Gateway {
	gw := stub.NewGateway()
	gw.AddContract(crateID, "v1", contract("a", 1))
	gw.AddContract(crateID, "v1", contract("b", 2))
	gw.Vendors[crateID] = append(gw.Vendors[crateID], cargo.Vendor{VendorID: "v2"})
	gw.AddContract(crateID, "v3", contract("c", 3))
	gw.AddContract(crateID, "v3", contract("d", 4))
	gw.AddContract(crateID, "v3", contract("e", 5))
	return gw
}

func contractIDs(cs []cargo.TokenContract) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.TokenContractID
	}
	return ids
}

func TestFetchResaleCatalog_FlattensInVendorOrder(t *testing.T) {
	gw := threeVendors()
	// The first vendor answers last; order must still follow the vendor list.
	gw.Fail = func(method string, args ...string) error {
		if method == "getVendorTokenContracts" && args[0] == "v1" {
			time.Sleep(30 * time.Millisecond)
		}
		return nil
	}

	c, err := NewService(gw, Options{}).FetchResaleCatalog(context.Background(), crateID)
	require.NoError(t, err)
	assert.Len(t, c.Contracts, 2+0+3)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, contractIDs(c.Contracts))
	assert.Equal(t, 1, gw.Calls("getContractResaleItems"))
}

func TestFetchResaleCatalog_EveryContractHasItems(t *testing.T) {
	gw := threeVendors()
	gw.AddResaleItem(cargo.ResaleItem{ResaleItemID: "42", Price: "500", TokenContractID: "b"})
	gw.AddResaleItem(cargo.ResaleItem{ResaleItemID: "43", Price: "700", TokenContractID: "b"})
	gw.AddResaleItem(cargo.ResaleItem{ResaleItemID: "99", Price: "1", TokenContractID: "unknown"})

	c, err := NewService(gw, Options{}).FetchResaleCatalog(context.Background(), crateID)
	require.NoError(t, err)

	for _, tc := range c.Contracts {
		items, ok := c.Items[tc.TokenContractID]
		assert.True(t, ok, "missing items for %s", tc.TokenContractID)
		assert.NotNil(t, items, "nil items for %s", tc.TokenContractID)
	}
	assert.Len(t, c.Items, 5)
	require.Len(t, c.Items["b"], 2)
	assert.Equal(t, "42", c.Items["b"][0].ResaleItemID)
	assert.Equal(t, "43", c.Items["b"][1].ResaleItemID)
	assert.NotContains(t, c.Items, "unknown")
}

func TestFetchResaleCatalog_EmptyCrate(t *testing.T) {
	gw := stub.NewGateway()

	c, err := NewService(gw, Options{}).FetchResaleCatalog(context.Background(), crateID)
	require.NoError(t, err)
	assert.Empty(t, c.Contracts)
	assert.Empty(t, c.Items)
	assert.Equal(t, 0, gw.Calls("getContractResaleItems"))
}

func TestFetchResaleCatalog_FailsWhole(t *testing.T) {
	tests := []struct {
		name   string
		method string
	}{
		{"vendors", "getCrateVendors"},
		{"contracts", "getVendorTokenContracts"},
		{"resale items", "getContractResaleItems"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := threeVendors()
			gw.Fail = func(method string, args ...string) error {
				if method == tt.method {
					return errBoom
				}
				return nil
			}

			c, err := NewService(gw, Options{}).FetchResaleCatalog(context.Background(), crateID)
			assert.ErrorIs(t, err, errBoom)
			assert.Nil(t, c)
		})
	}
}

func TestFetchResaleCatalog_JoinPolicies(t *testing.T) {
	failing := func(method string, args ...string) error {
		if method == "getVendorTokenContracts" && args[0] != "v2" {
			return fmt.Errorf("vendor %s: %w", args[0], errBoom)
		}
		return nil
	}

	t.Run("abort", func(t *testing.T) {
		gw := threeVendors()
		gw.Fail = failing
		_, err := NewService(gw, Options{Policy: JoinAbort}).FetchResaleCatalog(context.Background(), crateID)
		require.ErrorIs(t, err, errBoom)
		var merr *multierror.Error
		assert.False(t, errors.As(err, &merr))
	})

	t.Run("collect", func(t *testing.T) {
		gw := threeVendors()
		gw.Fail = failing
		_, err := NewService(gw, Options{Policy: JoinCollect}).FetchResaleCatalog(context.Background(), crateID)
		require.ErrorIs(t, err, errBoom)
		var merr *multierror.Error
		require.True(t, errors.As(err, &merr))
		assert.Len(t, merr.Errors, 2)
		assert.Equal(t, 3, gw.Calls("getVendorTokenContracts"))
	})
}

// ownedFixture gives owner 2 tokens in contract "a" and 3 in contract "c".
func ownedFixture() *stub.Gateway {
	gw := threeVendors()
	a, c := contract("a", 1), contract("c", 3)
	for _, id := range []string{"1", "2"} {
		gw.AddOwnedToken(owner, a, id, cargo.Metadata{Name: "a-" + id, Image: "a" + id + ".png"})
	}
	for _, id := range []string{"7", "8", "9"} {
		gw.AddOwnedToken(owner, c, id, cargo.Metadata{Name: "c-" + id, Image: "c" + id + ".png"})
	}
	return gw
}

func TestFetchOwnedCatalog_FlattensContractMajor(t *testing.T) {
	gw := ownedFixture()
	gw.Fail = func(method string, args ...string) error {
		// Slow down the first contract and its first token.
		if method == "getOwnedTokenIdsByCargoTokenContractId" && args[0] == "a" {
			time.Sleep(20 * time.Millisecond)
		}
		if method == "getTokenMetadata" && args[1] == "1" {
			time.Sleep(20 * time.Millisecond)
		}
		return nil
	}

	tokens, err := NewService(gw, Options{}).FetchOwnedCatalog(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, tokens, 5)

	got := make([]string, len(tokens))
	for i, tok := range tokens {
		got[i] = tok.Name
	}
	assert.Equal(t, []string{"a-1", "a-2", "c-7", "c-8", "c-9"}, got)

	assert.Equal(t, "1", tokens[0].TokenID)
	assert.Equal(t, addrOf(1), tokens[0].TokenContractAddress)
	assert.Equal(t, "a1.png", tokens[0].Image)
	assert.Equal(t, addrOf(3), tokens[4].TokenContractAddress)
}

func TestFetchOwnedCatalog_NoTokens(t *testing.T) {
	tokens, err := NewService(stub.NewGateway(), Options{}).FetchOwnedCatalog(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestFetchOwnedCatalog_AnyFailureAborts(t *testing.T) {
	for _, method := range []string{
		"getOwnedCargoTokenContractIds",
		"getOwnedTokenIdsByCargoTokenContractId",
		"getTokenContractById",
		"getTokenMetadata",
	} {
		t.Run(method, func(t *testing.T) {
			gw := ownedFixture()
			gw.Fail = func(m string, args ...string) error {
				if m == method {
					return errBoom
				}
				return nil
			}
			tokens, err := NewService(gw, Options{}).FetchOwnedCatalog(context.Background(), owner)
			assert.ErrorIs(t, err, errBoom)
			assert.Nil(t, tokens)
		})
	}
}

func TestFetchOwnedCatalog_MissingMetadataFails(t *testing.T) {
	gw := ownedFixture()
	delete(gw.Metadata, stub.MetadataKey(addrOf(3), "8"))

	_, err := NewService(gw, Options{}).FetchOwnedCatalog(context.Background(), owner)
	assert.ErrorIs(t, err, stub.ErrNotFound)
}

func TestLoad(t *testing.T) {
	gw := ownedFixture()
	gw.AddResaleItem(cargo.ResaleItem{ResaleItemID: "42", Price: "500", TokenContractID: "a"})

	snap, err := NewService(gw, Options{Concurrency: 1}).Load(context.Background(), crateID, owner)
	require.NoError(t, err)
	assert.Len(t, snap.Resale.Contracts, 5)
	assert.Len(t, snap.Resale.Items["a"], 1)
	assert.Len(t, snap.Owned, 5)
}

func TestLoad_EitherFailureFails(t *testing.T) {
	gw := ownedFixture()
	gw.Fail = func(method string, args ...string) error {
		if method == "getOwnedCargoTokenContractIds" {
			return errBoom
		}
		return nil
	}

	snap, err := NewService(gw, Options{}).Load(context.Background(), crateID, owner)
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, snap)
}

func TestConcurrencyCapsGatewayCallsAcrossLevels(t *testing.T) {
	var inFlight, peak int32
	track := func(string, ...string) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	}

	t.Run("owned", func(t *testing.T) {
		atomic.StoreInt32(&peak, 0)
		gw := ownedFixture()
		gw.Fail = track
		tokens, err := NewService(gw, Options{Concurrency: 2}).FetchOwnedCatalog(context.Background(), owner)
		require.NoError(t, err)
		assert.Len(t, tokens, 5)
		assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	})

	t.Run("load", func(t *testing.T) {
		atomic.StoreInt32(&peak, 0)
		gw := ownedFixture()
		gw.Fail = track
		_, err := NewService(gw, Options{Concurrency: 2}).Load(context.Background(), crateID, owner)
		require.NoError(t, err)
		assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	})
}
