package purchase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo"
	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo/stub"
)

const explorer = "https://rinkeby.etherscan.io/tx/"

var errDenied = errors.New("User denied transaction signature")

func TestPurchase_Success(t *testing.T) {
	gw := stub.NewGateway()
	gw.PurchaseFunc = func(string, cargo.Wei) (string, error) { return "0xabc", nil }
	svc := NewService(gw, NewMemoryRepository(), explorer)

	c, err := svc.Purchase(context.Background(), "s1", Request{ResaleItemID: "42", Price: "500"})
	require.NoError(t, err)
	assert.Equal(t, "0xabc", c.TxHash)
	assert.Equal(t, "https://rinkeby.etherscan.io/tx/0xabc", c.Link)
	assert.Equal(t, "42", c.ResaleItemID)
	assert.Equal(t, cargo.Wei("500"), c.Price)

	entries, err := svc.Log(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Link, "0xabc")

	require.Len(t, gw.Purchases(), 1)
	assert.Equal(t, stub.Purchase{ResaleItemID: "42", Price: "500", TxHash: "0xabc"}, gw.Purchases()[0])
}

func TestPurchase_RejectedLeavesLogUntouched(t *testing.T) {
	gw := stub.NewGateway()
	gw.PurchaseFunc = func(string, cargo.Wei) (string, error) { return "", errDenied }
	svc := NewService(gw, NewMemoryRepository(), explorer)

	c, err := svc.Purchase(context.Background(), "s1", Request{ResaleItemID: "42", Price: "500"})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrPurchaseFailed)
	assert.ErrorIs(t, err, errDenied)

	entries, err := svc.Log(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPurchase_InvalidRequest(t *testing.T) {
	gw := stub.NewGateway()
	svc := NewService(gw, NewMemoryRepository(), explorer)

	for _, req := range []Request{
		{ResaleItemID: "", Price: "500"},
		{ResaleItemID: "42", Price: ""},
		{ResaleItemID: "42", Price: "1.5"},
		{ResaleItemID: "42", Price: "-1"},
		{ResaleItemID: "42", Price: "lots"},
	} {
		_, err := svc.Purchase(context.Background(), "s1", req)
		assert.ErrorIs(t, err, ErrInvalidRequest, "%+v", req)
	}
	assert.Equal(t, 0, gw.Calls("purchaseResaleToken"))
}

func TestPurchase_SendsPlainIntegerPrice(t *testing.T) {
	gw := stub.NewGateway()
	svc := NewService(gw, NewMemoryRepository(), explorer)

	c, err := svc.Purchase(context.Background(), "s1", Request{ResaleItemID: "42", Price: "1e+21"})
	require.NoError(t, err)
	assert.Equal(t, cargo.Wei("1000000000000000000000"), c.Price)
	require.Len(t, gw.Purchases(), 1)
	assert.Equal(t, cargo.Wei("1000000000000000000000"), gw.Purchases()[0].Price)
}

func TestPurchase_NoDoubleSubmitGuard(t *testing.T) {
	gw := stub.NewGateway()
	svc := NewService(gw, NewMemoryRepository(), explorer)
	req := Request{ResaleItemID: "42", Price: "500"}

	_, err := svc.Purchase(context.Background(), "s1", req)
	require.NoError(t, err)
	_, err = svc.Purchase(context.Background(), "s1", req)
	require.NoError(t, err)

	entries, err := svc.Log(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Len(t, gw.Purchases(), 2)
}

func TestLog_IsPerSession(t *testing.T) {
	gw := stub.NewGateway()
	svc := NewService(gw, NewMemoryRepository(), explorer)

	_, err := svc.Purchase(context.Background(), "s1", Request{ResaleItemID: "1", Price: "1"})
	require.NoError(t, err)
	_, err = svc.Purchase(context.Background(), "s1", Request{ResaleItemID: "2", Price: "2"})
	require.NoError(t, err)
	_, err = svc.Purchase(context.Background(), "s2", Request{ResaleItemID: "3", Price: "3"})
	require.NoError(t, err)

	s1, err := svc.Log(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, s1, 2)
	assert.Equal(t, "1", s1[0].ResaleItemID)
	assert.Equal(t, "2", s1[1].ResaleItemID)

	s2, err := svc.Log(context.Background(), "s2")
	require.NoError(t, err)
	assert.Len(t, s2, 1)
}
