package vanity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vanity-address-api/internal/application/transfer"
	"github.com/vanity-address-api/internal/domain"
)

type mockInventory struct{ mock.Mock }

func (m *mockInventory) Search(ctx context.Context, term string) ([]domain.VanityCandidate, error) {
	args := m.Called(ctx, term)
	if c, _ := args.Get(0).([]domain.VanityCandidate); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInventory) Purge(ctx context.Context, account string) error {
	return m.Called(ctx, account).Error(0)
}

type mockTransferrer struct{ mock.Mock }

func (m *mockTransferrer) Transfer(ctx context.Context, vanityAddress, vanitySecret, buyerRegularKey string) transfer.Result {
	return m.Called(ctx, vanityAddress, vanitySecret, buyerRegularKey).Get(0).(transfer.Result)
}

func (m *mockTransferrer) DisableMasterKey(ctx context.Context, vanityAddress, vanitySecret string) transfer.Result {
	return m.Called(ctx, vanityAddress, vanitySecret).Get(0).(transfer.Result)
}

type mockPurchases struct{ mock.Mock }

func (m *mockPurchases) AddPurchase(ctx context.Context, origin, applicationID, buyerAccount, vanityAddress string) error {
	return m.Called(ctx, origin, applicationID, buyerAccount, vanityAddress).Error(0)
}

func (m *mockPurchases) ByApplication(ctx context.Context, applicationID string) ([]domain.PurchaseRecord, error) {
	args := m.Called(ctx, applicationID)
	if r, _ := args.Get(0).([]domain.PurchaseRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPurchases) ByAccount(ctx context.Context, account string) ([]domain.PurchaseRecord, error) {
	args := m.Called(ctx, account)
	if r, _ := args.Get(0).([]domain.PurchaseRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRecorder struct{ mock.Mock }

func (m *mockRecorder) Record(ctx context.Context, origin, applicationID, txType string) {
	m.Called(ctx, origin, applicationID, txType)
}

func newDeps() (*mockInventory, *mockTransferrer, *mockPurchases, *mockRecorder, *Service) {
	inv := &mockInventory{}
	tr := &mockTransferrer{}
	pur := &mockPurchases{}
	rec := &mockRecorder{}
	svc := NewService(ServiceDeps{Inventory: inv, Transfer: tr, Purchases: pur, Stats: rec})
	return inv, tr, pur, rec, svc
}

func okRequest() HandoverRequest {
	return HandoverRequest{
		Origin:          "https://a.example",
		ApplicationID:   "app-1",
		BuyerAccount:    "rBuyer",
		BuyerRegularKey: "rBuyerKey",
		VanityAddress:   "rCOOL",
		VanitySecret:    "shh",
	}
}

func soldRecords(addresses ...string) []domain.PurchaseRecord {
	return []domain.PurchaseRecord{{Account: "rSomeone", VanityAddresses: addresses}}
}

func TestSearch_FiltersSoldAddresses(t *testing.T) {
	inv, _, pur, _, svc := newDeps()
	inv.On("Search", mock.Anything, "cool").Return([]domain.VanityCandidate{
		{Address: "rCOOL1", Term: "cool"},
		{Address: "rCOOL2", Term: "cool"},
	}, nil)
	pur.On("ByApplication", mock.Anything, "app-1").Return(soldRecords("rCOOL2"), nil)

	got, err := svc.Search(context.Background(), "app-1", "cool")

	require.NoError(t, err)
	assert.Equal(t, []domain.VanityCandidate{{Address: "rCOOL1", Term: "cool"}}, got)
}

func TestSearch_PurchaseStoreFailureDisablesFilterOnly(t *testing.T) {
	inv, _, pur, _, svc := newDeps()
	inv.On("Search", mock.Anything, "cool").Return([]domain.VanityCandidate{
		{Address: "rCOOL1"},
	}, nil)
	pur.On("ByApplication", mock.Anything, "app-1").Return(nil, errors.New("store down"))

	got, err := svc.Search(context.Background(), "app-1", "cool")

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearch_InventoryErrorPropagates(t *testing.T) {
	inv, _, _, _, svc := newDeps()
	inv.On("Search", mock.Anything, "cool").Return(nil, errors.New("status 500"))

	_, err := svc.Search(context.Background(), "app-1", "cool")

	assert.Error(t, err)
}

func TestHandover_FullSequence(t *testing.T) {
	inv, tr, pur, rec, svc := newDeps()
	req := okRequest()
	pur.On("ByApplication", mock.Anything, "app-1").Return([]domain.PurchaseRecord{}, nil)
	tr.On("Transfer", mock.Anything, req.VanityAddress, req.VanitySecret, req.BuyerRegularKey).
		Return(transfer.Result{Success: true, TxID: "H1", Account: req.BuyerRegularKey})
	tr.On("DisableMasterKey", mock.Anything, req.VanityAddress, req.VanitySecret).
		Return(transfer.Result{Success: true, TxID: "H2"})
	inv.On("Purge", mock.Anything, req.VanityAddress).Return(nil)
	pur.On("AddPurchase", mock.Anything, req.Origin, req.ApplicationID, req.BuyerAccount, req.VanityAddress).Return(nil)
	rec.On("Record", mock.Anything, req.Origin, req.ApplicationID, "vanity").Return()

	res := svc.Handover(context.Background(), req)

	assert.True(t, res.Success)
	assert.Equal(t, "H1", res.TxID)
	inv.AssertExpectations(t)
	tr.AssertExpectations(t)
	pur.AssertExpectations(t)
	rec.AssertExpectations(t)
}

func TestHandover_AlreadySoldIsRefused(t *testing.T) {
	_, tr, pur, _, svc := newDeps()
	req := okRequest()
	pur.On("ByApplication", mock.Anything, "app-1").Return(soldRecords(req.VanityAddress), nil)

	res := svc.Handover(context.Background(), req)

	assert.False(t, res.Success)
	assert.Equal(t, "alreadyPurchased", res.Code)
	tr.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandover_RekeyFailureStopsBeforeDisable(t *testing.T) {
	inv, tr, pur, _, svc := newDeps()
	req := okRequest()
	pur.On("ByApplication", mock.Anything, "app-1").Return([]domain.PurchaseRecord{}, nil)
	tr.On("Transfer", mock.Anything, req.VanityAddress, req.VanitySecret, req.BuyerRegularKey).
		Return(transfer.Result{Success: false, Code: "tecNO_PERMISSION"})

	res := svc.Handover(context.Background(), req)

	assert.False(t, res.Success)
	assert.Equal(t, "tecNO_PERMISSION", res.Code)
	tr.AssertNotCalled(t, "DisableMasterKey", mock.Anything, mock.Anything, mock.Anything)
	inv.AssertNotCalled(t, "Purge", mock.Anything, mock.Anything)
	pur.AssertNotCalled(t, "AddPurchase", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandover_DisableFailureStopsBeforeBookkeeping(t *testing.T) {
	inv, tr, pur, _, svc := newDeps()
	req := okRequest()
	pur.On("ByApplication", mock.Anything, "app-1").Return([]domain.PurchaseRecord{}, nil)
	tr.On("Transfer", mock.Anything, req.VanityAddress, req.VanitySecret, req.BuyerRegularKey).
		Return(transfer.Result{Success: true, TxID: "H1"})
	tr.On("DisableMasterKey", mock.Anything, req.VanityAddress, req.VanitySecret).
		Return(transfer.Result{Success: false, Code: "submitError", Reason: "timeout"})

	res := svc.Handover(context.Background(), req)

	assert.False(t, res.Success)
	assert.Equal(t, "submitError", res.Code)
	inv.AssertNotCalled(t, "Purge", mock.Anything, mock.Anything)
	pur.AssertNotCalled(t, "AddPurchase", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandover_PurgeFailureDoesNotStopTheSale(t *testing.T) {
	inv, tr, pur, rec, svc := newDeps()
	req := okRequest()
	pur.On("ByApplication", mock.Anything, "app-1").Return([]domain.PurchaseRecord{}, nil)
	tr.On("Transfer", mock.Anything, req.VanityAddress, req.VanitySecret, req.BuyerRegularKey).
		Return(transfer.Result{Success: true, TxID: "H1"})
	tr.On("DisableMasterKey", mock.Anything, req.VanityAddress, req.VanitySecret).
		Return(transfer.Result{Success: true})
	inv.On("Purge", mock.Anything, req.VanityAddress).Return(errors.New("status 502"))
	pur.On("AddPurchase", mock.Anything, req.Origin, req.ApplicationID, req.BuyerAccount, req.VanityAddress).Return(nil)
	rec.On("Record", mock.Anything, req.Origin, req.ApplicationID, "vanity").Return()

	res := svc.Handover(context.Background(), req)

	assert.True(t, res.Success)
	pur.AssertExpectations(t)
	rec.AssertExpectations(t)
}

func TestPurchased_FlattensRecords(t *testing.T) {
	_, _, pur, _, svc := newDeps()
	pur.On("ByAccount", mock.Anything, "rBuyer").Return([]domain.PurchaseRecord{
		{Account: "rBuyer", VanityAddresses: []string{"rA", "rB"}},
		{Account: "rBuyer", VanityAddresses: []string{"rC"}},
	}, nil)

	got := svc.Purchased(context.Background(), "rBuyer")

	assert.ElementsMatch(t, []string{"rA", "rB", "rC"}, got)
}

func TestPurchased_StoreFailureDegradesToEmpty(t *testing.T) {
	_, _, pur, _, svc := newDeps()
	pur.On("ByAccount", mock.Anything, "rBuyer").Return(nil, errors.New("store down"))

	assert.Empty(t, svc.Purchased(context.Background(), "rBuyer"))
}
