package trustd

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kleotrust/native/lending"
	"kleotrust/native/reputation"
	"kleotrust/wallet"
)

func rawBatch(t *testing.T, payload string) []reputation.RawTrustEvent {
	t.Helper()
	var raw []reputation.RawTrustEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	return raw
}

func TestServiceEvaluateExplicitStars(t *testing.T) {
	svc := New(Config{})
	stars := uint64(2)
	result := svc.Evaluate(EligibilityRequest{Amount: 30, Stars: &stars})
	require.False(t, result.Valid)
	require.Equal(t, lending.Tier1, result.Tier)
	require.EqualValues(t, 3, result.MissingReputation)
	require.EqualValues(t, 1, result.MissingVouchers)
}

func TestServiceEvaluateDerivesStarsFromWallet(t *testing.T) {
	svc := New(Config{})
	_, err := svc.IngestRaw(rawBatch(t, `[
		{"blockNumber": 9, "data": {"borrower": "0xAA00000000000000000000000000000000000001", "kind": "InstallmentPaid", "amount": "10", "newScore": 25}}
	]`))
	require.NoError(t, err)

	result := svc.Evaluate(EligibilityRequest{Amount: 75, Vouchers: 2, Wallet: "0xaa00000000000000000000000000000000000001"})
	require.True(t, result.Valid)
	require.Equal(t, lending.Tier2, result.Tier)

	// explicit stars win over the wallet's history
	zero := uint64(0)
	result = svc.Evaluate(EligibilityRequest{Amount: 75, Vouchers: 2, Stars: &zero, Wallet: "0xaa00000000000000000000000000000000000001"})
	require.False(t, result.Valid)
	require.EqualValues(t, 20, result.MissingReputation)
}

func TestServiceIngestPublishesToSubscribers(t *testing.T) {
	svc := New(Config{MaxEvents: 2})
	_, err := svc.IngestRaw(rawBatch(t, `[
		{"data": {"borrower": "0x01", "kind": "InstallmentPaid", "amount": 1, "newScore": 1}}
	]`))
	require.NoError(t, err)

	backlog, updates, cancel := svc.Subscribe()
	defer cancel()
	require.Len(t, backlog, 1)

	ingested, err := svc.IngestRaw(rawBatch(t, `[
		{"blockNumber": 3, "data": {"borrower": "0x02", "kind": "MissedPayment", "amount": "0x10", "newScore": -4}},
		{"blockNumber": 3, "data": {"borrower": "0x03", "kind": "GuarantorAdded", "amount": "0", "newScore": 7}}
	]`))
	require.NoError(t, err)
	require.Len(t, ingested, 2)

	select {
	case batch := <-updates:
		require.Equal(t, ingested, batch)
	case <-time.After(time.Second):
		t.Fatal("expected published batch")
	}

	recent := svc.RecentEvents()
	require.Len(t, recent, 2)
	require.Equal(t, "0x02", recent[0].Subject)
}

func TestServiceIngestRejectsMalformedBatch(t *testing.T) {
	svc := New(Config{})
	_, updates, cancel := svc.Subscribe()
	defer cancel()

	_, err := svc.IngestRaw(rawBatch(t, `[
		{"data": {"borrower": "0x01", "kind": "InstallmentPaid", "amount": 1, "newScore": 1}},
		{"data": {"borrower": " ", "kind": "MissedPayment", "amount": 1, "newScore": 1}}
	]`))
	require.ErrorIs(t, err, reputation.ErrInvalidEvent)
	require.Empty(t, svc.RecentEvents())

	select {
	case <-updates:
		t.Fatal("rejected batch must not be published")
	default:
	}
}

func TestServiceDistinctWalletsDefaultLimit(t *testing.T) {
	svc := New(Config{MaxWallets: 2})
	_, err := svc.IngestRaw(rawBatch(t, `[
		{"data": {"borrower": "0x01", "kind": "InstallmentPaid", "amount": 1, "newScore": 1}},
		{"data": {"borrower": "0x02", "kind": "InstallmentPaid", "amount": 1, "newScore": 2}},
		{"data": {"borrower": "0x03", "kind": "InstallmentPaid", "amount": 1, "newScore": 3}}
	]`))
	require.NoError(t, err)

	require.Len(t, svc.DistinctWallets(0), 2)
	require.Len(t, svc.DistinctWallets(5), 3)
}

func TestServiceTickUpdatesSession(t *testing.T) {
	svc := New(Config{})
	addr := "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	result, session := svc.Tick(wallet.Observation{
		Accounts:  []wallet.ObservedAccount{{Address: addr}},
		Connected: &wallet.ConnectedAccount{Address: addr},
	})
	require.True(t, result.AccountsWritten)
	require.True(t, result.SelectionWritten)
	require.Equal(t, wallet.StatusConnected, session.Status)
	require.NotNil(t, session.SelectedAddress)
	require.Equal(t, addr, *session.SelectedAddress)
	require.Equal(t, session, svc.Session())
}

func TestServiceTiersDescribed(t *testing.T) {
	svc := New(Config{})
	tiers := svc.Tiers()
	require.Len(t, tiers, 3)
	require.Equal(t, "Tier 1: 0-50 tokens, 5 stars, 1 vouchers", tiers[0].Description)
}

func TestServiceAddressHelpers(t *testing.T) {
	svc := New(Config{})
	forms, err := svc.Describe("0xd43593c715fdd31c61141abd04a99fd6822c8558")
	require.NoError(t, err)
	require.True(t, svc.Match(forms.Network, forms.Short))
	require.False(t, svc.Match("garbage", forms.Short))
}
