package wallet

import (
	"log/slog"
	"strings"
)

const unknownSource = "unknown"

// TickResult reports which session writes a tick performed.
type TickResult struct {
	AccountsWritten  bool `json:"accountsWritten"`
	SelectionWritten bool `json:"selectionWritten"`
	StatusWritten    bool `json:"statusWritten"`
	ErrorCleared     bool `json:"errorCleared"`
}

// Changed reports whether the tick wrote anything.
func (r TickResult) Changed() bool {
	return r.AccountsWritten || r.SelectionWritten || r.StatusWritten || r.ErrorCleared
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithLogger sets the logger used for sync diagnostics.
func WithLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Bridge mirrors wallet extension observations into a SessionStore. It keeps
// its own memo of the last synchronised account list and connected account
// and only writes when one of them changes, so repeated identical
// observations never touch the store.
//
// A Bridge is not safe for concurrent use.
type Bridge struct {
	store  SessionStore
	logger *slog.Logger

	accountsKey string
	connected   *string
}

// NewBridge returns a bridge writing to store.
func NewBridge(store SessionStore, opts ...BridgeOption) *Bridge {
	b := &Bridge{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Reset forgets the synchronised memo so the next tick writes unconditionally
// whenever the observation is non-empty.
func (b *Bridge) Reset() {
	b.accountsKey = ""
	b.connected = nil
}

// Tick reconciles one observation with the session store.
func (b *Bridge) Tick(obs Observation) TickResult {
	var result TickResult

	key := accountsKey(obs.Accounts)
	if key != b.accountsKey {
		b.accountsKey = key
		accounts := toInjected(obs)
		b.store.SetAccounts(accounts)
		result.AccountsWritten = true
		if len(accounts) == 0 {
			b.store.SetStatus(StatusIdle)
			result.StatusWritten = true
		}
		b.logger.Debug("wallet accounts synchronised", "count", len(accounts))
	}

	var connected *string
	if obs.Connected != nil {
		address := obs.Connected.Address
		connected = &address
	}
	if !sameAddress(connected, b.connected) {
		b.connected = connected
		switch {
		case connected != nil:
			b.store.SetSelectedAddress(connected)
			b.store.SetStatus(StatusConnected)
			result.SelectionWritten = true
			result.StatusWritten = true
		case len(obs.Accounts) == 0:
			b.store.SetSelectedAddress(nil)
			b.store.SetStatus(StatusIdle)
			result.SelectionWritten = true
			result.StatusWritten = true
		}
		b.logger.Debug("wallet selection synchronised", "connected", connected != nil)
	}

	if len(obs.Accounts) > 0 && obs.Connected != nil && b.store.Snapshot().Error != "" {
		b.store.SetError("")
		result.ErrorCleared = true
	}

	return result
}

func accountsKey(accounts []ObservedAccount) string {
	addresses := make([]string, len(accounts))
	for i, account := range accounts {
		addresses[i] = account.Address
	}
	return strings.Join(addresses, ",")
}

func toInjected(obs Observation) []InjectedAccount {
	fallbackSource := unknownSource
	if len(obs.ConnectedWallets) > 0 && obs.ConnectedWallets[0].ID != "" {
		fallbackSource = obs.ConnectedWallets[0].ID
	}
	out := make([]InjectedAccount, 0, len(obs.Accounts))
	for _, account := range obs.Accounts {
		name := account.Name
		if name == "" {
			name = account.Address
		}
		source := account.Source
		if source == "" {
			source = fallbackSource
		}
		out = append(out, InjectedAccount{
			Address: account.Address,
			Meta:    AccountMeta{Name: name, Source: source},
		})
	}
	return out
}

func sameAddress(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
