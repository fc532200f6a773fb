package wallet

// Status is the connection state of the session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusConnecting Status = "connecting"
	StatusConnected  Status = "connected"
	StatusError      Status = "error"
)

// ObservedAccount is an account exposed by the signing extension.
type ObservedAccount struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
	Source  string `json:"source,omitempty"`
}

// ConnectedAccount identifies the account the extension reports as active.
type ConnectedAccount struct {
	Address string `json:"address"`
}

// ConnectedWallet identifies a connected extension.
type ConnectedWallet struct {
	ID string `json:"id"`
}

// Observation is a point-in-time snapshot of the wallet extension state.
type Observation struct {
	Accounts         []ObservedAccount `json:"accounts"`
	Connected        *ConnectedAccount `json:"connectedAccount,omitempty"`
	ConnectedWallets []ConnectedWallet `json:"connectedWallets"`
}

// AccountMeta mirrors the injected-account metadata stored in the session.
type AccountMeta struct {
	Name        string  `json:"name"`
	Source      string  `json:"source"`
	GenesisHash *string `json:"genesisHash"`
}

// InjectedAccount is the session representation of an extension account.
type InjectedAccount struct {
	Address string      `json:"address"`
	Meta    AccountMeta `json:"meta"`
}

// Session is a snapshot of the session store.
type Session struct {
	Status          Status            `json:"status"`
	Error           string            `json:"error,omitempty"`
	Accounts        []InjectedAccount `json:"accounts"`
	SelectedAddress *string           `json:"selectedAddress,omitempty"`
}

// SessionStore is the externally owned session state the bridge writes to.
type SessionStore interface {
	Snapshot() Session
	SetAccounts(accounts []InjectedAccount)
	SetSelectedAddress(address *string)
	SetStatus(status Status)
	SetError(message string)
}
