package reputation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// EventKind tags the reason a trust event was recorded by the oracle.
type EventKind string

const (
	// KindInstallmentPaid is recorded when a loan instalment is paid.
	KindInstallmentPaid EventKind = "InstallmentPaid"
	// KindMissedPayment is recorded when a payment is missed.
	KindMissedPayment EventKind = "MissedPayment"
	// KindGuarantorAdded is recorded when a guarantor backs the borrower.
	KindGuarantorAdded EventKind = "GuarantorAdded"
	// KindIdentityVerified is recorded when the borrower's identity is verified.
	KindIdentityVerified EventKind = "IdentityVerified"
)

var knownKinds = map[EventKind]struct{}{
	KindInstallmentPaid:  {},
	KindMissedPayment:    {},
	KindGuarantorAdded:   {},
	KindIdentityVerified: {},
}

// Known reports whether the kind is one of the oracle's event kinds. Unknown
// kinds are carried through unchanged.
func (k EventKind) Known() bool {
	_, ok := knownKinds[k]
	return ok
}

// MaxAmountBits bounds event amounts to the oracle's u128 balance type.
const MaxAmountBits = 128

var (
	// ErrInvalidEvent is returned for events missing mandatory fields.
	ErrInvalidEvent = errors.New("reputation: invalid trust event")
	// ErrAmountOverflow is returned when an amount exceeds MaxAmountBits.
	ErrAmountOverflow = errors.New("reputation: amount exceeds 128 bits")
)

// TrustEvent is a single oracle observation about a wallet. Events are
// immutable once ingested.
type TrustEvent struct {
	ID             string
	Subject        string
	Kind           EventKind
	Amount         *uint256.Int
	ObservedAt     *uint64
	ResultingScore int64
	OriginBlock    *uint64
}

// Validate checks the mandatory fields of the event.
func (e TrustEvent) Validate() error {
	if strings.TrimSpace(e.Subject) == "" {
		return fmt.Errorf("%w: subject required", ErrInvalidEvent)
	}
	if strings.TrimSpace(string(e.Kind)) == "" {
		return fmt.Errorf("%w: kind required", ErrInvalidEvent)
	}
	if e.Amount != nil && e.Amount.BitLen() > MaxAmountBits {
		return ErrAmountOverflow
	}
	return nil
}

type trustEventJSON struct {
	ID             string    `json:"id"`
	Subject        string    `json:"subject"`
	Kind           EventKind `json:"kind"`
	Amount         *string   `json:"amount,omitempty"`
	ObservedAt     *uint64   `json:"observedAt,omitempty"`
	ResultingScore int64     `json:"resultingScore"`
	OriginBlock    *uint64   `json:"originBlock,omitempty"`
}

// clone returns a copy that shares no pointers with e.
func (e TrustEvent) clone() TrustEvent {
	out := e
	if e.Amount != nil {
		out.Amount = new(uint256.Int).Set(e.Amount)
	}
	if e.ObservedAt != nil {
		at := *e.ObservedAt
		out.ObservedAt = &at
	}
	if e.OriginBlock != nil {
		block := *e.OriginBlock
		out.OriginBlock = &block
	}
	return out
}

// MarshalJSON renders the amount as a decimal string.
func (e TrustEvent) MarshalJSON() ([]byte, error) {
	out := trustEventJSON{
		ID:             e.ID,
		Subject:        e.Subject,
		Kind:           e.Kind,
		ObservedAt:     e.ObservedAt,
		ResultingScore: e.ResultingScore,
		OriginBlock:    e.OriginBlock,
	}
	if e.Amount != nil {
		dec := e.Amount.Dec()
		out.Amount = &dec
	}
	return json.Marshal(out)
}

// WalletTrustView holds the most recently observed event for one wallet.
type WalletTrustView struct {
	Wallet string     `json:"wallet"`
	Latest TrustEvent `json:"latest"`
}
