package lending

import (
	"errors"
	"fmt"
	"math"
)

// LoanTier identifies a loan-size band. The zero value means "no tier".
type LoanTier uint8

const (
	TierNone LoanTier = iota
	Tier1
	Tier2
	Tier3
)

// ErrInvalidTierTable is returned when a tier table fails validation.
var ErrInvalidTierTable = errors.New("lending: invalid tier table")

// TierRequirements captures the token band of a tier together with the
// reputation and voucher thresholds a borrower must meet.
type TierRequirements struct {
	Tier        LoanTier `json:"tier" toml:"Tier" yaml:"tier"`
	MinTokens   float64  `json:"minTokens" toml:"MinTokens" yaml:"minTokens"`
	MaxTokens   float64  `json:"maxTokens" toml:"MaxTokens" yaml:"maxTokens"`
	MinStars    uint64   `json:"minStars" toml:"MinStars" yaml:"minStars"`
	MinVouchers uint64   `json:"minVouchers" toml:"MinVouchers" yaml:"minVouchers"`
}

// TierTable is an ordered, contiguous set of tiers. Every band is half-open
// except the last, which includes its maximum.
type TierTable struct {
	tiers []TierRequirements
}

// DefaultTierTable returns the protocol tier bands.
func DefaultTierTable() TierTable {
	return TierTable{tiers: []TierRequirements{
		{Tier: Tier1, MinTokens: 0, MaxTokens: 50, MinStars: 5, MinVouchers: 1},
		{Tier: Tier2, MinTokens: 50, MaxTokens: 100, MinStars: 20, MinVouchers: 2},
		{Tier: Tier3, MinTokens: 100, MaxTokens: 1000, MinStars: 50, MinVouchers: 3},
	}}
}

// NewTierTable validates tiers and returns a table. Tiers must be numbered
// 1..n in order, start at a non-negative amount and chain each band's minimum
// to the previous band's maximum.
func NewTierTable(tiers []TierRequirements) (TierTable, error) {
	if len(tiers) == 0 {
		return TierTable{}, fmt.Errorf("%w: at least one tier required", ErrInvalidTierTable)
	}
	if len(tiers) > math.MaxUint8 {
		return TierTable{}, fmt.Errorf("%w: too many tiers", ErrInvalidTierTable)
	}
	for i, tier := range tiers {
		if tier.Tier != LoanTier(i+1) {
			return TierTable{}, fmt.Errorf("%w: tier %d out of sequence at position %d", ErrInvalidTierTable, tier.Tier, i)
		}
		if math.IsNaN(tier.MinTokens) || math.IsNaN(tier.MaxTokens) || math.IsInf(tier.MaxTokens, 0) {
			return TierTable{}, fmt.Errorf("%w: tier %d bounds must be finite", ErrInvalidTierTable, tier.Tier)
		}
		if tier.MinTokens < 0 {
			return TierTable{}, fmt.Errorf("%w: tier %d minimum is negative", ErrInvalidTierTable, tier.Tier)
		}
		if tier.MaxTokens <= tier.MinTokens {
			return TierTable{}, fmt.Errorf("%w: tier %d maximum must exceed minimum", ErrInvalidTierTable, tier.Tier)
		}
		if i > 0 && tier.MinTokens != tiers[i-1].MaxTokens {
			return TierTable{}, fmt.Errorf("%w: tier %d does not start where tier %d ends", ErrInvalidTierTable, tier.Tier, tiers[i-1].Tier)
		}
	}
	out := make([]TierRequirements, len(tiers))
	copy(out, tiers)
	return TierTable{tiers: out}, nil
}

// All returns a copy of the tiers in ascending order.
func (t TierTable) All() []TierRequirements {
	out := make([]TierRequirements, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// Lookup returns the requirements of a tier by number.
func (t TierTable) Lookup(tier LoanTier) (TierRequirements, bool) {
	if tier == TierNone || int(tier) > len(t.tiers) {
		return TierRequirements{}, false
	}
	return t.tiers[tier-1], true
}

// ClassifyTier maps a token amount onto its tier. Bands are scanned in
// ascending order, so an amount on a boundary belongs to the higher tier
// except at the maximum of the top tier. Negative, NaN or oversized amounts
// have no tier.
func (t TierTable) ClassifyTier(amount float64) (LoanTier, bool) {
	if len(t.tiers) == 0 || math.IsNaN(amount) || amount < t.tiers[0].MinTokens {
		return TierNone, false
	}
	last := len(t.tiers) - 1
	for i := 0; i < last; i++ {
		if amount < t.tiers[i+1].MinTokens {
			return t.tiers[i].Tier, true
		}
	}
	if amount <= t.tiers[last].MaxTokens {
		return t.tiers[last].Tier, true
	}
	return TierNone, false
}

// RequirementsFor returns the requirements of the tier amount falls into.
func (t TierTable) RequirementsFor(amount float64) (TierRequirements, bool) {
	tier, ok := t.ClassifyTier(amount)
	if !ok {
		return TierRequirements{}, false
	}
	return t.Lookup(tier)
}

// Describe renders a one-line summary of a tier, or "" for unknown tiers.
func (t TierTable) Describe(tier LoanTier) string {
	req, ok := t.Lookup(tier)
	if !ok {
		return ""
	}
	return fmt.Sprintf("Tier %d: %s-%s tokens, %d stars, %d vouchers",
		tier, formatTokens(req.MinTokens), formatTokens(req.MaxTokens), req.MinStars, req.MinVouchers)
}

func formatTokens(v float64) string {
	return fmt.Sprintf("%g", v)
}
