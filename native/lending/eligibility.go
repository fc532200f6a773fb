package lending

import (
	"math/big"

	"github.com/holiman/uint256"
)

// TokenDecimals is the number of decimals used by the pool token.
const TokenDecimals = 18

// Signals carries the reputation counters consumed by the eligibility check.
// Counters that have not been loaded yet are reported as zero.
type Signals struct {
	Stars    uint64 `json:"stars"`
	Vouchers uint64 `json:"vouchers"`
}

// EligibilityResult reports whether a requested amount can be borrowed and,
// if not, what the borrower still lacks. Tier is TierNone when the amount is
// outside every band; in that case both missing counters are zero and
// Requirements is nil, so callers must check HasTier before reading the
// counters as "qualified".
type EligibilityResult struct {
	Valid             bool              `json:"isValid"`
	Tier              LoanTier          `json:"tier"`
	Requirements      *TierRequirements `json:"requirements,omitempty"`
	MissingReputation uint64            `json:"missingReputation"`
	MissingVouchers   uint64            `json:"missingVouchers"`
}

// HasTier reports whether the amount fell inside a tier band.
func (r EligibilityResult) HasTier() bool {
	return r.Tier != TierNone
}

// Evaluate checks a requested amount against the tier table.
func (t TierTable) Evaluate(amount float64, stars, vouchers uint64) EligibilityResult {
	req, ok := t.RequirementsFor(amount)
	if !ok {
		return EligibilityResult{}
	}
	missingStars := saturatingSub(req.MinStars, stars)
	missingVouchers := saturatingSub(req.MinVouchers, vouchers)
	return EligibilityResult{
		Valid:             missingStars == 0 && missingVouchers == 0,
		Tier:              req.Tier,
		Requirements:      &req,
		MissingReputation: missingStars,
		MissingVouchers:   missingVouchers,
	}
}

// EvaluateSignals is Evaluate with counters taken from signals.
func (t TierTable) EvaluateSignals(amount float64, signals Signals) EligibilityResult {
	return t.Evaluate(amount, signals.Stars, signals.Vouchers)
}

// ClassifyTier classifies amount against the default tier table.
func ClassifyTier(amount float64) (LoanTier, bool) {
	return DefaultTierTable().ClassifyTier(amount)
}

// RequirementsFor looks up amount in the default tier table.
func RequirementsFor(amount float64) (TierRequirements, bool) {
	return DefaultTierTable().RequirementsFor(amount)
}

// Evaluate checks amount against the default tier table.
func Evaluate(amount float64, stars, vouchers uint64) EligibilityResult {
	return DefaultTierTable().Evaluate(amount, stars, vouchers)
}

// TokensFromBaseUnits converts an on-chain base-unit amount into whole tokens.
// A nil amount converts to zero.
func TokensFromBaseUnits(amount *uint256.Int, decimals uint8) float64 {
	if amount == nil {
		return 0
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	value := new(big.Float).SetInt(amount.ToBig())
	value.Quo(value, new(big.Float).SetInt(scale))
	out, _ := value.Float64()
	return out
}

func saturatingSub(want, have uint64) uint64 {
	if have >= want {
		return 0
	}
	return want - have
}
