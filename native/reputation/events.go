package reputation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"kleotrust/crypto"
)

// RawTrustEvent is the payload delivered by the oracle event subscription.
type RawTrustEvent struct {
	BlockNumber *uint64          `json:"blockNumber,omitempty"`
	Data        RawTrustEventData `json:"data"`
}

// RawTrustEventData carries the decoded TrustEventRecorded fields. Amount and
// Timestamp arrive either as JSON numbers or as numeric strings.
type RawTrustEventData struct {
	Borrower  string          `json:"borrower"`
	Kind      string          `json:"kind"`
	Amount    json.RawMessage `json:"amount,omitempty"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
	NewScore  int64           `json:"newScore"`
}

// Normalize converts a raw subscription batch into trust events. Events keep
// their batch order and are left without an ID; Ingest assigns one.
func Normalize(raw []RawTrustEvent) ([]TrustEvent, error) {
	out := make([]TrustEvent, 0, len(raw))
	for i, item := range raw {
		event, err := normalizeOne(item)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		out = append(out, event)
	}
	return out, nil
}

func normalizeOne(raw RawTrustEvent) (TrustEvent, error) {
	amount, err := parseAmount(raw.Data.Amount)
	if err != nil {
		return TrustEvent{}, err
	}
	event := TrustEvent{
		Subject:        canonicalSubject(raw.Data.Borrower),
		Kind:           EventKind(strings.TrimSpace(raw.Data.Kind)),
		Amount:         amount,
		ObservedAt:     parseTimestamp(raw.Data.Timestamp),
		ResultingScore: raw.Data.NewScore,
	}
	if raw.BlockNumber != nil {
		block := *raw.BlockNumber
		event.OriginBlock = &block
	}
	if err := event.Validate(); err != nil {
		return TrustEvent{}, err
	}
	return event, nil
}

// canonicalSubject lowercases hex subjects so the same wallet groups together
// regardless of checksum casing. Other encodings are kept verbatim.
func canonicalSubject(subject string) string {
	trimmed := strings.TrimSpace(subject)
	if normalized, err := crypto.NormalizeShort(trimmed); err == nil {
		return normalized
	}
	return trimmed
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// scalarText returns the text of a JSON number or string.
func scalarText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	}
	return string(trimmed), true
}

func parseAmount(raw json.RawMessage) (*uint256.Int, error) {
	if isNull(raw) {
		return nil, nil
	}
	text, ok := scalarText(raw)
	if !ok || text == "" {
		return nil, fmt.Errorf("%w: malformed amount", ErrInvalidEvent)
	}
	var (
		value *uint256.Int
		err   error
	)
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		digits := strings.TrimLeft(text[2:], "0")
		if digits == "" {
			digits = "0"
		}
		value, err = uint256.FromHex("0x" + digits)
	} else {
		value, err = uint256.FromDecimal(text)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q: %v", ErrInvalidEvent, text, err)
	}
	if value.BitLen() > MaxAmountBits {
		return nil, ErrAmountOverflow
	}
	return value, nil
}

// parseTimestamp returns nil when the timestamp is absent or does not parse
// to a finite number within the unsigned 64-bit range.
func parseTimestamp(raw json.RawMessage) *uint64 {
	if isNull(raw) {
		return nil
	}
	text, ok := scalarText(raw)
	if !ok || text == "" {
		return nil
	}
	if v, err := strconv.ParseUint(text, 10, 64); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(text, 64)
	// float64(math.MaxUint64) rounds up to 2^64, which is already out of range.
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxUint64 {
		return nil
	}
	v := uint64(f)
	return &v
}
