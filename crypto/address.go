package crypto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ShortAddressLength is the byte length of a contract-space account address.
const ShortAddressLength = common.AddressLength

// ErrInvalidFormat is returned for any address input that is neither a
// well-formed short (hex) address nor a well-formed network (SS58) address.
var ErrInvalidFormat = errors.New("crypto: invalid address format")

// ShortAddress is the 20-byte account identifier used by the contract
// execution environment.
type ShortAddress common.Address

// ParseShortAddress parses 40 hex digits with an optional 0x prefix. Case is
// ignored.
func ParseShortAddress(s string) (ShortAddress, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ShortAddress{}, fmt.Errorf("%w: address required", ErrInvalidFormat)
	}
	if !common.IsHexAddress(trimmed) {
		return ShortAddress{}, fmt.Errorf("%w: %q is not a 20-byte hex address", ErrInvalidFormat, s)
	}
	return ShortAddress(common.HexToAddress(trimmed)), nil
}

// String returns the lowercase 0x-prefixed hex form.
func (a ShortAddress) String() string {
	return hexutil.Encode(a[:])
}

// Bytes returns a copy of the raw address bytes.
func (a ShortAddress) Bytes() []byte {
	out := make([]byte, ShortAddressLength)
	copy(out, a[:])
	return out
}

// AccountID returns the 32-byte network payload obtained by right-padding the
// address with zero bytes.
func (a ShortAddress) AccountID() [AccountIDLength]byte {
	var id [AccountIDLength]byte
	copy(id[:], a[:])
	return id
}

// NormalizeShort returns the canonical lowercase 0x-prefixed form of a short
// address.
func NormalizeShort(s string) (string, error) {
	addr, err := ParseShortAddress(s)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}

// looksLikeShort reports whether the input should be treated as a short
// address during auto-detection.
func looksLikeShort(s string) bool {
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") || common.IsHexAddress(s)
}
