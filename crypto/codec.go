package crypto

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultNetworkPrefix is the SS58 prefix of the Asset Hub network.
const DefaultNetworkPrefix uint16 = 0

const displayEllipsis = "…"

// AddressForms bundles both renderings of the same account together with a
// truncated form suitable for tables.
type AddressForms struct {
	Short        string `json:"short"`
	Network      string `json:"network"`
	ShortDisplay string `json:"shortDisplay"`
}

// Codec converts between short (hex) addresses and network (SS58) addresses
// for a single network prefix. The zero value is not usable; construct with
// NewCodec or use DefaultCodec.
type Codec struct {
	prefix uint16
}

var defaultCodec = &Codec{prefix: DefaultNetworkPrefix}

// DefaultCodec returns the codec for DefaultNetworkPrefix.
func DefaultCodec() *Codec { return defaultCodec }

// NewCodec returns a codec that encodes network addresses with prefix.
func NewCodec(prefix uint16) (*Codec, error) {
	if !validPrefix(prefix) {
		return nil, fmt.Errorf("%w: unsupported network prefix %d", ErrInvalidFormat, prefix)
	}
	return &Codec{prefix: prefix}, nil
}

// Prefix returns the network prefix used for encoding.
func (c *Codec) Prefix() uint16 { return c.prefix }

// ToNetworkAddress zero-pads a 20-byte hex address to 32 bytes and encodes it
// as a checksummed network address.
func (c *Codec) ToNetworkAddress(shortHex string) (string, error) {
	addr, err := ParseShortAddress(shortHex)
	if err != nil {
		return "", err
	}
	id := addr.AccountID()
	return encodeSS58(c.prefix, id[:])
}

// ToShortAddress decodes a network address and returns the first 20 bytes of
// its payload as a lowercase 0x-prefixed hex string. Bytes beyond the first 20
// are discarded, so the conversion is lossy for accounts that were not
// produced by ToNetworkAddress.
func (c *Codec) ToShortAddress(network string) (string, error) {
	trimmed := strings.TrimSpace(network)
	if trimmed == "" {
		return "", fmt.Errorf("%w: address required", ErrInvalidFormat)
	}
	_, payload, err := decodeSS58(trimmed)
	if err != nil {
		return "", err
	}
	var addr ShortAddress
	copy(addr[:], payload[:ShortAddressLength])
	return addr.String(), nil
}

// AddressesMatch reports whether the network address and the short address
// identify the same contract account. Malformed input on either side yields
// false.
func (c *Codec) AddressesMatch(network, short string) bool {
	fromNetwork, err := c.ToShortAddress(network)
	if err != nil {
		slog.Debug("address comparison failed", "error", err)
		return false
	}
	normalized, err := NormalizeShort(short)
	if err != nil {
		slog.Debug("address comparison failed", "error", err)
		return false
	}
	return fromNetwork == normalized
}

// Describe detects whether address is short or network encoded and returns
// both forms.
func (c *Codec) Describe(address string) (AddressForms, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return AddressForms{}, fmt.Errorf("%w: address required", ErrInvalidFormat)
	}
	var forms AddressForms
	if looksLikeShort(trimmed) {
		short, err := NormalizeShort(trimmed)
		if err != nil {
			return AddressForms{}, err
		}
		network, err := c.ToNetworkAddress(short)
		if err != nil {
			return AddressForms{}, err
		}
		forms = AddressForms{Short: short, Network: network}
	} else {
		short, err := c.ToShortAddress(trimmed)
		if err != nil {
			return AddressForms{}, err
		}
		forms = AddressForms{Short: short, Network: trimmed}
	}
	forms.ShortDisplay = Truncate(forms.Network)
	return forms, nil
}

// DisplayOrRaw returns the truncated display form of address, falling back to
// the raw input when it cannot be decoded.
func (c *Codec) DisplayOrRaw(address string) string {
	forms, err := c.Describe(address)
	if err != nil {
		return address
	}
	return forms.ShortDisplay
}

// Truncate keeps the first six and last four characters of s.
func Truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= 10 {
		return s
	}
	return string(runes[:6]) + displayEllipsis + string(runes[len(runes)-4:])
}

// ToNetworkAddress converts using the default codec.
func ToNetworkAddress(shortHex string) (string, error) {
	return defaultCodec.ToNetworkAddress(shortHex)
}

// ToShortAddress converts using the default codec.
func ToShortAddress(network string) (string, error) {
	return defaultCodec.ToShortAddress(network)
}

// AddressesMatch compares using the default codec.
func AddressesMatch(network, short string) bool {
	return defaultCodec.AddressesMatch(network, short)
}

// Describe describes address using the default codec.
func Describe(address string) (AddressForms, error) {
	return defaultCodec.Describe(address)
}
