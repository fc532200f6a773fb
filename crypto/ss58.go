package crypto

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

const (
	// AccountIDLength is the byte length of a network account payload.
	AccountIDLength = 32
	// MaxNetworkPrefix is the largest prefix representable by the two-byte
	// SS58 format.
	MaxNetworkPrefix = 16383

	ss58ChecksumLength = 2
)

var ss58Context = []byte("SS58PRE")

// encodePrefix renders the SS58 network prefix as one byte for values below
// 64 and as the two-byte form otherwise.
func encodePrefix(prefix uint16) []byte {
	if prefix < 64 {
		return []byte{byte(prefix)}
	}
	first := byte((prefix&0x00fc)>>2) | 0x40
	second := byte(prefix>>8) | byte((prefix&0x0003)<<6)
	return []byte{first, second}
}

// decodePrefix returns the network prefix and the number of bytes it occupies.
func decodePrefix(data []byte) (uint16, int, error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("%w: empty payload", ErrInvalidFormat)
	}
	if data[0]&0x40 == 0 {
		return uint16(data[0]), 1, nil
	}
	if len(data) < 2 {
		return 0, 0, fmt.Errorf("%w: truncated prefix", ErrInvalidFormat)
	}
	lower := uint16(data[0]&0x3f)<<2 | uint16(data[1]>>6)
	upper := uint16(data[1] & 0x3f)
	return lower | upper<<8, 2, nil
}

func ss58Checksum(body []byte) []byte {
	hashed := blake2b.Sum512(append(append([]byte{}, ss58Context...), body...))
	return hashed[:ss58ChecksumLength]
}

func validPrefix(prefix uint16) bool {
	return prefix <= MaxNetworkPrefix && prefix != 46 && prefix != 47
}

// encodeSS58 encodes the payload with the given network prefix.
func encodeSS58(prefix uint16, payload []byte) (string, error) {
	if !validPrefix(prefix) {
		return "", fmt.Errorf("%w: unsupported network prefix %d", ErrInvalidFormat, prefix)
	}
	if len(payload) != AccountIDLength {
		return "", fmt.Errorf("%w: payload must be %d bytes, got %d", ErrInvalidFormat, AccountIDLength, len(payload))
	}
	body := append(encodePrefix(prefix), payload...)
	return base58.Encode(append(body, ss58Checksum(body)...)), nil
}

// decodeSS58 returns the prefix and payload of an SS58 string after
// validating its checksum. Only 32- and 33-byte payloads are accepted.
func decodeSS58(address string) (uint16, []byte, error) {
	raw := base58.Decode(address)
	if len(raw) == 0 {
		return 0, nil, fmt.Errorf("%w: not base58", ErrInvalidFormat)
	}
	prefix, prefixLen, err := decodePrefix(raw)
	if err != nil {
		return 0, nil, err
	}
	payloadLen := len(raw) - prefixLen - ss58ChecksumLength
	if payloadLen != AccountIDLength && payloadLen != AccountIDLength+1 {
		return 0, nil, fmt.Errorf("%w: unexpected payload length %d", ErrInvalidFormat, payloadLen)
	}
	body := raw[:len(raw)-ss58ChecksumLength]
	if !bytes.Equal(raw[len(raw)-ss58ChecksumLength:], ss58Checksum(body)) {
		return 0, nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidFormat)
	}
	payload := make([]byte, payloadLen)
	copy(payload, raw[prefixLen:len(raw)-ss58ChecksumLength])
	return prefix, payload, nil
}
