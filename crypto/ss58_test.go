package crypto

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/require"
)

func checksummed(prefix uint16, payload []byte) string {
	body := append(encodePrefix(prefix), payload...)
	return base58.Encode(append(body, ss58Checksum(body)...))
}

func TestDecodeSS58PayloadLengths(t *testing.T) {
	for _, n := range []int{AccountIDLength, AccountIDLength + 1} {
		payload := bytes.Repeat([]byte{0xab}, n)
		prefix, got, err := decodeSS58(checksummed(42, payload))
		require.NoError(t, err, "length %d", n)
		require.EqualValues(t, 42, prefix)
		require.Equal(t, payload, got)
	}

	// Checksum-valid but not an account-sized payload.
	for _, n := range []int{ShortAddressLength, 31, 34} {
		_, _, err := decodeSS58(checksummed(42, bytes.Repeat([]byte{0xab}, n)))
		require.ErrorIs(t, err, ErrInvalidFormat, "length %d", n)
	}
}

func TestDecodeSS58TwoBytePrefix(t *testing.T) {
	payload := bytes.Repeat([]byte{0x01}, AccountIDLength)
	prefix, got, err := decodeSS58(checksummed(1000, payload))
	require.NoError(t, err)
	require.EqualValues(t, 1000, prefix)
	require.Equal(t, payload, got)
}
