package crypto

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceSubstrate = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	aliceShort     = "0xd43593c715fdd31c61141abd04a99fd6822c8558"
)

func substrateCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec(42)
	require.NoError(t, err)
	return codec
}

func TestToShortAddressKnownVector(t *testing.T) {
	short, err := substrateCodec(t).ToShortAddress(aliceSubstrate)
	require.NoError(t, err)
	require.Equal(t, aliceShort, short)
}

func TestNetworkRoundTripIsLossyForFullAccounts(t *testing.T) {
	codec := substrateCodec(t)
	short, err := codec.ToShortAddress(aliceSubstrate)
	require.NoError(t, err)

	network, err := codec.ToNetworkAddress(short)
	require.NoError(t, err)
	require.NotEqual(t, aliceSubstrate, network)

	again, err := codec.ToShortAddress(network)
	require.NoError(t, err)
	require.Equal(t, short, again)
}

func TestToNetworkAddressPadsRight(t *testing.T) {
	network, err := ToNetworkAddress("0x" + strings.Repeat("ab", 20))
	require.NoError(t, err)

	prefix, payload, err := decodeSS58(network)
	require.NoError(t, err)
	require.Equal(t, DefaultNetworkPrefix, prefix)
	require.Len(t, payload, AccountIDLength)
	require.Equal(t, strings.Repeat("ab", 20), hex.EncodeToString(payload[:20]))
	require.Equal(t, make([]byte, 12), payload[20:])
}

func TestToNetworkAddressRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"whitespace": "   ",
		"short":      "0x1234",
		"long":       "0x" + strings.Repeat("a", 42),
		"non-hex":    "0x" + strings.Repeat("g", 40),
	}
	for name, input := range cases {
		input := input
		t.Run(name, func(t *testing.T) {
			_, err := ToNetworkAddress(input)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidFormat))
		})
	}
}

func TestToNetworkAddressAcceptsUnprefixedMixedCase(t *testing.T) {
	upper := strings.Repeat("AB", 20)
	a, err := ToNetworkAddress(upper)
	require.NoError(t, err)
	b, err := ToNetworkAddress("0x" + strings.ToLower(upper))
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestToShortAddressRejectsMalformed(t *testing.T) {
	network, err := ToNetworkAddress("0x" + strings.Repeat("01", 20))
	require.NoError(t, err)
	tampered := network[:len(network)-1] + flipBase58(network[len(network)-1])

	for _, input := range []string{"", "0OIl", "abc", tampered} {
		_, err := ToShortAddress(input)
		require.ErrorIs(t, err, ErrInvalidFormat, "input %q", input)
	}
}

func TestAddressesMatch(t *testing.T) {
	codec := substrateCodec(t)
	require.True(t, codec.AddressesMatch(aliceSubstrate, aliceShort))
	require.True(t, codec.AddressesMatch(aliceSubstrate, strings.ToUpper(aliceShort[2:])))
	require.False(t, codec.AddressesMatch(aliceSubstrate, "0x"+strings.Repeat("00", 20)))

	garbage := []string{"", " ", "0x", "0xzz", "not-an-address", aliceShort, "1111111111"}
	for _, a := range garbage {
		for _, b := range garbage {
			assert.NotPanics(t, func() { _ = codec.AddressesMatch(a, b) })
			assert.False(t, codec.AddressesMatch(a, b))
		}
	}
}

func TestDescribe(t *testing.T) {
	codec := substrateCodec(t)

	fromNetwork, err := codec.Describe("  " + aliceSubstrate + " ")
	require.NoError(t, err)
	require.Equal(t, aliceShort, fromNetwork.Short)
	require.Equal(t, aliceSubstrate, fromNetwork.Network)
	require.Equal(t, "5Grwva…utQY", fromNetwork.ShortDisplay)

	fromShort, err := codec.Describe(strings.ToUpper(aliceShort[2:]))
	require.NoError(t, err)
	require.Equal(t, aliceShort, fromShort.Short)
	network, err := codec.ToNetworkAddress(aliceShort)
	require.NoError(t, err)
	require.Equal(t, network, fromShort.Network)

	for _, input := range []string{"", "\t", "0x123", "???"} {
		_, err := codec.Describe(input)
		require.ErrorIs(t, err, ErrInvalidFormat)
	}
	require.Equal(t, "???", codec.DisplayOrRaw("???"))
}

func TestLooksLikeShort(t *testing.T) {
	cases := map[string]bool{
		aliceShort:                      true,
		aliceShort[2:]:                  true,
		strings.ToUpper(aliceShort[2:]): true,
		"0X12":                          true,
		"0x":                            true,
		aliceShort[2:41]:                false,
		aliceShort[2:] + "0":            false,
		"g" + aliceShort[3:]:            false,
		aliceSubstrate:                  false,
	}
	for input, want := range cases {
		assert.Equal(t, want, looksLikeShort(input), "input %q", input)
	}
}

func TestNewCodecRejectsReservedPrefixes(t *testing.T) {
	for _, prefix := range []uint16{46, 47, MaxNetworkPrefix + 1} {
		_, err := NewCodec(prefix)
		require.ErrorIs(t, err, ErrInvalidFormat)
	}
}

func TestPrefixEncodingRoundTrip(t *testing.T) {
	for _, prefix := range []uint16{0, 2, 42, 63, 64, 255, 1284, MaxNetworkPrefix} {
		encoded := encodePrefix(prefix)
		decoded, n, err := decodePrefix(encoded)
		require.NoError(t, err)
		require.Equal(t, len(encoded), n)
		require.Equal(t, prefix, decoded)
	}
}

func TestAddressProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("short -> network -> short is identity", prop.ForAll(
		func(raw []byte) bool {
			short := "0x" + hex.EncodeToString(raw)
			network, err := ToNetworkAddress(short)
			if err != nil {
				return false
			}
			back, err := ToShortAddress(network)
			return err == nil && back == short
		},
		gen.SliceOfN(ShortAddressLength, gen.UInt8()),
	))

	properties.Property("network -> short -> network keeps only the low 20 bytes", prop.ForAll(
		func(raw []byte) bool {
			network, err := encodeSS58(DefaultNetworkPrefix, raw)
			if err != nil {
				return false
			}
			short, err := ToShortAddress(network)
			if err != nil {
				return false
			}
			again, err := ToNetworkAddress(short)
			if err != nil {
				return false
			}
			_, payload, err := decodeSS58(again)
			if err != nil {
				return false
			}
			var padded [AccountIDLength]byte
			copy(padded[:], raw[:ShortAddressLength])
			return string(payload) == string(padded[:])
		},
		gen.SliceOfN(AccountIDLength, gen.UInt8()),
	))

	properties.Property("arbitrary text never matches", prop.ForAll(
		func(a, b string) bool {
			return !AddressesMatch(a, b)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func flipBase58(c byte) string {
	if c == '2' {
		return "3"
	}
	return "2"
}
