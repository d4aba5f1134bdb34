package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDigit_KnownBodies(t *testing.T) {
	cases := []struct {
		body int
		dv   string
	}{
		{12345678, "5"},
		{11111111, "1"},
		{7654321, "6"},
		{6000000, "K"},
		{10000013, "K"},
		{22222222, "2"},
		{15000000, "9"},
		{123456, "0"},
		{19876543, "0"},
		{987654321, "1"},
		{24965885, "5"},
		{30686957, "4"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.dv, CheckDigit(tc.body), "body %d", tc.body)
	}
}

func TestParseRUT(t *testing.T) {
	t.Run("accepts dotted form", func(t *testing.T) {
		r, err := ParseRUT("12.345.678-5")
		require.NoError(t, err)
		assert.Equal(t, RUT{Body: 12345678, DV: "5"}, r)
		assert.Equal(t, "12.345.678-5", r.String())
		assert.Equal(t, "12345678-5", r.Compact())
	})

	t.Run("uppercases K", func(t *testing.T) {
		r, err := ParseRUT(" 6.000.000-k ")
		require.NoError(t, err)
		assert.Equal(t, "6.000.000-K", r.String())
	})

	t.Run("accepts six digit body", func(t *testing.T) {
		r, err := ParseRUT("123456-0")
		require.NoError(t, err)
		assert.Equal(t, "123.456-0", r.String())
	})

	t.Run("rejects wrong check digit", func(t *testing.T) {
		_, err := ParseRUT("12345678-9")
		require.ErrorIs(t, err, ErrNoValidID)
	})

	t.Run("rejects K where a digit is expected", func(t *testing.T) {
		_, err := ParseRUT("12345678-K")
		require.ErrorIs(t, err, ErrNoValidID)
	})

	t.Run("rejects short bodies and junk", func(t *testing.T) {
		for _, in := range []string{"", "1-9", "12345-6", "abc", "1234567890123-4"} {
			_, err := ParseRUT(in)
			assert.ErrorIs(t, err, ErrNoValidID, "input %q", in)
		}
	})
}

func TestFormatThousands(t *testing.T) {
	assert.Equal(t, "123", formatThousands(123))
	assert.Equal(t, "123.456", formatThousands(123456))
	assert.Equal(t, "6.000.000", formatThousands(6000000))
	assert.Equal(t, "987.654.321", formatThousands(987654321))
}
