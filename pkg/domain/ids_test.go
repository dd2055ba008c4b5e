package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "keepsake/pkg/domain-errors"
)

// TestParseIdentity_Invariants validates the parsing invariant:
// "identities are 20-byte hex addresses in checksum form"
func TestParseIdentity_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseIdentity("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("normalizes lowercase input to checksum form", func(t *testing.T) {
		id, err := ParseIdentity("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
		require.NoError(t, err)
		assert.Equal(t, Identity("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"), id)
	})

	t.Run("accepts valid checksum addresses", func(t *testing.T) {
		for _, addr := range []string{
			"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
			"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
			"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
			"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
		} {
			id, err := ParseIdentity(addr)
			require.NoError(t, err, addr)
			assert.Equal(t, addr, id.String())
		}
	})

	t.Run("rejects mixed case with a wrong checksum", func(t *testing.T) {
		_, err := ParseIdentity("0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("zero address is the null identity", func(t *testing.T) {
		id, err := ParseIdentity("0x0000000000000000000000000000000000000000")
		require.NoError(t, err)
		assert.True(t, id.IsNil())
		assert.True(t, NilIdentity.IsNil())
	})
}

// TestParseIdentity_TrustBoundary rejects attack-shaped input at API entry points.
func TestParseIdentity_TrustBoundary(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"SQL injection attempt", "'; DROP TABLE records;--"},
		{"missing prefix", "5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"},
		{"too short", "0x5aaeb6053f3e94c9"},
		{"oversized input", "0x" + strings.Repeat("a", 1000)},
		{"non-hex digits", "0xzzaeb6053f3e94c9b9a09f33669435e7ef1beaed"},
		{"null byte", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1bea\x00d"},
		{"whitespace only", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIdentity(tt.input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestParseNumericIDs(t *testing.T) {
	t.Run("accepts positive decimals", func(t *testing.T) {
		c, err := ParseContentID("7")
		require.NoError(t, err)
		assert.Equal(t, ContentID(7), c)

		r, err := ParseRecordID("42")
		require.NoError(t, err)
		assert.Equal(t, RecordID(42), r)
		assert.Equal(t, "42", r.String())
	})

	for _, input := range []string{"", "0", "-1", "abc", "1.5"} {
		t.Run("rejects "+input, func(t *testing.T) {
			_, errContent := ParseContentID(input)
			_, errRecord := ParseRecordID(input)
			require.Error(t, errContent)
			require.Error(t, errRecord)
			assert.True(t, dErrors.HasCode(errRecord, dErrors.CodeInvalidInput))
		})
	}
}
