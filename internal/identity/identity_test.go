package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
)

var (
	tokens = NewTokenService("test-signing-key", "keepsake-test")
	alice  = id.MustParseIdentity("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
)

func TestIssueAndValidate(t *testing.T) {
	token, err := tokens.Issue(alice, time.Hour)
	require.NoError(t, err)

	caller, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, alice, caller.Identity)
	assert.Equal(t, id.APIVersionV1, caller.APIVersion)
	assert.NotEmpty(t, caller.TokenID)
}

func TestIssueRejectsNullIdentity(t *testing.T) {
	_, err := tokens.Issue(id.NilIdentity, time.Hour)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestValidateRejects(t *testing.T) {
	expired, err := tokens.Issue(alice, -time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewTokenService("test-signing-key", "someone-else").Issue(alice, time.Hour)
	require.NoError(t, err)

	otherKey, err := NewTokenService("another-key", "keepsake-test").Issue(alice, time.Hour)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-an-address",
			Issuer:    "keepsake-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	badVersion, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		APIVersion: "v9",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   alice.String(),
			Issuer:    "keepsake-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		msg   string
	}{
		{"garbage", "invalid-token-string", "invalid token"},
		{"expired", expired, "token has expired"},
		{"wrong issuer", otherIssuer, "invalid token"},
		{"wrong key", otherKey, "invalid token"},
		{"subject is not an identity", badSubject, "token subject is not a valid identity"},
		{"unknown api version", badVersion, "token carries an unknown api version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Validate(tt.token)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestStaticContractDirectory(t *testing.T) {
	dir, err := NewStaticContractDirectory([]string{"0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"})
	require.NoError(t, err)

	ok, err := dir.IsContract(context.Background(), id.MustParseIdentity("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"))
	require.NoError(t, err)
	assert.True(t, ok, "lowercase config entry matches checksummed identity")

	ok, err = dir.IsContract(context.Background(), alice)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewStaticContractDirectory([]string{"0x123"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestMiddlewareAdapter(t *testing.T) {
	token, err := tokens.Issue(alice, time.Hour)
	require.NoError(t, err)

	claims, err := NewMiddlewareAdapter(tokens).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, alice, claims.Identity)
	assert.Equal(t, id.APIVersionV1, claims.APIVersion)

	_, err = NewMiddlewareAdapter(tokens).ValidateToken("nope")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
