// Package identity resolves callers and classifies recipients.
//
// Callers authenticate with an HS256 bearer token whose subject is their
// identity. Token issuance exists for operators and tests; the registry itself
// never mints tokens on a request path.
package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
)

// Claims are the bearer token claims. Subject carries the caller identity.
type Claims struct {
	APIVersion string `json:"api_version,omitempty"`
	jwt.RegisteredClaims
}

// Caller is a validated token resolved to an identity.
type Caller struct {
	Identity   id.Identity
	APIVersion id.APIVersion
	TokenID    string
}

// TokenService signs and validates caller tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
}

func NewTokenService(signingKey, issuer string) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// Issue signs a token for identity valid for ttl.
func (s *TokenService) Issue(identity id.Identity, ttl time.Duration) (string, error) {
	if identity.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity is required")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		APIVersion: id.DefaultVersion().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// Validate parses tokenString and resolves its subject.
func (s *TokenService) Validate(tokenString string) (*Caller, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	identity, err := id.ParseIdentity(claims.Subject)
	if err != nil || identity.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token subject is not a valid identity")
	}

	version := id.DefaultVersion()
	if claims.APIVersion != "" {
		version, err = id.ParseAPIVersion(claims.APIVersion)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token carries an unknown api version")
		}
	}

	return &Caller{
		Identity:   identity,
		APIVersion: version,
		TokenID:    claims.ID,
	}, nil
}
