package identity

import (
	authmw "keepsake/pkg/platform/middleware/auth"
)

// MiddlewareAdapter exposes a TokenService as an auth.TokenValidator.
type MiddlewareAdapter struct {
	tokens *TokenService
}

func NewMiddlewareAdapter(tokens *TokenService) *MiddlewareAdapter {
	return &MiddlewareAdapter{tokens: tokens}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*authmw.Claims, error) {
	caller, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.Claims{
		Identity:   caller.Identity,
		APIVersion: caller.APIVersion,
		TokenID:    caller.TokenID,
	}, nil
}
