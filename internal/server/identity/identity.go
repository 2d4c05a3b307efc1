// Package identity describes the external identity provider as the API layer
// sees it: something that turns a bearer token into a verified identity.
package identity

import "context"

// Identity is what a provider vouches for. ExternalID is stable for the
// lifetime of the account and is what application users are linked by.
type Identity struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
}

// Provider verifies access tokens. Implementations return
// common.ErrTokenExpired or an error wrapping common.ErrInvalidToken when the
// token cannot be accepted.
type Provider interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, token string) (Identity, error)

func (f ProviderFunc) Verify(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}
