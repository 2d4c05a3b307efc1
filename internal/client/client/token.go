package client

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIdentity is what an access token says about its holder.
type TokenIdentity struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

type accessClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
}

// ParseTokenIdentity reads the claims of an access token without checking
// its signature, which only the server can do. The subject is the external
// auth id the user sync step needs.
func ParseTokenIdentity(accessToken string) (TokenIdentity, error) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return TokenIdentity{}, fmt.Errorf("malformed access token: %w", err)
	}
	if claims.Subject == "" {
		return TokenIdentity{}, fmt.Errorf("malformed access token: no subject")
	}
	return TokenIdentity{
		Subject:   claims.Subject,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}, nil
}
