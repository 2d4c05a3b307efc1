// Package common contains shared constants and sentinel errors used across
// taskboard components.
package common

const (
	// AuthorizationHeaderName carries "Bearer <access token>" on API requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix is the scheme prefix expected in AuthorizationHeaderName.
	BearerPrefix = "Bearer "

	// AccessTokenCookieName is the cookie set on login so that plain browser
	// navigation is recognised by the page gateway.
	AccessTokenCookieName = "access_token"
)
