package models

type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	ExternalAuthID string `json:"externalAuthId"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Session is the client's explicit authentication state: created once on
// login (or restored from the local store) and torn down on logout.
type Session struct {
	Email        string
	AccessToken  string
	RefreshToken string
	// ExternalAuthID is the identity provider's id for the account, taken
	// from the access token.
	ExternalAuthID string
	User           *User
}
