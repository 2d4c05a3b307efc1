package models

import "time"

type RefreshToken struct {
	ID           string
	CredentialID string
	Token        string
	Expires      time.Time
	CreatedAt    time.Time
}
