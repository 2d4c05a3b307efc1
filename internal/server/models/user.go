// Package models defines the server-side records persisted in PostgreSQL and
// exchanged as JSON by the HTTP API.
package models

import "time"

// User is the application-side profile of an authenticated person. It is
// created lazily by the sync step the first time an external identity shows
// up, and is the owner of tasks.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	ExternalAuthID string    `json:"externalAuthId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	CreatedAt      time.Time `json:"createdAt"`
}
