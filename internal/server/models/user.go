// Package models holds the persisted entities of the server.
package models

import "time"

// User is the sole persisted entity. PasswordHash is the opaque output of
// the password hasher, never a raw password.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
