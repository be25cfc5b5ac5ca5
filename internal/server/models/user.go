package models

import "time"

// User is an account of the identity provider.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash []byte
	CreatedAt    time.Time
}
