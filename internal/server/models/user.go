// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. PasswordHash is a bcrypt hash and RefreshToken holds
// the single refresh token currently valid for the user, if any. Neither is
// ever serialized to clients.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserWithFiles is the admin listing row: a user and the names stored in
// their namespace.
type UserWithFiles struct {
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Files []string `json:"files"`
}
