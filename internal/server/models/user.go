// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. Accounts are immutable after registration
// and are never deleted through the exposed API.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
