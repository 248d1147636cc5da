// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// User is an account that can sign in with a username and password.
type User struct {
	ID           uint64    // Assigned by the store on creation and never reused.
	Username     string    // Unique login name.
	Email        string    // Unique contact address.
	PasswordHash string    // bcrypt hash; plaintext never reaches this field.
	CreatedAt    time.Time // Timestamp of when this user account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this user's data.
}
