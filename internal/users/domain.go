package users

import "errors"

// ErrNotFound indicates the user row does not exist.
var ErrNotFound = errors.New("users: not found")

// Status is the moderation state of a portal account.
type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// User represents a portal account as seen by the admin console.
type User struct {
	ID     string
	Email  string
	Role   string
	Status Status
}
