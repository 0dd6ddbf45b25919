// Package moderation persists the privileged mutations the admin console
// applies to posts, shops and reports.
package moderation

import (
	"errors"
	"time"
)

// ErrNotFound indicates the targeted row does not exist.
var ErrNotFound = errors.New("moderation: not found")

// ShopStatus is the three-state moderation status of a shop listing.
type ShopStatus string

const (
	ShopPending  ShopStatus = "pending"
	ShopApproved ShopStatus = "approved"
	ShopRejected ShopStatus = "rejected"
)

// Shop carries the fields the admin console reads or writes.
type Shop struct {
	ID          string
	Status      ShopStatus
	Location    string
	Highlighted bool
	CreatedAt   time.Time
}
