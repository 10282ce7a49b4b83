package domain

import (
	"time"
)

// Org represents an organization/tenant. Slug is its unique, URL-safe handle.
type Org struct {
	ID        string
	Slug      string
	Name      string
	Status    OrgStatus
	CreatedAt time.Time
}

type OrgStatus string

const (
	OrgStatusActive    OrgStatus = "active"
	OrgStatusSuspended OrgStatus = "suspended"
)
