package domain

import "time"

// AuditLog is one recorded operator action against a dispatch entity.
type AuditLog struct {
	ID         string
	OperatorID string
	Action     string
	Entity     string
	EntityID   string
	IP         string
	Metadata   string
	CreatedAt  time.Time
}
