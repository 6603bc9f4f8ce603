package domain

import "time"

// Policy is a stored Rego routing override. When no enabled policies exist
// the built-in default routing applies.
type Policy struct {
	ID        string
	Name      string
	Rules     string
	Enabled   bool
	CreatedAt time.Time
}
