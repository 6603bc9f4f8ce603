package domain

import (
	"errors"
	"time"
)

// Role controls what an operator may do. Moderators can settle community
// posts; admins can additionally manage routing policies.
type Role string

const (
	RoleOperator  Role = "operator"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleOperator || r == RoleModerator || r == RoleAdmin
}

// Status is the operator account state.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Operator is a dispatch console account.
type Operator struct {
	ID           string
	Email        string
	Name         string
	Role         Role
	PasswordHash string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks structural invariants before persistence.
func (o *Operator) Validate() error {
	if o.ID == "" {
		return errors.New("operator: missing id")
	}
	if o.Email == "" {
		return errors.New("operator: missing email")
	}
	if !o.Role.Valid() {
		return errors.New("operator: invalid role")
	}
	return nil
}
