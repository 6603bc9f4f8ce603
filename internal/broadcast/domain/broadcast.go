// Package domain defines operator-issued geofenced broadcasts.
package domain

import (
	"time"

	"campus-dispatch/internal/geo"
)

// Broadcast is an issued geofenced alert. Immutable once issued; changing an
// alert means issuing a new one.
type Broadcast struct {
	ID             string
	Message        string
	Center         geo.Point
	RadiusM        float64
	IssuedBy       string
	IssuedAt       time.Time
	Recipients     []string
	RecipientCount int
}

// Clone returns a copy so callers never share the recipient slice.
func (b *Broadcast) Clone() *Broadcast {
	if b == nil {
		return nil
	}
	out := *b
	out.Recipients = append([]string(nil), b.Recipients...)
	return &out
}
