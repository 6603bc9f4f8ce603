// Package domain defines incident reports and the routing vocabulary.
package domain

import (
	"time"

	"campus-dispatch/internal/geo"
)

// Category classifies an incident report. The set is fixed; submissions with
// any other value are rejected.
type Category string

const (
	CategorySecurity    Category = "security"
	CategorySafety      Category = "safety"
	CategoryHarassment  Category = "harassment"
	CategoryFacility    Category = "facility"
	CategoryMaintenance Category = "maintenance"
	CategoryMedical     Category = "medical"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategorySecurity, CategorySafety, CategoryHarassment,
		CategoryFacility, CategoryMaintenance, CategoryMedical:
		return true
	}
	return false
}

// Team is a responder team a report can be routed to.
type Team string

const (
	TeamSecurity   Team = "security"
	TeamFacilities Team = "facilities"
	TeamMedical    Team = "medical"
)

// Priority is the triage priority assigned at submission.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Status is the report lifecycle state; transitions only move forward.
type Status string

const (
	StatusOpen         Status = "open"
	StatusAcknowledged Status = "acknowledged"
	StatusAssigned     Status = "assigned"
	StatusResolved     Status = "resolved"
)

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool { return s == StatusResolved }

// rank orders statuses for the forward-only check.
func (s Status) rank() int {
	switch s {
	case StatusOpen:
		return 0
	case StatusAcknowledged:
		return 1
	case StatusAssigned:
		return 2
	case StatusResolved:
		return 3
	}
	return -1
}

// Before reports whether s precedes o in the lifecycle.
func (s Status) Before(o Status) bool { return s.rank() < o.rank() }

// Route is a routing decision: the team a category goes to and the default
// priority it carries.
type Route struct {
	Team     Team
	Priority Priority
}

// RoutingTable maps every valid category to its route. It is loaded once at
// start-up and never mutated afterwards.
type RoutingTable map[Category]Route

// DefaultRoutingTable is the built-in category routing used when no policy
// override is configured.
func DefaultRoutingTable() RoutingTable {
	return RoutingTable{
		CategorySecurity:    {Team: TeamSecurity, Priority: PriorityMedium},
		CategorySafety:      {Team: TeamSecurity, Priority: PriorityHigh},
		CategoryHarassment:  {Team: TeamSecurity, Priority: PriorityMedium},
		CategoryFacility:    {Team: TeamFacilities, Priority: PriorityMedium},
		CategoryMaintenance: {Team: TeamFacilities, Priority: PriorityLow},
		CategoryMedical:     {Team: TeamMedical, Priority: PriorityHigh},
	}
}

// Complete reports whether the table covers every valid category with a
// well-formed route.
func (t RoutingTable) Complete() bool {
	for _, c := range []Category{
		CategorySecurity, CategorySafety, CategoryHarassment,
		CategoryFacility, CategoryMaintenance, CategoryMedical,
	} {
		r, ok := t[c]
		if !ok || r.Team == "" || !r.Priority.Valid() {
			return false
		}
	}
	return true
}

// Report is a submitted incident. ReporterID is empty for anonymous
// submissions and is never consulted by routing.
type Report struct {
	ID         string
	Category   Category
	Summary    string
	Location   *geo.Point
	ReporterID string // empty when anonymous
	Anonymous  bool
	Status     Status
	Priority   Priority
	RoutedTo   Team
	Assignee   string
	MediaCount int
	CreatedAt  time.Time
}

// Clone returns a copy so callers never share mutable state with the engine.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	out := *r
	if r.Location != nil {
		p := *r.Location
		out.Location = &p
	}
	return &out
}
