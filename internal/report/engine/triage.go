// Package engine implements incident report triage: deterministic routing at
// submission and a forward-only operator lifecycle.
package engine

import (
	"sync"

	"github.com/google/uuid"

	"campus-dispatch/internal/clock"
	"campus-dispatch/internal/geo"
	"campus-dispatch/internal/report/domain"
)

// Submission is the input to Submit. Anonymous submissions carry no reporter
// identity; routing never sees the reporter either way.
type Submission struct {
	Category   domain.Category
	Summary    string
	Location   *geo.Point
	ReporterID string
	Anonymous  bool
	MediaCount int
}

// Filter narrows List results. Nil fields match everything.
type Filter struct {
	Status   *domain.Status
	Team     *domain.Team
	Priority *domain.Priority
}

type entry struct {
	mu sync.Mutex
	r  domain.Report
}

// Engine owns all in-flight reports. The routing table is fixed at
// construction; two reports with the same category always route identically.
type Engine struct {
	clk   clock.Clock
	table domain.RoutingTable

	mu      sync.RWMutex
	reports map[string]*entry
}

// New returns a triage engine over the given routing table. Fails with
// ErrIncompleteTable if the table does not cover every category.
func New(clk clock.Clock, table domain.RoutingTable) (*Engine, error) {
	if !table.Complete() {
		return nil, ErrIncompleteTable
	}
	return &Engine{
		clk:     clk,
		table:   table,
		reports: make(map[string]*entry),
	}, nil
}

// Submit validates the submission, routes it by category and creates the
// report in open.
func (e *Engine) Submit(sub Submission) (*domain.Report, error) {
	if !sub.Category.Valid() {
		return nil, ErrUnknownCategory
	}
	if sub.Summary == "" {
		return nil, ErrEmptySummary
	}
	if sub.Location != nil && !sub.Location.Valid() {
		return nil, ErrInvalidLocation
	}
	route := e.table[sub.Category]

	r := domain.Report{
		ID:         uuid.New().String(),
		Category:   sub.Category,
		Summary:    sub.Summary,
		Anonymous:  sub.Anonymous,
		Status:     domain.StatusOpen,
		Priority:   route.Priority,
		RoutedTo:   route.Team,
		MediaCount: sub.MediaCount,
		CreatedAt:  e.clk.Now(),
	}
	if sub.Location != nil {
		p := *sub.Location
		r.Location = &p
	}
	if !sub.Anonymous {
		r.ReporterID = sub.ReporterID
	}

	e.mu.Lock()
	e.reports[r.ID] = &entry{r: r}
	e.mu.Unlock()
	return r.Clone(), nil
}

func (e *Engine) mutate(id string, fn func(*domain.Report) error) (*domain.Report, error) {
	e.mu.RLock()
	ent := e.reports[id]
	e.mu.RUnlock()
	if ent == nil {
		return nil, ErrNotFound
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	if err := fn(&ent.r); err != nil {
		return nil, err
	}
	return ent.r.Clone(), nil
}

// Acknowledge moves an open report to acknowledged. Idempotent for reports
// already past open.
func (e *Engine) Acknowledge(id string) (*domain.Report, bool, error) {
	changed := false
	r, err := e.mutate(id, func(r *domain.Report) error {
		if r.Status.Terminal() {
			return ErrTerminalState
		}
		if r.Status == domain.StatusOpen {
			r.Status = domain.StatusAcknowledged
			changed = true
		}
		return nil
	})
	return r, changed, err
}

// Assign sets the assignee and moves the report to assigned. Assigning an
// open report implicitly acknowledges it first. Fails with ErrTerminalState
// on resolved reports.
func (e *Engine) Assign(id, assignee string) (*domain.Report, error) {
	if assignee == "" {
		return nil, ErrMissingAssignee
	}
	return e.mutate(id, func(r *domain.Report) error {
		if r.Status.Terminal() {
			return ErrTerminalState
		}
		r.Status = domain.StatusAssigned
		r.Assignee = assignee
		return nil
	})
}

// Resolve moves the report to resolved from any non-terminal state.
func (e *Engine) Resolve(id string) (*domain.Report, error) {
	return e.mutate(id, func(r *domain.Report) error {
		if r.Status.Terminal() {
			return ErrTerminalState
		}
		r.Status = domain.StatusResolved
		return nil
	})
}

// Get returns a copy of the report.
func (e *Engine) Get(id string) (*domain.Report, error) {
	e.mu.RLock()
	ent := e.reports[id]
	e.mu.RUnlock()
	if ent == nil {
		return nil, ErrNotFound
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.r.Clone(), nil
}

// List returns copies of all reports matching the filter. Pure read; no
// side effects.
func (e *Engine) List(f Filter) []*domain.Report {
	e.mu.RLock()
	entries := make([]*entry, 0, len(e.reports))
	for _, ent := range e.reports {
		entries = append(entries, ent)
	}
	e.mu.RUnlock()

	var out []*domain.Report
	for _, ent := range entries {
		ent.mu.Lock()
		r := ent.r.Clone()
		ent.mu.Unlock()
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		if f.Team != nil && r.RoutedTo != *f.Team {
			continue
		}
		if f.Priority != nil && r.Priority != *f.Priority {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Remove drops a resolved report from the engine after it has been archived.
func (e *Engine) Remove(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ent := e.reports[id]
	if ent == nil {
		return
	}
	ent.mu.Lock()
	terminal := ent.r.Status.Terminal()
	ent.mu.Unlock()
	if terminal {
		delete(e.reports, id)
	}
}
