// Package engine implements community post escalation: per-voter vote
// idempotency and the two-tier threshold that promotes a post to an official
// report.
package engine

import (
	"sync"

	"github.com/google/uuid"

	"campus-dispatch/internal/clock"
	"campus-dispatch/internal/community/domain"
	"campus-dispatch/internal/geo"
	reportdomain "campus-dispatch/internal/report/domain"
)

// Thresholds configures escalation. LowWaterMark < Threshold; RejectionFloor
// is negative. A post's own threshold overrides Threshold when set.
type Thresholds struct {
	LowWaterMark   int
	Threshold      int
	RejectionFloor int
}

// Submission is the input to Create.
type Submission struct {
	AuthorID  string
	Category  reportdomain.Category
	Content   string
	Location  *geo.Point
	Threshold int // 0 means the configured default
}

type entry struct {
	mu sync.Mutex
	p  domain.Post
}

// Engine owns all community posts and their vote tallies. It never creates
// reports itself; it marks a post escalated and the caller performs the
// cross-engine report creation afterwards.
type Engine struct {
	clk        clock.Clock
	thresholds Thresholds

	mu    sync.RWMutex
	posts map[string]*entry
}

// New returns an escalation engine with the given thresholds.
func New(clk clock.Clock, th Thresholds) *Engine {
	return &Engine{
		clk:        clk,
		thresholds: th,
		posts:      make(map[string]*entry),
	}
}

// Create adds a new post with escalation status none.
func (e *Engine) Create(sub Submission) (*domain.Post, error) {
	if !sub.Category.Valid() {
		return nil, ErrUnknownCategory
	}
	if sub.Content == "" {
		return nil, ErrEmptyContent
	}
	if sub.Location != nil && !sub.Location.Valid() {
		return nil, ErrInvalidLocation
	}
	threshold := sub.Threshold
	if threshold <= 0 {
		threshold = e.thresholds.Threshold
	}

	p := domain.Post{
		ID:               uuid.New().String(),
		AuthorID:         sub.AuthorID,
		Category:         sub.Category,
		Content:          sub.Content,
		Votes:            make(map[string]domain.Direction),
		EscalationStatus: domain.EscalationNone,
		Threshold:        threshold,
		CreatedAt:        e.clk.Now(),
	}
	if sub.Location != nil {
		pt := *sub.Location
		p.Location = &pt
	}

	e.mu.Lock()
	e.posts[p.ID] = &entry{p: p}
	e.mu.Unlock()
	return p.Clone(), nil
}

func (e *Engine) mutate(id string, fn func(*domain.Post) error) (*domain.Post, error) {
	e.mu.RLock()
	ent := e.posts[id]
	e.mu.RUnlock()
	if ent == nil {
		return nil, ErrNotFound
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	if err := fn(&ent.p); err != nil {
		return nil, err
	}
	return ent.p.Clone(), nil
}

// Vote records voterID's direction on the post. A repeat vote from the same
// voter replaces the previous direction. Thresholds are evaluated after every
// vote; the returned bool reports whether this vote crossed the escalation
// threshold. Votes on settled posts still record but never change the
// escalation decision.
func (e *Engine) Vote(postID, voterID string, dir domain.Direction) (*domain.Post, bool, error) {
	if !dir.Valid() {
		return nil, false, ErrInvalidDirection
	}
	escalated := false
	p, err := e.mutate(postID, func(p *domain.Post) error {
		p.Votes[voterID] = dir
		if p.EscalationStatus.Settled() {
			return nil
		}
		score := p.NetScore()
		switch {
		case score <= e.thresholds.RejectionFloor:
			p.EscalationStatus = domain.EscalationRejected
		case p.EscalationStatus == domain.EscalationPending && score >= p.Threshold:
			p.EscalationStatus = domain.EscalationEscalated
			escalated = true
		case p.EscalationStatus == domain.EscalationNone && score >= e.thresholds.LowWaterMark:
			// One tier per vote: a single swing never jumps straight to
			// escalated, so operators always get a pending window.
			p.EscalationStatus = domain.EscalationPending
		}
		return nil
	})
	return p, escalated, err
}

// Reject settles the post as rejected regardless of score. Moderator action;
// fails with ErrAlreadySettled if the decision is already made.
func (e *Engine) Reject(postID string) (*domain.Post, error) {
	return e.mutate(postID, func(p *domain.Post) error {
		if p.EscalationStatus.Settled() {
			return ErrAlreadySettled
		}
		p.EscalationStatus = domain.EscalationRejected
		return nil
	})
}

// AttachReport records the identifier of the report created for an escalated
// post. At most one report per post.
func (e *Engine) AttachReport(postID, reportID string) (*domain.Post, error) {
	return e.mutate(postID, func(p *domain.Post) error {
		if p.EscalationStatus != domain.EscalationEscalated {
			return ErrNotEscalated
		}
		if p.ReportID != "" {
			return ErrReportAttached
		}
		p.ReportID = reportID
		return nil
	})
}

// Get returns a copy of the post.
func (e *Engine) Get(id string) (*domain.Post, error) {
	e.mu.RLock()
	ent := e.posts[id]
	e.mu.RUnlock()
	if ent == nil {
		return nil, ErrNotFound
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.p.Clone(), nil
}

// List returns copies of all posts currently held by the engine.
func (e *Engine) List() []*domain.Post {
	e.mu.RLock()
	entries := make([]*entry, 0, len(e.posts))
	for _, ent := range e.posts {
		entries = append(entries, ent)
	}
	e.mu.RUnlock()
	out := make([]*domain.Post, 0, len(entries))
	for _, ent := range entries {
		ent.mu.Lock()
		out = append(out, ent.p.Clone())
		ent.mu.Unlock()
	}
	return out
}
