// Package dispatch is the facade over the session, triage, escalation and
// broadcast engines. It owns the engine instances, drives the liveness sweep,
// persists changes and publishes the change event stream. Flows that span two
// engines commit their own transition first and perform the cross-engine call
// afterwards.
package dispatch

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	broadcastdomain "campus-dispatch/internal/broadcast/domain"
	broadcastengine "campus-dispatch/internal/broadcast/engine"
	"campus-dispatch/internal/clock"
	communitydomain "campus-dispatch/internal/community/domain"
	communityengine "campus-dispatch/internal/community/engine"
	"campus-dispatch/internal/events"
	"campus-dispatch/internal/geo"
	reportdomain "campus-dispatch/internal/report/domain"
	reportengine "campus-dispatch/internal/report/engine"
	sessiondomain "campus-dispatch/internal/session/domain"
	sessionengine "campus-dispatch/internal/session/engine"
)

// ReportTriage is the triage surface the facade composes. Satisfied by
// *reportengine.Engine; an interface so escalation failure paths can be
// exercised in tests.
type ReportTriage interface {
	Submit(sub reportengine.Submission) (*reportdomain.Report, error)
	Acknowledge(id string) (*reportdomain.Report, bool, error)
	Assign(id, assignee string) (*reportdomain.Report, error)
	Resolve(id string) (*reportdomain.Report, error)
	Get(id string) (*reportdomain.Report, error)
	List(f reportengine.Filter) []*reportdomain.Report
}

// SessionArchive is the minimal session store needed by the facade.
type SessionArchive interface {
	Archive(ctx context.Context, s *sessiondomain.Session) error
}

// ReportStore is the minimal report store needed by the facade.
type ReportStore interface {
	Save(ctx context.Context, r *reportdomain.Report) error
}

// PostStore is the minimal post store needed by the facade.
type PostStore interface {
	Save(ctx context.Context, p *communitydomain.Post) error
}

// BroadcastStore is the minimal broadcast store needed by the facade.
type BroadcastStore interface {
	Save(ctx context.Context, b *broadcastdomain.Broadcast) error
}

// Stores bundles the facade's persistence collaborators. Any field may be nil;
// a nil store makes that entity in-memory only.
type Stores struct {
	Sessions   SessionArchive
	Reports    ReportStore
	Posts      PostStore
	Broadcasts BroadcastStore
}

// Facade exposes the dispatch core's call surface. It holds no locks across
// engines; every engine call is synchronous and returns immediately.
type Facade struct {
	clk        clock.Clock
	sessions   *sessionengine.Registry
	reports    ReportTriage
	community  *communityengine.Engine
	broadcasts *broadcastengine.Engine
	stores     Stores
	sink       events.Sink

	sweepMu   sync.Mutex
	stopSweep func()

	// escMu guards escLocks; each post's lock serializes the report-creation
	// half of its escalation so concurrent retries cannot double-submit.
	escMu    sync.Mutex
	escLocks map[string]*sync.Mutex
}

// New wires the facade over its engines. sink may be nil to disable events.
func New(
	clk clock.Clock,
	sessions *sessionengine.Registry,
	reports ReportTriage,
	community *communityengine.Engine,
	broadcasts *broadcastengine.Engine,
	stores Stores,
	sink events.Sink,
) *Facade {
	return &Facade{
		clk:        clk,
		sessions:   sessions,
		reports:    reports,
		community:  community,
		broadcasts: broadcasts,
		stores:     stores,
		sink:       sink,
		escLocks:   make(map[string]*sync.Mutex),
	}
}

func (f *Facade) emit(ctx context.Context, t events.Type, entity, entityID, actorID string, metadata map[string]string) {
	var raw json.RawMessage
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			log.Printf("dispatch: marshal event metadata: %v", err)
		} else {
			raw = b
		}
	}
	events.EmitAsync(f.sink, ctx, events.New(t, entity, entityID, actorID, raw, f.clk.Now()))
}

// StartSweep schedules the liveness sweep on the given interval. Returns after
// scheduling; call Stop to cancel. Safe for concurrent use.
func (f *Facade) StartSweep(interval time.Duration) {
	f.sweepMu.Lock()
	defer f.sweepMu.Unlock()
	if f.stopSweep != nil {
		return
	}
	f.stopSweep = f.clk.ScheduleTick(interval, func(time.Time) {
		f.RunSweep(context.Background())
	})
}

// Stop cancels the liveness sweep if it is running.
func (f *Facade) Stop() {
	f.sweepMu.Lock()
	defer f.sweepMu.Unlock()
	if f.stopSweep != nil {
		f.stopSweep()
		f.stopSweep = nil
	}
}

// RunSweep performs one liveness pass and publishes an event per autonomous
// transition. Idempotent; safe to call concurrently with operations.
func (f *Facade) RunSweep(ctx context.Context) {
	for _, alert := range f.sessions.Sweep(f.clk.Now()) {
		t := events.TypeSessionStale
		if alert.Reason == sessiondomain.UrgentCheckInMissed {
			t = events.TypeCheckInMissed
		}
		f.emit(ctx, t, "session", alert.Session.ID, "", map[string]string{
			"status": string(alert.Session.Status),
			"reason": string(alert.Reason),
		})
	}
}

// --- sessions ---

// ActivateSession creates a session in pending for the requester.
func (f *Facade) ActivateSession(ctx context.Context, kind sessiondomain.Kind, requesterID string, pos sessiondomain.Position) (*sessiondomain.Session, error) {
	s, err := f.sessions.Activate(kind, requesterID, pos)
	if err != nil {
		return nil, err
	}
	f.emit(ctx, events.TypeStatusChanged, "session", s.ID, requesterID, map[string]string{
		"status": string(s.Status), "kind": string(s.Kind),
	})
	return s, nil
}

// AcknowledgeSession moves a pending session to active.
func (f *Facade) AcknowledgeSession(ctx context.Context, id, operatorID string) (*sessiondomain.Session, error) {
	s, changed, err := f.sessions.Acknowledge(id)
	if err != nil {
		return nil, err
	}
	if changed {
		f.emit(ctx, events.TypeStatusChanged, "session", s.ID, operatorID, map[string]string{
			"status": string(s.Status),
		})
	}
	return s, nil
}

// UpdateSessionPosition records a newer GPS fix.
func (f *Facade) UpdateSessionPosition(ctx context.Context, id string, pos sessiondomain.Position) (*sessiondomain.Session, error) {
	s, recovered, err := f.sessions.UpdatePosition(id, pos)
	if err != nil {
		return nil, err
	}
	if recovered {
		f.emit(ctx, events.TypeStatusChanged, "session", s.ID, s.RequesterID, map[string]string{
			"status": string(s.Status), "reason": "position_recovered",
		})
	}
	return s, nil
}

// WatchSession adds a watcher acknowledgement.
func (f *Facade) WatchSession(ctx context.Context, id, watcherID string) (*sessiondomain.Session, error) {
	return f.sessions.Watch(id, watcherID)
}

// ResponderOnTheWay records a responder commitment with an ETA.
func (f *Facade) ResponderOnTheWay(ctx context.Context, id, responderID string, eta time.Duration) (*sessiondomain.Session, error) {
	return f.sessions.OnTheWay(id, responderID, eta)
}

// PostSessionMessage appends a message to the session log.
func (f *Facade) PostSessionMessage(ctx context.Context, id, authorID, body string) (*sessiondomain.Session, error) {
	return f.sessions.PostMessage(id, authorID, body)
}

// EscalateSession forces a session to urgent.
func (f *Facade) EscalateSession(ctx context.Context, id, operatorID string) (*sessiondomain.Session, error) {
	s, changed, err := f.sessions.Escalate(id)
	if err != nil {
		return nil, err
	}
	if changed {
		f.emit(ctx, events.TypeStatusChanged, "session", s.ID, operatorID, map[string]string{
			"status": string(s.Status), "reason": string(sessiondomain.UrgentEscalated),
		})
	}
	return s, nil
}

// CheckInSession resets a FriendWalk check-in deadline.
func (f *Facade) CheckInSession(ctx context.Context, id string) (*sessiondomain.Session, error) {
	return f.sessions.CheckIn(id)
}

// EndSession resolves a session, archives it and drops it from the registry.
// Archival is best-effort: on store failure the resolved session stays in the
// registry until a later EndSession retry finds it terminal.
func (f *Facade) EndSession(ctx context.Context, id, reason, actorID string) (*sessiondomain.Session, error) {
	s, err := f.sessions.End(id, reason)
	if err != nil {
		return nil, err
	}
	f.emit(ctx, events.TypeStatusChanged, "session", s.ID, actorID, map[string]string{
		"status": string(s.Status), "reason": reason,
	})
	if f.stores.Sessions != nil {
		if err := f.stores.Sessions.Archive(ctx, s); err != nil {
			log.Printf("dispatch: archive session %s: %v", s.ID, err)
			return s, nil
		}
	}
	f.sessions.Remove(s.ID)
	return s, nil
}

// GetSession returns a copy of a live session.
func (f *Facade) GetSession(id string) (*sessiondomain.Session, error) {
	return f.sessions.Get(id)
}

// ListSessions returns copies of all live sessions.
func (f *Facade) ListSessions() []*sessiondomain.Session {
	return f.sessions.List()
}

// --- reports ---

// SubmitReport validates, routes and stores a new incident report.
func (f *Facade) SubmitReport(ctx context.Context, sub reportengine.Submission) (*reportdomain.Report, error) {
	r, err := f.reports.Submit(sub)
	if err != nil {
		return nil, err
	}
	f.saveReport(ctx, r)
	f.emit(ctx, events.TypeReportCreated, "report", r.ID, r.ReporterID, map[string]string{
		"category": string(r.Category), "team": string(r.RoutedTo), "priority": string(r.Priority),
	})
	return r, nil
}

// AcknowledgeReport moves an open report to acknowledged.
func (f *Facade) AcknowledgeReport(ctx context.Context, id, operatorID string) (*reportdomain.Report, error) {
	r, changed, err := f.reports.Acknowledge(id)
	if err != nil {
		return nil, err
	}
	if changed {
		f.saveReport(ctx, r)
		f.emit(ctx, events.TypeStatusChanged, "report", r.ID, operatorID, map[string]string{
			"status": string(r.Status),
		})
	}
	return r, nil
}

// AssignReport assigns a report, implicitly acknowledging it if still open.
func (f *Facade) AssignReport(ctx context.Context, id, assignee, operatorID string) (*reportdomain.Report, error) {
	r, err := f.reports.Assign(id, assignee)
	if err != nil {
		return nil, err
	}
	f.saveReport(ctx, r)
	f.emit(ctx, events.TypeStatusChanged, "report", r.ID, operatorID, map[string]string{
		"status": string(r.Status), "assignee": assignee,
	})
	return r, nil
}

// ResolveReport moves a report to resolved.
func (f *Facade) ResolveReport(ctx context.Context, id, operatorID string) (*reportdomain.Report, error) {
	r, err := f.reports.Resolve(id)
	if err != nil {
		return nil, err
	}
	f.saveReport(ctx, r)
	f.emit(ctx, events.TypeStatusChanged, "report", r.ID, operatorID, map[string]string{
		"status": string(r.Status),
	})
	return r, nil
}

// GetReport returns a copy of a report.
func (f *Facade) GetReport(id string) (*reportdomain.Report, error) {
	return f.reports.Get(id)
}

// ListReports returns reports matching the filter.
func (f *Facade) ListReports(filter reportengine.Filter) []*reportdomain.Report {
	return f.reports.List(filter)
}

func (f *Facade) saveReport(ctx context.Context, r *reportdomain.Report) {
	if f.stores.Reports == nil {
		return
	}
	if err := f.stores.Reports.Save(ctx, r); err != nil {
		log.Printf("dispatch: save report %s: %v", r.ID, err)
	}
}

// --- community ---

// CreatePost adds a community post eligible for escalation.
func (f *Facade) CreatePost(ctx context.Context, sub communityengine.Submission) (*communitydomain.Post, error) {
	p, err := f.community.Create(sub)
	if err != nil {
		return nil, err
	}
	f.savePost(ctx, p)
	return p, nil
}

// VotePost records a vote. When the vote crosses the escalation threshold the
// post is committed as escalated first, then an anonymous report is created
// through the triage engine; if that second step fails the error is an
// *EscalationPartialFailure and the tally stands.
func (f *Facade) VotePost(ctx context.Context, postID, voterID string, dir communitydomain.Direction) (*communitydomain.Post, error) {
	p, escalated, err := f.community.Vote(postID, voterID, dir)
	if err != nil {
		return nil, err
	}
	f.savePost(ctx, p)
	if !escalated {
		return p, nil
	}

	f.emit(ctx, events.TypePostEscalated, "post", p.ID, voterID, map[string]string{
		"category": string(p.Category), "threshold": "reached",
	})
	return f.createEscalationReport(ctx, p.ID)
}

// RetryEscalationReport retries the report-creation half of an escalation
// that previously failed.
func (f *Facade) RetryEscalationReport(ctx context.Context, postID string) (*communitydomain.Post, error) {
	return f.createEscalationReport(ctx, postID)
}

// escalationLock returns the mutex serializing report creation for one post.
func (f *Facade) escalationLock(postID string) *sync.Mutex {
	f.escMu.Lock()
	defer f.escMu.Unlock()
	l, ok := f.escLocks[postID]
	if !ok {
		l = &sync.Mutex{}
		f.escLocks[postID] = l
	}
	return l
}

// createEscalationReport performs the cross-engine half of an escalation. The
// post is already committed as escalated when this runs. Report creation is
// serialized per post and the attachment re-checked under the lock, so a
// retry racing another retry (or the vote path) submits at most one report.
func (f *Facade) createEscalationReport(ctx context.Context, postID string) (*communitydomain.Post, error) {
	lock := f.escalationLock(postID)
	lock.Lock()
	defer lock.Unlock()

	p, err := f.community.Get(postID)
	if err != nil {
		return nil, err
	}
	if p.EscalationStatus != communitydomain.EscalationEscalated {
		return nil, communityengine.ErrNotEscalated
	}
	if p.ReportID != "" {
		return p, nil
	}

	r, err := f.reports.Submit(reportengine.Submission{
		Category:  p.Category,
		Summary:   p.Content,
		Location:  p.Location,
		Anonymous: true,
	})
	if err != nil {
		return p, &EscalationPartialFailure{PostID: p.ID, Err: err}
	}
	f.saveReport(ctx, r)
	f.emit(ctx, events.TypeReportCreated, "report", r.ID, "", map[string]string{
		"category": string(r.Category), "team": string(r.RoutedTo), "source_post": p.ID,
	})

	attached, err := f.community.AttachReport(p.ID, r.ID)
	if err != nil {
		// The report exists; only the back-reference failed.
		return p, &EscalationPartialFailure{PostID: p.ID, Err: err}
	}
	f.savePost(ctx, attached)
	return attached, nil
}

// RejectPost settles a post as rejected by moderator action.
func (f *Facade) RejectPost(ctx context.Context, postID, moderatorID string) (*communitydomain.Post, error) {
	p, err := f.community.Reject(postID)
	if err != nil {
		return nil, err
	}
	f.savePost(ctx, p)
	f.emit(ctx, events.TypeStatusChanged, "post", p.ID, moderatorID, map[string]string{
		"escalationStatus": string(p.EscalationStatus),
	})
	return p, nil
}

// GetPost returns a copy of a post.
func (f *Facade) GetPost(id string) (*communitydomain.Post, error) {
	return f.community.Get(id)
}

func (f *Facade) savePost(ctx context.Context, p *communitydomain.Post) {
	if f.stores.Posts == nil {
		return
	}
	if err := f.stores.Posts.Save(ctx, p); err != nil {
		log.Printf("dispatch: save post %s: %v", p.ID, err)
	}
}

// --- broadcasts ---

// PreviewAudience resolves the audience without issuing anything. The
// preview-then-commit pair replaces any confirm dialog a caller might need.
func (f *Facade) PreviewAudience(ctx context.Context, center geo.Point, radiusM float64) ([]string, error) {
	return f.broadcasts.ResolveAudience(ctx, center, radiusM)
}

// IssueBroadcast resolves the audience and commits an immutable broadcast.
func (f *Facade) IssueBroadcast(ctx context.Context, req broadcastengine.Request) (*broadcastdomain.Broadcast, error) {
	b, err := f.broadcasts.Issue(ctx, req)
	if err != nil {
		return nil, err
	}
	if f.stores.Broadcasts != nil {
		if err := f.stores.Broadcasts.Save(ctx, b); err != nil {
			log.Printf("dispatch: save broadcast %s: %v", b.ID, err)
		}
	}
	f.emit(ctx, events.TypeBroadcastIssued, "broadcast", b.ID, req.IssuedBy, map[string]string{
		"recipients": "resolved",
	})
	return b, nil
}

// GetBroadcast returns a copy of an issued broadcast.
func (f *Facade) GetBroadcast(id string) (*broadcastdomain.Broadcast, error) {
	return f.broadcasts.Get(id)
}

// ListBroadcasts returns copies of all issued broadcasts.
func (f *Facade) ListBroadcasts() []*broadcastdomain.Broadcast {
	return f.broadcasts.List()
}
