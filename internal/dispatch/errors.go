package dispatch

import "fmt"

// EscalationPartialFailure reports that a post escalated but the official
// report could not be created. The vote tally is committed; callers retry the
// report with RetryEscalationReport, never by re-voting.
type EscalationPartialFailure struct {
	PostID string
	Err    error
}

func (e *EscalationPartialFailure) Error() string {
	return fmt.Sprintf("post %s escalated but report creation failed: %v", e.PostID, e.Err)
}

func (e *EscalationPartialFailure) Unwrap() error { return e.Err }
