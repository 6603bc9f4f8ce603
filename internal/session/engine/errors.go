package engine

import "errors"

// Sentinel errors for the session registry; handlers map them to HTTP codes.
// Validation and state-conflict failures reject synchronously with nothing mutated.
var (
	ErrNotFound               = errors.New("session not found")
	ErrDuplicateActiveSession = errors.New("requester already has an active session of this kind")
	ErrStaleUpdate            = errors.New("position update is not newer than the recorded position")
	ErrWrongSessionKind       = errors.New("operation not valid for this session kind")
	ErrAlreadyResolved        = errors.New("session already resolved")
	ErrTerminalState          = errors.New("session is in a terminal state")
	ErrWatcherIsOwner         = errors.New("session owner cannot watch their own session")
	ErrInvalidPosition        = errors.New("position coordinates out of range")
	ErrInvalidKind            = errors.New("unknown session kind")
)
