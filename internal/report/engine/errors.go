package engine

import "errors"

var (
	ErrNotFound        = errors.New("report not found")
	ErrUnknownCategory = errors.New("unknown report category")
	ErrEmptySummary    = errors.New("report summary is empty")
	ErrInvalidLocation = errors.New("report location out of range")
	ErrMissingAssignee = errors.New("assignee is required")
	ErrTerminalState   = errors.New("report is resolved")
	ErrIncompleteTable = errors.New("routing table does not cover every category")
)
