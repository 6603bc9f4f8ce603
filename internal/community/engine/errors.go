package engine

import "errors"

var (
	ErrNotFound         = errors.New("post not found")
	ErrInvalidDirection = errors.New("unknown vote direction")
	ErrUnknownCategory  = errors.New("unknown post category")
	ErrEmptyContent     = errors.New("post content is empty")
	ErrInvalidLocation  = errors.New("post location out of range")
	ErrAlreadySettled   = errors.New("escalation already settled")
	ErrReportAttached   = errors.New("post already has a report")
	ErrNotEscalated     = errors.New("post is not escalated")
)
