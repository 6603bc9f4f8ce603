package engine

import "errors"

var (
	ErrNotFound         = errors.New("broadcast not found")
	ErrEmptyMessage     = errors.New("broadcast message is empty")
	ErrInvalidCenter    = errors.New("broadcast center out of range")
	ErrRadiusOutOfRange = errors.New("broadcast radius out of configured bounds")
)
