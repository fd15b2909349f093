package analyses

import "errors"

var (
	ErrNotFound     = errors.New("analysis not found")
	ErrNotAnalyzed  = errors.New("document has no completed analysis")
	ErrInvalidInput = errors.New("invalid input")
	ErrStaleRun     = errors.New("analysis run superseded")
)
