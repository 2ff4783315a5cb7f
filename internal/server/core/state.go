package core

import "golf/internal/server/golf"

// Status summarises how much is known about an instance
type Status int

const (
	StatusUnknown Status = iota // No bounds recorded
	StatusOpen                  // Gap between lower and upper bound
	StatusClosed                // Bounds coincide
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StatusOf derives the status from resolved bounds
func StatusOf(r golf.Resolution) Status {
	switch {
	case r.IsClosed():
		return StatusClosed
	case r.Upper == nil && r.Lower == nil:
		return StatusUnknown
	default:
		return StatusOpen
	}
}
