package ui

import "github.com/parcp/parcp/internal/event"

// Event is the engine's event type, aliased for presenter signatures.
type Event = event.Event

// Re-export event types for convenience.
const (
	CopyStarted    = event.CopyStarted
	Progress       = event.Progress
	RangeCompleted = event.RangeCompleted
	FileCompleted  = event.FileCompleted
	FileFailed     = event.FileFailed
	DirCreated     = event.DirCreated
	VerifyStarted  = event.VerifyStarted
	VerifyOK       = event.VerifyOK
	VerifyFailed   = event.VerifyFailed
)
