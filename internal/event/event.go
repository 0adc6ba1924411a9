// Package event defines the progress event stream from the engine to the UI.
package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	CopyStarted Type = iota + 1
	Progress
	RangeCompleted
	FileCompleted
	FileFailed
	DirCreated
	VerifyStarted
	VerifyOK
	VerifyFailed
)

var typeNames = [...]string{
	CopyStarted:    "CopyStarted",
	Progress:       "Progress",
	RangeCompleted: "RangeCompleted",
	FileCompleted:  "FileCompleted",
	FileFailed:     "FileFailed",
	DirCreated:     "DirCreated",
	VerifyStarted:  "VerifyStarted",
	VerifyOK:       "VerifyOK",
	VerifyFailed:   "VerifyFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	JobID     string
	Path      string
	Bytes     int64 // bytes copied so far (Progress) or file size (FileCompleted)
	Total     int64 // total bytes for the job
	Offset    int64 // first mismatching byte (VerifyFailed)
	Error     error
	Worker    int
}
