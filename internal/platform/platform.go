// Package platform provides positional file I/O for range-based copying.
package platform

import (
	"fmt"
	"os"
)

// CopyMethod identifies which syscall/strategy was used for a copy.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	CopyFileRange            // Linux copy_file_range(2)
	IOURing                  // Linux io_uring
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	case IOURing:
		return "io_uring"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a range copy.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// RangeParams describes one worker's byte range [Start, End). Src and Dst
// are handles shared by all workers; only positional I/O is issued on them,
// so no locking of the data path is needed for disjoint ranges.
type RangeParams struct {
	Src      *os.File // shared read-only source handle
	Dst      *os.File // shared write-only destination handle
	Start    int64
	End      int64
	Progress func(n int) // invoked after each transferred chunk; may be nil
}

// ShortReadError reports a positional read that returned zero bytes before
// the end of its range. It signals source truncation or concurrent
// modification during the copy.
type ShortReadError struct {
	Offset int64
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("short read: unexpected EOF at offset %d", e.Offset)
}
