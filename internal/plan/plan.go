// Package plan computes the byte-range partition for a parallel copy.
package plan

// SmallFileThreshold is the size below which a copy always uses a single
// worker; scheduling overhead costs more than concurrency saves on small
// files.
const SmallFileThreshold = 1 << 20 // 1 MiB

// Range is a half-open byte interval [Start, End) of the source and
// destination file, assigned to exactly one worker.
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int64 { return r.End - r.Start }

// Empty reports whether the range covers no bytes.
func (r Range) Empty() bool { return r.Start >= r.End }

// Workers returns the effective worker count for a file of the given size:
// requested clamped to at least 1, and forced to 1 below SmallFileThreshold.
func Workers(size int64, requested int) int {
	if requested < 1 {
		requested = 1
	}
	if size < SmallFileThreshold {
		return 1
	}
	return requested
}

// Partition splits [0, size) into one contiguous range per worker. The
// returned ranges are ordered, pairwise disjoint, and their union is exactly
// [0, size); the final range absorbs the remainder of the integer division.
// A size of zero produces ranges that are all empty.
func Partition(size int64, workers int) []Range {
	workers = Workers(size, workers)

	slice := size / int64(workers)
	ranges := make([]Range, workers)
	for i := 0; i < workers; i++ {
		ranges[i] = Range{Start: int64(i) * slice, End: int64(i+1) * slice}
	}
	ranges[workers-1].End = size
	return ranges
}
