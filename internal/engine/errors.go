package engine

import "fmt"

// MismatchError reports the first byte offset at which source and
// destination differ during post-copy verification.
type MismatchError struct {
	Offset int64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("content mismatch at byte offset %d", e.Offset)
}

// ChecksumError reports differing whole-file digests.
type ChecksumError struct {
	SrcSum string
	DstSum string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: source %s destination %s", e.SrcSum, e.DstSum)
}
