//go:build !linux

package platform

import "context"

// CopyRange falls back to pread/pwrite on platforms without
// copy_file_range.
func CopyRange(ctx context.Context, params RangeParams) (CopyResult, error) {
	return copyRangeReadWrite(ctx, params)
}
