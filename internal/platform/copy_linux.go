//go:build linux

package platform

import (
	"context"
	"os"

	"golang.org/x/sys/unix"
)

// CopyRange copies one byte range using copy_file_range(2) when the kernel
// and filesystems support it, falling back to pread/pwrite. The fallback
// resumes from wherever the fast path stopped; positional writes make the
// retry safe.
func CopyRange(ctx context.Context, params RangeParams) (CopyResult, error) {
	result, err := copyRangeFileRange(ctx, params)
	if err == nil || !isFallbackErr(err) {
		return result, err
	}

	rest := params
	rest.Start = params.Start + result.BytesWritten
	rwResult, rwErr := copyRangeReadWrite(ctx, rest)
	rwResult.BytesWritten += result.BytesWritten
	return rwResult, rwErr
}

// copyRangeFileRange drives copy_file_range in bufferSize chunks so that
// progress reporting keeps the same granularity as the read/write path.
func copyRangeFileRange(ctx context.Context, params RangeParams) (CopyResult, error) {
	srcRawFd := int(params.Src.Fd())
	dstRawFd := int(params.Dst.Fd())

	roff := params.Start
	woff := params.Start
	remaining := params.End - params.Start
	var total int64

	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return CopyResult{BytesWritten: total, Method: CopyFileRange}, err
		}

		chunk := remaining
		if chunk > bufferSize {
			chunk = bufferSize
		}

		n, err := unix.CopyFileRange(srcRawFd, &roff, dstRawFd, &woff, int(chunk), 0)
		if err != nil {
			return CopyResult{BytesWritten: total, Method: CopyFileRange}, err
		}
		if n == 0 {
			return CopyResult{BytesWritten: total, Method: CopyFileRange}, &ShortReadError{Offset: roff}
		}

		remaining -= int64(n)
		total += int64(n)
		if params.Progress != nil {
			params.Progress(n)
		}
	}

	return CopyResult{BytesWritten: total, Method: CopyFileRange}, nil
}

// isFallbackErr returns true if err should trigger a fallback to the
// read/write copy strategy.
func isFallbackErr(err error) bool {
	switch err {
	case unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP:
		return true
	}
	if e, ok := err.(*os.PathError); ok {
		return isFallbackErr(e.Err)
	}
	return false
}
