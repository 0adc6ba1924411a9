package platform

import (
	"context"
	"sync"

	"golang.org/x/sys/unix"
)

const bufferSize = 1 << 20 // 1 MiB

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// copyRangeReadWrite copies one byte range using pread/pwrite with a pooled
// buffer. The cursor advances only by bytes actually transferred, and the
// context is checked once per loop iteration.
func copyRangeReadWrite(ctx context.Context, params RangeParams) (CopyResult, error) {
	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp

	srcRawFd := int(params.Src.Fd())
	dstRawFd := int(params.Dst.Fd())

	cursor := params.Start
	var total int64

	for cursor < params.End {
		if err := ctx.Err(); err != nil {
			return CopyResult{BytesWritten: total, Method: ReadWrite}, err
		}

		toRead := params.End - cursor
		if toRead > bufferSize {
			toRead = bufferSize
		}

		n, err := unix.Pread(srcRawFd, buf[:toRead], cursor)
		if err != nil {
			return CopyResult{BytesWritten: total, Method: ReadWrite}, err
		}
		if n == 0 {
			return CopyResult{BytesWritten: total, Method: ReadWrite}, &ShortReadError{Offset: cursor}
		}

		written := 0
		for written < n {
			w, err := unix.Pwrite(dstRawFd, buf[written:n], cursor+int64(written))
			if err != nil {
				return CopyResult{BytesWritten: total + int64(written), Method: ReadWrite}, err
			}
			written += w
		}

		cursor += int64(n)
		total += int64(n)
		if params.Progress != nil {
			params.Progress(n)
		}
	}

	return CopyResult{BytesWritten: total, Method: ReadWrite}, nil
}

// CopyRangeReadWrite is the exported pread/pwrite path, bypassing any
// platform-specific fast path.
func CopyRangeReadWrite(ctx context.Context, params RangeParams) (CopyResult, error) {
	return copyRangeReadWrite(ctx, params)
}
