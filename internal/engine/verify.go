package engine

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// verifyChunkSize is the streaming comparison chunk. 10 MiB keeps syscall
// counts low without holding much memory.
const verifyChunkSize = 10 << 20

// VerifyContents streams both files in lockstep and compares them byte for
// byte, on handles independent of the ones used for the copy. It returns a
// *MismatchError carrying the exact offset of the first differing byte.
// Reads of unequal length at the same step (one file shorter than the
// other) are a hard verification failure, reported at the offset where the
// shorter side ended.
func VerifyContents(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("verify source: %w", err)
	}
	defer src.Close()

	dst, err := os.Open(dstPath)
	if err != nil {
		return fmt.Errorf("verify destination: %w", err)
	}
	defer dst.Close()

	srcBuf := make([]byte, verifyChunkSize)
	dstBuf := make([]byte, verifyChunkSize)

	var offset int64
	for {
		n1, err := readChunk(src, srcBuf)
		if err != nil {
			return fmt.Errorf("verify read source at %d: %w", offset, err)
		}
		n2, err := readChunk(dst, dstBuf)
		if err != nil {
			return fmt.Errorf("verify read destination at %d: %w", offset, err)
		}

		common := min(n1, n2)
		if !bytes.Equal(srcBuf[:common], dstBuf[:common]) {
			for i := 0; i < common; i++ {
				if srcBuf[i] != dstBuf[i] {
					return &MismatchError{Offset: offset + int64(i)}
				}
			}
		}
		if n1 != n2 {
			return &MismatchError{Offset: offset + int64(common)}
		}
		if n1 == 0 {
			return nil
		}

		offset += int64(n1)
		if n1 < len(srcBuf) {
			return nil // both at EOF
		}
	}
}

// VerifyChecksum compares whole-file BLAKE3 digests of both paths.
func VerifyChecksum(srcPath, dstPath string) error {
	srcSum, err := HashFile(srcPath)
	if err != nil {
		return err
	}
	dstSum, err := HashFile(dstPath)
	if err != nil {
		return err
	}
	if srcSum != dstSum {
		return &ChecksumError{SrcSum: srcSum, DstSum: dstSum}
	}
	return nil
}

// readChunk fills buf as far as the file allows; EOF is not an error.
func readChunk(f *os.File, buf []byte) (int, error) {
	n, err := io.ReadFull(f, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	return n, err
}
