package asyncfs

import (
	"bytes"
	"strconv"
)

// Compressed files are framed as the decimal ASCII decompressed size, a
// newline, then the compressed block. The header length varies with the
// number of digits; there is no magic number and no checksum.

// frameHeaderLen returns the encoded header length for a payload of n bytes
func frameHeaderLen(n int) int {
	return len(strconv.Itoa(n)) + 1
}

// putFrameHeader writes "<n>\n" at the start of dst and returns the header
// length. dst must hold at least frameHeaderLen(n) bytes.
func putFrameHeader(dst []byte, n int) int {
	s := strconv.AppendInt(dst[:0], int64(n), 10)
	dst[len(s)] = '\n'
	return len(s) + 1
}

// parseFrame splits a framed file into the declared decompressed size and
// the compressed block that follows the header.
func parseFrame(frame []byte) (size int, block []byte, err error) {
	i := bytes.IndexByte(frame, '\n')
	if i <= 0 {
		return 0, nil, ErrCorruptedData
	}
	size, err = strconv.Atoi(string(frame[:i]))
	if err != nil || size < 0 {
		return 0, nil, ErrCorruptedData
	}
	return size, frame[i+1:], nil
}
