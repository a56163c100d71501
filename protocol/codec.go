package protocol

import (
	"strconv"
	"strings"
)

// Delimiter terminates every protocol line.
const Delimiter = "\r\n"

const (
	MarkerSimple = '+'
	MarkerError  = '-'
	MarkerNull   = '_'
	MarkerArray  = '*'
	MarkerBulk   = '$'
)

// EncodeSimple encodes value as a simple string reply. value must not
// contain the delimiter.
func EncodeSimple(value string) string {
	return encodeLine(MarkerSimple, value)
}

// EncodeError encodes message as an error reply.
func EncodeError(message string) string {
	return encodeLine(MarkerError, message)
}

func EncodeNull() string {
	return encodeLine(MarkerNull, "")
}

// DecodeLength parses the integer that follows the marker byte of an array
// (`*`) or bulk string (`$`) header.
//
// It never fails: an empty, non-numeric or negative suffix decodes as 0. In
// particular the conventional null length `-1` is 0 as well, so callers must
// treat 0 as a valid length.
func DecodeLength(token string) int {
	if len(token) < 2 {
		return 0
	}

	n, err := strconv.Atoi(token[1:])
	if err != nil || n < 0 {
		return 0
	}

	return n
}

func encodeLine(marker byte, value string) string {
	var b strings.Builder
	b.Grow(1 + len(value) + len(Delimiter))
	b.WriteByte(marker)
	b.WriteString(value)
	b.WriteString(Delimiter)
	return b.String()
}
