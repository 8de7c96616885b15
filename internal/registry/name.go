package registry

import (
	"fmt"
	"strings"
)

const (
	// Separator splits a parameter name into hierarchy levels.
	Separator = "/"

	// MaxDirDepth is the maximum number of segments in a parameter name.
	MaxDirDepth = 8

	// MaxDirNameLen is the maximum length of a single segment.
	MaxDirNameLen = 64

	// MaxValLen is the maximum length of a value in its string form.
	MaxValLen = 64

	// MaxNameLen is the maximum length of a full parameter name.
	MaxNameLen = MaxDirNameLen*MaxDirDepth + (MaxDirDepth - 1)
)

// ParseName splits a hierarchical parameter name into its segments.
// "app/id/serial" yields ["app", "id", "serial"].
//
// Empty segments ("app//id", "app/", "") are rejected with an invalid-format
// error rather than passed on as empty strings.
func ParseName(name string) ([]string, error) {
	const op = "parse name"

	if len(name) > MaxNameLen {
		return nil, NewOverflowError(op, fmt.Sprintf("name of %d bytes exceeds %d", len(name), MaxNameLen))
	}

	segments := strings.Split(name, Separator)
	if len(segments) > MaxDirDepth {
		return nil, NewOverflowError(op, fmt.Sprintf("%d levels exceed maximum depth %d", len(segments), MaxDirDepth))
	}

	for i, seg := range segments {
		if seg == "" {
			return nil, &Error{Kind: KindInvalidFormat, Op: op, Name: name, Message: fmt.Sprintf("empty segment at level %d", i)}
		}
		if len(seg) > MaxDirNameLen {
			return nil, &Error{Kind: KindOverflow, Op: op, Name: name, Message: fmt.Sprintf("segment %d longer than %d bytes", i, MaxDirNameLen)}
		}
	}

	return segments, nil
}

// JoinName builds a parameter name from its segments.
func JoinName(segments ...string) string {
	return strings.Join(segments, Separator)
}
