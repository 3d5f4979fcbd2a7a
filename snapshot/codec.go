// Package snapshot provides the versioned state codec used to persist
// actor state, and pluggable byte stores that hold one encoded
// snapshot per actor address.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the current snapshot format tag. It is the first byte of
// every encoded snapshot; the remainder is UTF-8 JSON.
const Version byte = 1

// Decode errors. Both are fatal to the actor load path: a snapshot
// that exists but cannot be decoded means the prior state is lost.
var (
	ErrEmptySnapshot  = errors.New("snapshot: empty input")
	ErrUnknownVersion = errors.New("snapshot: unknown version tag")
)

// Encode serializes state as a version-tagged JSON buffer.
func Encode(state interface{}) ([]byte, error) {
	body, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	buf := make([]byte, 0, len(body)+1)
	buf = append(buf, Version)
	buf = append(buf, body...)
	return buf, nil
}

// Decode parses a version-tagged buffer into state. It fails on empty
// input and on an unrecognized version tag.
func Decode(data []byte, state interface{}) error {
	if len(data) == 0 {
		return ErrEmptySnapshot
	}
	if data[0] != Version {
		return fmt.Errorf("%w: %d", ErrUnknownVersion, data[0])
	}
	if err := json.Unmarshal(data[1:], state); err != nil {
		return fmt.Errorf("snapshot: decode: %w", err)
	}
	return nil
}
