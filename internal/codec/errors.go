package codec

import "fmt"

// MalformedIndexError reports corrupt, truncated, or structurally
// inconsistent snapshot data. The decoder never applies a partial snapshot.
type MalformedIndexError struct {
	Reason string
	cause  error
}

func (e *MalformedIndexError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("malformed index: %s: %v", e.Reason, e.cause)
	}
	return "malformed index: " + e.Reason
}

func (e *MalformedIndexError) Unwrap() error { return e.cause }

// UnsupportedVersionError reports a snapshot written by an incompatible
// builder version.
type UnsupportedVersionError struct {
	Got       uint32
	Supported uint32
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported index format version %d (supported: %d)", e.Got, e.Supported)
}
