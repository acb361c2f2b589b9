package sync

import "errors"

var (
	// ErrNetwork indicates the origin could not be reached at all.
	ErrNetwork = errors.New("sync: origin unreachable")
)
