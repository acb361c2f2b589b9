package repository

import "errors"

// Sentinel kinds for outcome log errors.
var (
	ErrInvalidRecord = errors.New("invalid outcome record")
	ErrUnknownDriver = errors.New("unknown database driver")
)
