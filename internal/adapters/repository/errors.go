package repository

import "errors"

// Sentinel kinds for canonical table errors.
var (
	ErrMergeFailed = errors.New("canonical table merge failed")
)
