package source

import "errors"

// Sentinel kinds for provider API errors.
var (
	ErrSourceAPI = errors.New("source API request failed")
)
