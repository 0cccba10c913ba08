package staging

import "errors"

// Sentinel kinds for staging errors.
var (
	ErrReadStaging  = errors.New("read staging table failed")
	ErrWriteStaging = errors.New("write staging table failed")
)
