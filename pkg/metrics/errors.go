package metrics

import (
	"errors"
)

// ErrUnknownLabel is returned when an outcome has no severity mapping.
var ErrUnknownLabel = errors.New("metrics label not recognised")
