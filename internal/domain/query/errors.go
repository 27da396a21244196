package query

import (
	"errors"
	"fmt"
)

// ErrParse matches every error returned by Parse.
var ErrParse = errors.New("query parse error")

// Parse failure reasons.
const (
	ReasonUnknownArgument   = "unknown argument"
	ReasonMalformed         = "cannot parse argument"
	ReasonUnknownCategory   = "unknown category"
	ReasonUnknownAlias      = "unknown alias"
	ReasonUnknownComparator = "unknown comparator"
)

// ParseError reports a token the parser rejected. Its message is meant to be
// shown to the end user as is.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Token)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func parseError(reason, token string) error {
	return &ParseError{Token: token, Reason: reason}
}
