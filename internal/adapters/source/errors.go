package source

import "errors"

var (
	// ErrUserNotFound is returned when the prober has no such account.
	ErrUserNotFound = errors.New("user not found")
	// ErrQueryDisabled is returned when the account owner has disabled third-party queries.
	ErrQueryDisabled = errors.New("user has disabled queries")
	// ErrUnavailable is returned for any other failure to obtain the records.
	ErrUnavailable = errors.New("player data unavailable")
	// ErrNoAccount is returned when neither a QQ id nor a username is given.
	ErrNoAccount = errors.New("no account given")
)
