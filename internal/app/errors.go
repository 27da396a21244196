package service

import "errors"

var (
	// ErrInvalidDifficulty is returned for a difficulty constant outside (0, 20].
	ErrInvalidDifficulty = errors.New("difficulty constant out of range")
	// ErrInvalidAchievement is returned for an achievement outside [0, 101].
	ErrInvalidAchievement = errors.New("achievement out of range")
	// ErrNotStarted is returned when the service is used before Start.
	ErrNotStarted = errors.New("service not started")
)
