package riot

import (
	"errors"
	"fmt"
)

var (
	ErrLocalArtifactMissing = errors.New("local artifact missing")
	ErrMissingEnvironment   = fmt.Errorf("%w: local data directory is not set", ErrLocalArtifactMissing)
	ErrParse                = errors.New("parse error")
	ErrUpstreamData         = errors.New("upstream data error")
	ErrAuthExchange         = errors.New("auth exchange failed")
	ErrProgressNotFound     = errors.New("battlepass progress not found")
	ErrSeasonNotFound       = errors.New("active act not found")
)

// StatusError is returned for non-2xx responses. It matches ErrUpstreamData.
type StatusError struct {
	Method string
	URL    string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUpstreamData
}
