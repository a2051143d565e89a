package ratelimit

import "errors"

// ErrRateLimited is returned when a bucket has no tokens left for the call.
var ErrRateLimited = errors.New("rate limited")
