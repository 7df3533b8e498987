package apm

import "errors"

var (
	ErrRequestFailed = errors.New("apm request failed")
	ErrTraceNotFound = errors.New("trace not found")
	ErrRateLimited   = errors.New("rate limit exceeded")
)
