package signalflow

import "errors"

var (
	ErrUnknownMetricType  = errors.New("unknown metric type")
	ErrEmptyEnvironment   = errors.New("environment is required")
	ErrUnsafeFilterValue  = errors.New("filter value contains a quote character")
	ErrExecuteFailed      = errors.New("signalflow execute failed")
	ErrAuthenticateFailed = errors.New("signalflow authenticate failed")
	ErrChannelAborted     = errors.New("signalflow channel aborted")
)
