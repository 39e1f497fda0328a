package events

import "time"

// BatchStart is emitted when a batch invocation begins.
type BatchStart struct {
	QueryCount int
}

// BatchFinish is emitted when a batch invocation completes, on either branch.
type BatchFinish struct {
	QueryCount int
	ErrorCount int
	Duration   time.Duration
}

// QueryStart is emitted before evaluating one query of a batch.
type QueryStart struct {
	Index int
	Query string
}

// QueryFinish is emitted after evaluating one query of a batch.
type QueryFinish struct {
	Index    int
	Err      error
	Duration time.Duration
}
