package events

import "time"

// ValidationStart is emitted before analyzing a document.
type ValidationStart struct {
	Query         string
	OperationName string
}

// ValidationFinish is emitted after analyzing a document.
type ValidationFinish struct {
	Query         string
	OperationName string
	Valid         bool
	Rules         []string
	Duration      time.Duration
}

// SchemaReload is emitted when the served schema is swapped at runtime.
type SchemaReload struct {
	Source string
	Err    error
}
