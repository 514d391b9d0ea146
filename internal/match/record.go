package match

import (
	"context"
	"time"
)

// Outcome classifies how a session ended.
type Outcome string

const (
	OutcomeFinished Outcome = "finished"
	OutcomeAborted  Outcome = "aborted"
)

// Record is the durable summary of one session, written after teardown.
type Record struct {
	RunID       string
	Token       string
	ServerImage string
	Clients     []string
	Outcome     Outcome
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
	LogDir      string
}

// Recorder persists session records. A nil Recorder disables history.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}
