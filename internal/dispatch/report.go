package dispatch

import (
	"time"

	"github.com/rs/zerolog"
)

// CycleReport summarizes one pass over all accounts.
type CycleReport struct {
	StartedAt  time.Time
	FinishedAt time.Time

	Accounts      int // accounts visited
	QueryFailures int // accounts whose balance could not be read
	BelowReserve  int // accounts skipped for low balance

	Confirmed int
	Reverted  int
	Pending   int
	Skipped   int
	Failed    int
	Donations int // donation transfers submitted

	Interrupted bool
	Outcomes    []Outcome
}

// Add records one transfer outcome.
func (r *CycleReport) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusConfirmed:
		r.Confirmed++
	case StatusReverted:
		r.Reverted++
	case StatusPending:
		r.Pending++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
}

// Attempts returns the number of transfer attempts in the pass.
func (r *CycleReport) Attempts() int {
	return len(r.Outcomes)
}

// Submitted returns the number of transfers that reached the network.
func (r *CycleReport) Submitted() int {
	return r.Confirmed + r.Reverted + r.Pending
}

// Duration returns how long the pass took.
func (r *CycleReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r *CycleReport) MarshalZerologObject(e *zerolog.Event) {
	e.Int("accounts", r.Accounts).
		Int("attempts", r.Attempts()).
		Int("submitted", r.Submitted()).
		Int("confirmed", r.Confirmed).
		Int("reverted", r.Reverted).
		Int("pending", r.Pending).
		Int("skipped", r.Skipped).
		Int("failed", r.Failed).
		Int("below_reserve", r.BelowReserve).
		Int("query_failures", r.QueryFailures).
		Dur("duration", r.Duration()).
		Bool("interrupted", r.Interrupted)
}
