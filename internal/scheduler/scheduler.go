// Package scheduler re-runs the dispatch pass on a fixed cadence.
//
// The tight cadence repeats a pass every interval until a deadline; the
// daily cadence repeats forever, once every 24 hours or at a pinned cron
// time. A pass that fails or panics is logged as a critical cycle and the
// loop re-arms; only context cancellation or the deadline end a run.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/mrz1836/trickle/internal/metrics"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// Cadence selects how passes are repeated.
type Cadence string

// Supported cadences.
const (
	Tight Cadence = "tight"
	Daily Cadence = "daily"
)

// Default timings.
const (
	DefaultInterval = 10 * time.Minute
	DefaultDuration = 24 * time.Hour
	DefaultCooldown = 60 * time.Second
	DailyInterval   = 24 * time.Hour
)

// Pass runs one full cycle over every account.
type Pass func(ctx context.Context) error

// Config configures a Scheduler.
type Config struct {
	Cadence  Cadence
	Interval time.Duration // tight: pause between passes
	Duration time.Duration // tight: total run length
	Cooldown time.Duration // tight: pause after a critical pass
	At       string        // daily: optional cron expression
	Clock    Clock
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
}

// State is the scheduler's progress. It is passed into and returned from
// Run and never persisted.
type State struct {
	StartedAt   time.Time
	Deadline    time.Time // zero means no deadline
	Cycles      int
	Critical    int
	LastCycleAt time.Time
	NextRunAt   time.Time
	LastErr     error
}

// Scheduler drives a Pass.
type Scheduler struct {
	cfg      Config
	pass     Pass
	next     cron.Schedule
	cooldown cron.Schedule
}

// New validates cfg and returns a scheduler for pass.
func New(cfg Config, pass Pass) (*Scheduler, error) {
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Global
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}

	s := &Scheduler{cfg: cfg, pass: pass, cooldown: fixedDelay(cfg.Cooldown)}

	switch cfg.Cadence {
	case Tight:
		if cfg.Interval <= 0 || cfg.Duration <= 0 {
			return nil, invalid("tight cadence needs a positive interval and duration")
		}
		s.next = fixedDelay(cfg.Interval)
	case Daily:
		s.next = fixedDelay(DailyInterval)
		if cfg.At != "" {
			sched, err := cron.ParseStandard(cfg.At)
			if err != nil {
				return nil, invalid("bad daily schedule: " + err.Error())
			}
			s.next = sched
		}
	default:
		return nil, invalid("unknown cadence " + strconv.Quote(string(cfg.Cadence)))
	}
	return s, nil
}

// NewState returns the initial state for a run starting now. Only the
// tight cadence has a deadline.
func (s *Scheduler) NewState() State {
	st := State{StartedAt: s.cfg.Clock.Now()}
	if s.cfg.Cadence == Tight {
		st.Deadline = st.StartedAt.Add(s.cfg.Duration)
	}
	return st
}

// Run executes passes until ctx is canceled or the deadline is reached.
// A zero st starts a fresh run. The returned error is ctx.Err() or an
// error matching ErrDeadlineReached; pass failures never end the run.
func (s *Scheduler) Run(ctx context.Context, st State) (State, error) {
	if st.StartedAt.IsZero() {
		st = s.NewState()
	}
	log := s.cfg.Logger

	log.Info().
		Str("cadence", string(s.cfg.Cadence)).
		Time("started_at", st.StartedAt).
		Time("deadline", st.Deadline).
		Msg("scheduler started")

	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		now := s.cfg.Clock.Now()
		if s.deadlineReached(st, now) {
			log.Info().Int("cycles", st.Cycles).Msg("deadline reached, stopping")
			return st, trerr.WithDetails(trerr.ErrDeadlineReached, map[string]string{
				"cycles": strconv.Itoa(st.Cycles),
			})
		}

		st.Cycles++
		log.Info().Int("cycle", st.Cycles).Msg("cycle started")
		err := s.runPass(ctx, st.Cycles)
		finished := s.cfg.Clock.Now()
		st.LastCycleAt = finished

		if ctx.Err() != nil {
			return st, ctx.Err()
		}

		critical := err != nil
		st.LastErr = err
		s.cfg.Metrics.RecordCycle(finished, critical)
		if critical {
			st.Critical++
			log.Error().Err(err).Int("cycle", st.Cycles).Msg("critical cycle error, re-arming")
		}

		st.NextRunAt = s.nextRun(st, finished, critical)
		log.Info().
			Time("next_run", st.NextRunAt).
			Dur("wait", st.NextRunAt.Sub(finished)).
			Msg("cycle finished")

		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-s.cfg.Clock.After(st.NextRunAt.Sub(finished)):
		}
	}
}

// runPass calls the pass, turning an escaping error or panic into a
// critical cycle error.
func (s *Scheduler) runPass(ctx context.Context, cycle int) (err error) {
	details := map[string]string{"cycle": strconv.Itoa(cycle)}
	defer func() {
		if r := recover(); r != nil {
			err = trerr.WithDetails(fmt.Errorf("%w: panic: %v", trerr.ErrCriticalCycle, r), details)
		}
	}()

	if err = s.pass(ctx); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return err
		}
		return trerr.WithDetails(fmt.Errorf("%w: %w", trerr.ErrCriticalCycle, err), details)
	}
	return nil
}

// nextRun picks the next start time. Tight runs wait the interval, or the
// cooldown after a critical pass, clipped to the deadline. Daily runs follow
// their schedule regardless of outcome.
func (s *Scheduler) nextRun(st State, now time.Time, critical bool) time.Time {
	if s.cfg.Cadence == Daily {
		return s.next.Next(now)
	}

	sched := s.next
	if critical {
		sched = s.cooldown
	}
	next := sched.Next(now)
	if !st.Deadline.IsZero() && next.After(st.Deadline) {
		next = st.Deadline
	}
	if next.Before(now) {
		next = now
	}
	return next
}

// fixedDelay is a cron.Schedule firing exactly d after the given time.
// cron.Every truncates to whole seconds, which would pull each run up to a
// second early.
type fixedDelay time.Duration

// Next implements cron.Schedule.
func (d fixedDelay) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

func (s *Scheduler) deadlineReached(st State, now time.Time) bool {
	return !st.Deadline.IsZero() && !now.Before(st.Deadline)
}

func invalid(reason string) error {
	return trerr.WithDetails(trerr.ErrConfigInvalid, map[string]string{
		"field":  "schedule",
		"reason": reason,
	})
}
