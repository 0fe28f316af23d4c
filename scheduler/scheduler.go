// Package scheduler implements the deadline-budgeted incremental build
// scheduler: given an ordered target list of visible items it invokes each
// item's build operation, writing artifacts to the result store, and stops
// every batch at a per-tick item cap or wall-clock budget, whichever comes
// first. State is retained across ticks, so a partially built target list
// resumes where it left off when the scheduler is re-invoked.
//
// The scheduler is single-threaded and cooperative by contract: it returns
// control at the end of every batch and the external driver re-invokes it on
// the next tick.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/time/rate"
)

var (
	// ErrInvalidBudget is returned when the per-tick budget is not positive.
	ErrInvalidBudget = errors.New("scheduler: tick budget must be positive")
	// ErrInvalidBatchSize is returned when the per-tick item cap is not positive.
	ErrInvalidBatchSize = errors.New("scheduler: max builds per tick must be positive")
	// ErrNilStore is returned when no artifact store is supplied.
	ErrNilStore = errors.New("scheduler: store must not be nil")
)

// State is the scheduler's lifecycle state.
type State uint8

const (
	// StateIdle means the current target list is fully processed.
	StateIdle State = iota
	// StateBuilding means unprocessed target items remain.
	StateBuilding
)

func (s State) String() string {
	if s == StateBuilding {
		return "building"
	}
	return "idle"
}

// Job is one build target: a stable identity plus the opaque, possibly
// expensive build operation supplied by the caller.
type Job[A any] struct {
	ID    uint64
	Build func(context.Context) (A, error)
}

// Store is where finished artifacts go. The scheduler also consults it for
// carry-over: a previously built item whose artifact was evicted must be
// rebuilt.
type Store[A any] interface {
	Put(key uint64, artifact A)
	Contains(key uint64) bool
}

// Config tunes the per-tick batch bounds.
type Config struct {
	// MaxBuildsPerTick caps the number of build operations per batch.
	MaxBuildsPerTick int
	// TickBudget caps the wall-clock time of one batch. There is no timeout
	// on an individual build; the budget is the aggregate deadline.
	TickBudget time.Duration
	// Limiter optionally bounds the global build rate across ticks. Builds
	// denied by the limiter are deferred to the next batch, not dropped.
	Limiter *rate.Limiter
	// Logger receives per-item build failures. Defaults to slog.Default().
	Logger *slog.Logger
	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

// Batch reports the outcome of one RunBatch call.
type Batch struct {
	// Built is the number of build operations that succeeded this batch.
	Built int
	// Failed is the number of build operations that returned an error and
	// were skipped.
	Failed int
	// Total is the length of the current target list.
	Total int
	// Duration is the wall-clock time the batch took.
	Duration time.Duration
	// Done reports whether the target list is fully processed.
	Done bool
}

// Scheduler incrementally builds the current target list. Not safe for
// concurrent use; the engine drives it from a single tick loop.
type Scheduler[A any] struct {
	cfg   Config
	store Store[A]

	state  State
	target []Job[A]
	cursor int
	built  *roaring64.Bitmap
}

// New creates a scheduler writing artifacts into store.
func New[A any](store Store[A], cfg Config) (*Scheduler[A], error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if cfg.MaxBuildsPerTick <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, cfg.MaxBuildsPerTick)
	}
	if cfg.TickBudget <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidBudget, cfg.TickBudget)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler[A]{
		cfg:   cfg,
		store: store,
		built: roaring64.New(),
	}, nil
}

// State returns the current lifecycle state.
func (s *Scheduler[A]) State() State { return s.state }

// Cursor returns how many target entries have been processed.
func (s *Scheduler[A]) Cursor() int { return s.cursor }

// TargetLen returns the length of the current target list.
func (s *Scheduler[A]) TargetLen() int { return len(s.target) }

// Built reports whether the item was built under the current target and its
// artifact is still in the store.
func (s *Scheduler[A]) Built(id uint64) bool {
	return s.built.Contains(id) && s.store.Contains(id)
}

// SetTarget replaces the target list, discarding the unprocessed remainder
// of the previous one, and resets the cursor. Items that were already built
// under the previous target and whose artifacts are still stored carry over:
// they are pre-marked built and never rebuilt.
func (s *Scheduler[A]) SetTarget(jobs []Job[A]) {
	carried := roaring64.New()
	for _, j := range jobs {
		if s.built.Contains(j.ID) && s.store.Contains(j.ID) {
			carried.Add(j.ID)
		}
	}

	s.target = jobs
	s.cursor = 0
	s.built = carried

	if len(jobs) == 0 {
		s.state = StateIdle
		return
	}
	s.state = StateBuilding
}

// Invalidate drops all built status, forcing a full rebuild of whatever
// target arrives next. The engine calls it when the zoom changes and the
// stored artifacts become stale wholesale.
func (s *Scheduler[A]) Invalidate() {
	s.built.Clear()
	s.cursor = 0
	if len(s.target) > 0 {
		s.state = StateBuilding
	}
}

// RunBatch processes target items from the cursor forward, in target-list
// order, until the per-tick item cap is reached or the wall-clock budget is
// exhausted. Already-built carried-over items are skipped without counting
// against the cap. A failing build is logged and skipped for this target;
// it is retried the next time a target containing it is set. RunBatch never
// returns an error: per-item failures are not fatal to the engine.
func (s *Scheduler[A]) RunBatch(ctx context.Context) Batch {
	if s.state != StateBuilding {
		return Batch{Total: len(s.target), Done: true}
	}

	start := s.cfg.Now()
	var built, failed int

	for s.cursor < len(s.target) {
		if built >= s.cfg.MaxBuildsPerTick {
			break
		}
		if s.cfg.Now().Sub(start) >= s.cfg.TickBudget {
			break
		}

		job := s.target[s.cursor]
		if s.built.Contains(job.ID) && s.store.Contains(job.ID) {
			s.cursor++
			continue
		}
		if s.cfg.Limiter != nil && !s.cfg.Limiter.Allow() {
			break
		}

		artifact, err := job.Build(ctx)
		s.cursor++
		if err != nil {
			failed++
			s.cfg.Logger.Warn("build failed, skipping item",
				"id", job.ID,
				"error", err,
			)
			continue
		}

		s.store.Put(job.ID, artifact)
		s.built.Add(job.ID)
		built++
	}

	if s.cursor >= len(s.target) {
		s.state = StateIdle
	}

	return Batch{
		Built:    built,
		Failed:   failed,
		Total:    len(s.target),
		Duration: s.cfg.Now().Sub(start),
		Done:     s.state == StateIdle,
	}
}
