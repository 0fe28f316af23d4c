// Package driver runs an engine's tick loop on a fixed interval.
//
// The engine itself is single-threaded and tick-driven; it never spawns
// goroutines or owns a clock. Driver supplies the missing piece for hosts
// without a frame callback of their own: it ticks the engine from one
// goroutine and funnels all engine mutations through that same goroutine,
// preserving the engine's single-threaded contract.
package driver

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cullgo/cullgo"
)

var (
	// ErrNilEngine is returned when no engine is supplied.
	ErrNilEngine = errors.New("driver: engine must not be nil")
	// ErrInvalidInterval is returned when the tick interval is not positive.
	ErrInvalidInterval = errors.New("driver: tick interval must be positive")
	// ErrNotRunning is returned by Do when the loop has stopped.
	ErrNotRunning = errors.New("driver: not running")
)

// DefaultInterval is the tick interval used when none is configured,
// roughly one tick per display frame at 60Hz.
const DefaultInterval = 16 * time.Millisecond

// FrameFunc receives every frame the loop produces. It runs on the tick
// goroutine; keep it cheap and check Frame.Changed before repainting.
type FrameFunc[A any] func(cullgo.Frame[A])

// Option configures a Driver.
type Option func(*config)

type config struct {
	interval time.Duration
}

// WithInterval sets the tick interval. Default: 16ms.
func WithInterval(d time.Duration) Option {
	return func(c *config) {
		c.interval = d
	}
}

// Driver ticks an engine on a fixed interval until stopped.
type Driver[A any] struct {
	eng     *cullgo.Engine[A]
	onFrame FrameFunc[A]
	cfg     config

	cmds   chan func(*cullgo.Engine[A])
	cancel context.CancelFunc
	group  *errgroup.Group
	done   chan struct{}
}

// New creates a driver for eng. onFrame may be nil when the caller only
// needs the engine's side effects (artifact builds, evictions).
func New[A any](eng *cullgo.Engine[A], onFrame FrameFunc[A], optFns ...Option) (*Driver[A], error) {
	if eng == nil {
		return nil, ErrNilEngine
	}

	cfg := config{interval: DefaultInterval}
	for _, fn := range optFns {
		if fn != nil {
			fn(&cfg)
		}
	}
	if cfg.interval <= 0 {
		return nil, ErrInvalidInterval
	}

	return &Driver[A]{
		eng:     eng,
		onFrame: onFrame,
		cfg:     cfg,
		cmds:    make(chan func(*cullgo.Engine[A])),
	}, nil
}

// Start launches the tick loop. The loop runs until Stop is called or ctx
// is cancelled.
func (d *Driver[A]) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})

	group, ctx := errgroup.WithContext(ctx)
	d.group = group

	group.Go(func() error {
		defer close(d.done)
		return d.run(ctx)
	})
}

// Stop cancels the loop and waits for the tick goroutine to exit.
func (d *Driver[A]) Stop() error {
	if d.cancel == nil {
		return ErrNotRunning
	}
	d.cancel()
	return d.group.Wait()
}

// Do executes fn on the tick goroutine, serialized with Tick. Use it for
// every engine mutation while the driver is running: camera moves, item
// submissions, viewport changes. It blocks until fn has run.
func (d *Driver[A]) Do(fn func(*cullgo.Engine[A])) error {
	if d.done == nil {
		return ErrNotRunning
	}
	ran := make(chan struct{})
	select {
	case d.cmds <- func(eng *cullgo.Engine[A]) {
		fn(eng)
		close(ran)
	}:
	case <-d.done:
		return ErrNotRunning
	}
	<-ran
	return nil
}

func (d *Driver[A]) run(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-d.cmds:
			fn(d.eng)
		case <-ticker.C:
			frame := d.eng.Tick(ctx)
			if d.onFrame != nil {
				d.onFrame(frame)
			}
		}
	}
}
