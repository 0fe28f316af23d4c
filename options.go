package cullgo

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/cullgo/cullgo/lod"
	"github.com/cullgo/cullgo/quadtree"
)

// Defaults for engine configuration. Every knob has a documented default so
// a zero-option New is a working engine.
const (
	// DefaultMinZoom / DefaultMaxZoom bound the zoom factor in screen
	// pixels per world unit.
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 8.0

	// DefaultCacheCapacity is the result cache size in entries.
	DefaultCacheCapacity = 1024

	// DefaultMaxBuildsPerTick caps build operations per tick.
	DefaultMaxBuildsPerTick = 16

	// DefaultTickBudget caps the wall-clock time of one build batch.
	DefaultTickBudget = 8 * time.Millisecond
)

type options struct {
	logger           *Logger
	metrics          MetricsCollector
	minZoom          float64
	maxZoom          float64
	quadtree         quadtree.Config
	lod              lod.Config
	cacheCapacity    int
	maxBuildsPerTick int
	tickBudget       time.Duration
	limiter          *rate.Limiter
	now              func() time.Time
}

// Option configures engine construction.
type Option func(*options)

// WithLogger configures structured logging for engine operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &cullgo.BasicMetricsCollector{}
//	eng, _ := cullgo.New[string](cullgo.WithMetricsCollector(metrics))
//	// ... drive ticks ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithZoomBounds sets the zoom clamp range. Zoom operations saturate at the
// bounds; a saturated zoom is a no-op and triggers no invalidation.
// Defaults: [0.1, 8].
func WithZoomBounds(minZoom, maxZoom float64) Option {
	return func(o *options) {
		o.minZoom = minZoom
		o.maxZoom = maxZoom
	}
}

// WithQuadtree tunes the spatial index subdivision policy.
// Defaults: 8 items per node, depth 8.
func WithQuadtree(cfg quadtree.Config) Option {
	return func(o *options) {
		o.quadtree = cfg
	}
}

// WithLOD tunes the level-of-detail reducer.
// Defaults: 64px cluster threshold, size cutoff 5, minimum 8 candidates,
// zoom threshold 0.5.
func WithLOD(cfg lod.Config) Option {
	return func(o *options) {
		o.lod = cfg
	}
}

// WithCacheCapacity sets the result cache size in entries. Default: 1024.
func WithCacheCapacity(capacity int) Option {
	return func(o *options) {
		o.cacheCapacity = capacity
	}
}

// WithBudget bounds one tick's build batch: at most maxBuildsPerTick build
// operations and at most tickBudget of wall-clock time, whichever comes
// first. Defaults: 16 builds, 8ms.
func WithBudget(maxBuildsPerTick int, tickBudget time.Duration) Option {
	return func(o *options) {
		o.maxBuildsPerTick = maxBuildsPerTick
		o.tickBudget = tickBudget
	}
}

// WithBuildRateLimit additionally bounds the global build rate across ticks
// (token bucket: sustained builds per second plus burst). Builds denied by
// the limiter are deferred to the next tick. Disabled by default.
func WithBuildRateLimit(perSecond rate.Limit, burst int) Option {
	return func(o *options) {
		o.limiter = rate.NewLimiter(perSecond, burst)
	}
}

// WithClock overrides the engine clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metrics:          NoopMetricsCollector{},
		minZoom:          DefaultMinZoom,
		maxZoom:          DefaultMaxZoom,
		quadtree:         quadtree.DefaultConfig,
		lod:              lod.DefaultConfig,
		cacheCapacity:    DefaultCacheCapacity,
		maxBuildsPerTick: DefaultMaxBuildsPerTick,
		tickBudget:       DefaultTickBudget,
		now:              time.Now,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
