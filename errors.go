package cullgo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidViewport is returned when the configured viewport has a
	// non-positive dimension.
	ErrInvalidViewport = errors.New("viewport dimensions must be positive")

	// ErrInvalidCacheCapacity is returned when the result cache capacity is
	// not positive.
	ErrInvalidCacheCapacity = errors.New("cache capacity must be positive")
)

// ErrInvalidZoomBounds indicates a zoom range that does not satisfy
// 0 < min <= max.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidZoomBounds struct {
	Min, Max float64
	cause    error
}

func (e *ErrInvalidZoomBounds) Error() string {
	return fmt.Sprintf("invalid zoom bounds: [%v, %v]", e.Min, e.Max)
}

func (e *ErrInvalidZoomBounds) Unwrap() error { return e.cause }

// ErrInvalidBudget indicates a non-positive tick budget or per-tick build cap.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidBudget struct {
	MaxBuildsPerTick int
	TickBudget       string
	cause            error
}

func (e *ErrInvalidBudget) Error() string {
	return fmt.Sprintf("invalid build budget: max %d builds per tick, budget %s", e.MaxBuildsPerTick, e.TickBudget)
}

func (e *ErrInvalidBudget) Unwrap() error { return e.cause }
