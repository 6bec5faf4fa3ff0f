package pipeline

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

const (
	// sinkFailureThreshold consecutive failures open a sink's circuit.
	sinkFailureThreshold = 3
	// sinkCooldown is how long an open circuit skips the sink before probing it.
	sinkCooldown = time.Minute
)

// guard runs calls to one sink through a circuit breaker, so an unavailable
// bucket or broker is skipped for a while instead of stalling every run.
type guard struct {
	cb *gobreaker.CircuitBreaker
}

func newGuard(name string, logger *slog.Logger) *guard {
	return &guard{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     sinkCooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= sinkFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("sink circuit state changed", "sink", name, "from", from.String(), "to", to.String())
		},
	})}
}

// do calls fn unless the circuit is open, in which case it returns
// gobreaker.ErrOpenState without calling it.
func (g *guard) do(fn func() error) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}
