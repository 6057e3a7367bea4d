package circuitbreaker

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// ErrOpen is returned without calling fn while the breaker is open or the
// half-open probe quota is used up.
var ErrOpen = errors.New("circuit breaker is open")

type Settings struct {
	Name string
	// MaxFailures consecutive failures trip the breaker.
	MaxFailures int
	// Interval clears the failure count while closed; zero never clears it.
	Interval time.Duration
	// Timeout is how long the breaker stays open before a probe is allowed.
	Timeout time.Duration
}

type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	maxFailures := settings.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}
	return &CircuitBreaker{
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        settings.Name,
			MaxRequests: 1,
			Interval:    settings.Interval,
			Timeout:     settings.Timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= uint32(maxFailures)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		}),
	}
}

func (c *CircuitBreaker) Execute(fn func() error) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrOpen
	}
	return err
}

// State is one of "closed", "half-open" or "open".
func (c *CircuitBreaker) State() string {
	return c.cb.State().String()
}
