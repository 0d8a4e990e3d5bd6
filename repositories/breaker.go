package repositories

import (
	"errors"
	"time"

	"taskflow/backend/authz"
	"taskflow/backend/logging"

	"github.com/sony/gobreaker"
)

// NewMongoBreaker builds the circuit breaker the Mongo repositories share.
// Business outcomes (absent documents) are not failures; only infrastructure
// errors count toward tripping.
func NewMongoBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "MongoCB",
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, authz.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
}

// execute runs fn through the breaker when one is configured, passing the
// result through untouched otherwise.
func execute(cb *gobreaker.CircuitBreaker, fn func() (interface{}, error)) (interface{}, error) {
	if cb == nil {
		return fn()
	}
	return cb.Execute(fn)
}
