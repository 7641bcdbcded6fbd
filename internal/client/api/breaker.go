package api

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/zootrail/zootrail/internal/logging"
)

// Breaker thresholds: trip when at least half of a minimum sample of
// requests failed at the transport level within the interval.
const (
	breakerInterval     = 60 * time.Second
	breakerOpenTimeout  = 30 * time.Second
	breakerMinRequests  = 5
	breakerFailureRatio = 0.5
)

// newBreaker builds the circuit breaker wrapped around every outbound call.
// Only transport failures count against it; a served 4xx/5xx is still a
// served response.
func newBreaker(name string, log logging.Logger) *gobreaker.CircuitBreaker[*CallResult] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    breakerInterval,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= breakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "circuit breaker state change",
				"name", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[*CallResult](settings)
}
