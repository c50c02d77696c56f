package router

import (
	"errors"
	"fmt"
	"time"

	"github.com/lumenfi/route-optimizer/internal/domain"
	"github.com/lumenfi/route-optimizer/internal/metrics"
)

var (
	// Validation errors, rejected before any traversal starts.
	ErrSameToken     = errors.New("input and output tokens are identical")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrUnknownToken  = errors.New("token not present in graph")
)

// GraphIntegrityError marks an edge referencing a node missing from the
// snapshot. It aborts the offending algorithm run; the dispatcher keeps
// results from other strategies in hybrid mode.
type GraphIntegrityError struct {
	PoolAddress string
	Missing     domain.TokenID
}

func (e *GraphIntegrityError) Error() string {
	return fmt.Sprintf("graph integrity: edge via pool %s references missing node %s", e.PoolAddress, e.Missing)
}

// TimeoutError marks a single algorithm invocation exceeding its deadline.
type TimeoutError struct {
	Algorithm domain.Algorithm
	Budget    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s search exceeded %s budget", e.Algorithm, e.Budget)
}

// newTimeoutError is the only place search timeouts are counted, so a timeout
// absorbed by the dispatcher and one propagated to the caller each register
// exactly once.
func newTimeoutError(algorithm domain.Algorithm, budget time.Duration) *TimeoutError {
	metrics.SearchTimeouts.WithLabelValues(string(algorithm)).Inc()
	return &TimeoutError{Algorithm: algorithm, Budget: budget}
}

// IsRecoverable reports whether a strategy failure may be absorbed when other
// strategies are still in play.
func IsRecoverable(err error) bool {
	var integrity *GraphIntegrityError
	var timeout *TimeoutError
	return errors.As(err, &integrity) || errors.As(err, &timeout)
}
