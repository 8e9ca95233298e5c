// Package chaos provides a deliberate, probabilistic fault source used to
// exercise failure-handling and observability paths. It is a chaos hook, not a
// business rule: the probability defaults to zero and production profiles
// should leave it there.
package chaos

import (
	"math/rand"
	"sync"
	"time"
)

// Injector decides probabilistically whether a request should fail before any
// external side effect happens. Safe for concurrent use.
type Injector struct {
	probability float64

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns an Injector that signals failure with the given probability,
// clamped to [0,1]. A probability of 0 disables injection entirely.
func New(probability float64) *Injector {
	if probability < 0 {
		probability = 0
	}
	if probability > 1 {
		probability = 1
	}
	return &Injector{
		probability: probability,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ShouldFail reports whether the current request should be failed artificially.
func (i *Injector) ShouldFail() bool {
	if i.probability <= 0 {
		return false
	}
	if i.probability >= 1 {
		return true
	}
	i.mu.Lock()
	v := i.rng.Float64()
	i.mu.Unlock()
	return v < i.probability
}
