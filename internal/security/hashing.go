package security

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// Hasher hashes and verifies passwords using bcrypt. Callers must not log or
// persist plaintext passwords.
//
// bcrypt is CPU-bound, so a Hasher bounds the number of concurrent hash and
// verify operations with a weighted semaphore; waiting callers honor context
// cancellation and hold no locks while blocked.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewHasher returns a Hasher with the given bcrypt cost (4–31) and worker
// bound. Cost 12 is a reasonable default for interactive login. workers <= 0
// means GOMAXPROCS.
func NewHasher(cost, workers int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Hasher{cost: cost, sem: semaphore.NewWeighted(int64(workers))}
}

// Cost returns the configured bcrypt cost factor.
func (h *Hasher) Cost() int { return h.cost }

// Hash produces a bcrypt hash of password, waiting for a worker slot first.
// Returns ctx.Err() if the caller is cancelled before a slot frees up.
func (h *Hasher) Hash(ctx context.Context, password []byte) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)
	b, err := bcrypt.GenerateFromPassword(password, h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares password against the stored hash using bcrypt's own
// constant-time comparison. A mismatch is (false, nil), not an error; only a
// malformed stored hash or cancellation produces a non-nil error.
func (h *Hasher) Verify(ctx context.Context, password []byte, hash string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)
	err := bcrypt.CompareHashAndPassword([]byte(hash), password)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
