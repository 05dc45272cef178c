// Package rng provides the engine's seeded source of randomness. No
// component outside the engine is permitted to consume entropy; the
// engine owns one Source per run and threads it through every dice
// roll and deck shuffle so replay is byte-identical.
package rng

import "math/rand"

// Source is a deterministic, seeded random source for dice rolls and
// deck shuffles. It is not safe for concurrent use — the engine is
// single-threaded and non-reentrant, so this never needs a mutex.
type Source struct {
	r *rand.Rand
}

// New creates a Source seeded deterministically from seed.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// RollDice returns two values in [1,6].
func (s *Source) RollDice() (int, int) {
	return s.r.Intn(6) + 1, s.r.Intn(6) + 1
}

// Shuffle returns a new slice with items in shuffled order, leaving
// the input untouched.
func Shuffle[T any](s *Source, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	s.r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
