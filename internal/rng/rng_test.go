package rng

import "testing"

func TestRollDiceInRange(t *testing.T) {
	s := New(42)
	for i := 0; i < 1000; i++ {
		d1, d2 := s.RollDice()
		if d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
			t.Fatalf("roll out of range: %d, %d", d1, d2)
		}
	}
}

func TestDeterministicSameSeed(t *testing.T) {
	a := New(7)
	b := New(7)
	for i := 0; i < 50; i++ {
		a1, a2 := a.RollDice()
		b1, b2 := b.RollDice()
		if a1 != b1 || a2 != b2 {
			t.Fatalf("roll %d diverged: (%d,%d) vs (%d,%d)", i, a1, a2, b1, b2)
		}
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	s := New(1)
	in := []int{1, 2, 3, 4, 5}
	orig := append([]int(nil), in...)
	_ = Shuffle(s, in)
	for i := range in {
		if in[i] != orig[i] {
			t.Fatalf("input mutated at %d", i)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	s := New(2)
	in := []int{1, 2, 3, 4, 5, 6}
	out := Shuffle(s, in)
	if len(out) != len(in) {
		t.Fatalf("length mismatch")
	}
	seen := make(map[int]bool)
	for _, v := range out {
		seen[v] = true
	}
	if len(seen) != len(in) {
		t.Fatalf("shuffle dropped or duplicated elements")
	}
}
