package particle

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/vecmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(s *Store, n int) []Ref {
	refs := make([]Ref, n)
	for i := range refs {
		refs[i] = s.Insert(New(Config{Mass: float64(i + 1), Pos: vecmath.Vec3{float64(i), 0, 0}}))
	}
	return refs
}

func TestStoreInsertAssignsIDs(t *testing.T) {
	s := NewStore()
	refs := fill(s, 3)

	seen := map[ID]bool{}
	for _, r := range refs {
		p, err := s.Get(r)
		require.NoError(t, err)
		assert.Equal(t, r.ID(), p.ID)
		assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
		seen[p.ID] = true
	}
	assert.Equal(t, 3, s.Len())
}

func TestStoreReferenceStableUnderShuffle(t *testing.T) {
	s := NewStore()
	refs := fill(s, 64)
	masses := make(map[ID]float64, len(refs))
	for _, r := range refs {
		p, _ := s.Get(r)
		masses[p.ID] = p.Mass
	}

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 5; round++ {
		s.Shuffle(rng)
		for _, r := range refs {
			p, err := s.Get(r)
			require.NoError(t, err)
			if p.ID != r.ID() {
				t.Fatalf("round %d: expected id %d, got %d", round, r.ID(), p.ID)
			}
			if p.Mass != masses[p.ID] {
				t.Errorf("round %d: expected mass %f, got %f", round, masses[p.ID], p.Mass)
			}
		}
	}
}

func TestStoreRemoveInvalidatesRef(t *testing.T) {
	s := NewStore()
	refs := fill(s, 4)

	require.NoError(t, s.Remove(refs[1]))
	assert.Equal(t, 3, s.Len())

	_, err := s.Get(refs[1])
	assert.ErrorIs(t, err, dynamo.ErrUnknownEntity)
	assert.ErrorIs(t, s.Remove(refs[1]), dynamo.ErrUnknownEntity)

	for _, r := range []Ref{refs[0], refs[2], refs[3]} {
		p, err := s.Get(r)
		require.NoError(t, err)
		assert.Equal(t, r.ID(), p.ID)
	}

	// the freed slot is reused with a new generation
	fresh := s.Insert(New(Config{Mass: 9}))
	_, err = s.Get(refs[1])
	assert.True(t, errors.Is(err, dynamo.ErrUnknownEntity))
	p, err := s.Get(fresh)
	require.NoError(t, err)
	assert.Equal(t, 9.0, p.Mass)
}

func TestStoreForeignRef(t *testing.T) {
	a := NewStore()
	fill(a, 5)
	b := NewStore()
	_, err := b.Get(a.RefAt(4))
	assert.ErrorIs(t, err, dynamo.ErrUnknownEntity)
}

func TestStoreOnSwapFollowsShuffle(t *testing.T) {
	s := NewStore()
	refs := fill(s, 16)
	var acc Accumulators
	acc.Reset(s.Len())
	for i := range refs {
		acc.AddForce(i, vecmath.Vec3{float64(s.At(i).ID), 0, 0})
	}
	s.OnSwap(acc.Swap)

	s.Shuffle(rand.New(rand.NewSource(7)))
	for i := 0; i < s.Len(); i++ {
		if got, want := acc.At(i).Force[0], float64(s.At(i).ID); got != want {
			t.Errorf("index %d: expected force %f, got %f", i, want, got)
		}
	}
	acc.Swap(0, 99)
}

func TestStoreZeroRef(t *testing.T) {
	s := NewStore()
	fill(s, 3)
	_, err := s.Get(Ref{})
	assert.ErrorIs(t, err, dynamo.ErrUnknownEntity)
}

func TestRefsMatchDenseOrder(t *testing.T) {
	s := NewStore()
	fill(s, 6)
	s.Swap(0, 5)
	for i, r := range s.Refs() {
		idx, err := s.Index(r)
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}
}
