package particle

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/partsim/internal/dynamo"
)

// Ref is a stable handle to a particle in a Store.
type Ref struct {
	id   ID
	slot uint32
	gen  uint32
}

func (r Ref) ID() ID { return r.id }

func (r Ref) String() string {
	return fmt.Sprintf("particle#%d", r.id)
}

type slot struct {
	dense int
	gen   uint32
	live  bool
}

// Store owns particles in a dense array addressed through a slot map.
type Store struct {
	particles []Particle
	owner     []uint32 // dense index -> slot
	slots     []slot
	free      []uint32
	nextID    ID
	onSwap    func(i, j int)
}

func NewStore() *Store {
	return &Store{nextID: 1}
}

// Insert assigns the particle an ID and returns its reference.
func (s *Store) Insert(p Particle) Ref {
	p.ID = s.nextID
	s.nextID++

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}

	sl := &s.slots[idx]
	sl.dense = len(s.particles)
	sl.live = true

	s.particles = append(s.particles, p)
	s.owner = append(s.owner, idx)
	return Ref{id: p.ID, slot: idx, gen: sl.gen}
}

// Index resolves ref to its current dense index. IDs start at 1, so the zero
// Ref never resolves.
func (s *Store) Index(ref Ref) (int, error) {
	if int(ref.slot) >= len(s.slots) {
		return -1, fmt.Errorf("%v: %w", ref, dynamo.ErrUnknownEntity)
	}
	sl := s.slots[ref.slot]
	if !sl.live || sl.gen != ref.gen || s.particles[sl.dense].ID != ref.id {
		return -1, fmt.Errorf("%v: %w", ref, dynamo.ErrUnknownEntity)
	}
	return sl.dense, nil
}

func (s *Store) Get(ref Ref) (*Particle, error) {
	i, err := s.Index(ref)
	if err != nil {
		return nil, err
	}
	return &s.particles[i], nil
}

// At returns the particle at a dense index.
func (s *Store) At(i int) *Particle { return &s.particles[i] }

func (s *Store) Len() int { return len(s.particles) }

// RefAt returns the reference for the particle at a dense index.
func (s *Store) RefAt(i int) Ref {
	idx := s.owner[i]
	return Ref{id: s.particles[i].ID, slot: idx, gen: s.slots[idx].gen}
}

// Remove deletes the particle. Every outstanding copy of ref becomes stale.
func (s *Store) Remove(ref Ref) error {
	i, err := s.Index(ref)
	if err != nil {
		return err
	}
	last := len(s.particles) - 1
	s.Swap(i, last)

	s.particles = s.particles[:last]
	s.owner = s.owner[:last]

	sl := &s.slots[ref.slot]
	sl.live = false
	sl.gen++
	s.free = append(s.free, ref.slot)
	return nil
}

// OnSwap registers fn to run after every exchange of two dense entries, so
// tables indexed by dense position can follow their particles.
func (s *Store) OnSwap(fn func(i, j int)) { s.onSwap = fn }

// Swap exchanges two dense entries. References are unaffected.
func (s *Store) Swap(i, j int) {
	if i == j {
		return
	}
	s.particles[i], s.particles[j] = s.particles[j], s.particles[i]
	s.owner[i], s.owner[j] = s.owner[j], s.owner[i]
	s.slots[s.owner[i]].dense = i
	s.slots[s.owner[j]].dense = j
	if s.onSwap != nil {
		s.onSwap(i, j)
	}
}

func (s *Store) Shuffle(r *rand.Rand) {
	r.Shuffle(len(s.particles), s.Swap)
}

// Refs returns references to every live particle in dense order.
func (s *Store) Refs() []Ref {
	out := make([]Ref, len(s.particles))
	for i := range s.particles {
		out[i] = s.RefAt(i)
	}
	return out
}

func (s *Store) Each(fn func(p *Particle)) {
	for i := range s.particles {
		fn(&s.particles[i])
	}
}
