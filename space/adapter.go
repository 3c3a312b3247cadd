package space

import (
	"github.com/ira-ai-automation/agentsim/simerr"
)

// Adapter wraps an Index and keeps a membership list of the objects that are
// currently live in space, in insertion order.
//
// Mutating methods must only be called by a single writer. FindNeighbours and
// the other read methods may be called from many goroutines as long as no
// mutation is in progress.
type Adapter[T comparable] struct {
	index   Index[T]
	members []T
}

// NewAdapter wraps idx, which must be empty.
func NewAdapter[T comparable](idx Index[T]) (*Adapter[T], error) {
	if idx == nil {
		return nil, simerr.New(simerr.InvalidConfiguration, "spatial index cannot be nil")
	}
	if n := idx.Len(); n != 0 {
		return nil, simerr.Newf(simerr.NonEmptyIndex, "spatial index already holds %d objects", n)
	}
	return &Adapter[T]{index: idx}, nil
}

// Insert places obj at p facing orientation 0. It returns false and changes
// nothing when obj is already present.
func (a *Adapter[T]) Insert(obj T, p Point) bool {
	return a.InsertProjection(obj, Projection{Point: p})
}

// InsertProjection places obj with an explicit heading.
func (a *Adapter[T]) InsertProjection(obj T, p Projection) bool {
	if !a.index.Insert(obj, p) {
		return false
	}
	a.members = append(a.members, obj)
	return true
}

// Remove is the inverse of Insert. It returns false when obj is not present.
func (a *Adapter[T]) Remove(obj T) bool {
	if !a.index.Remove(obj) {
		return false
	}
	for i, m := range a.members {
		if m == obj {
			a.members = append(a.members[:i], a.members[i+1:]...)
			break
		}
	}
	return true
}

// RemoveInactive removes every member for which isActive reports false from
// both the index and the membership list and returns them. The predicate is
// evaluated for all members before anything is removed.
func (a *Adapter[T]) RemoveInactive(isActive func(T) bool) []T {
	keep := make([]bool, len(a.members))
	inactive := 0
	for i, m := range a.members {
		keep[i] = isActive(m)
		if !keep[i] {
			inactive++
		}
	}
	if inactive == 0 {
		return nil
	}

	removed := make([]T, 0, inactive)
	kept := a.members[:0]
	for i, m := range a.members {
		if keep[i] {
			kept = append(kept, m)
			continue
		}
		a.index.Remove(m)
		removed = append(removed, m)
	}
	var zero T
	for i := len(kept); i < len(a.members); i++ {
		a.members[i] = zero
	}
	a.members = kept
	return removed
}

// Destination returns the projection obj would reach by performing m,
// without changing the index. The second result is false when obj is not
// inserted.
func (a *Adapter[T]) Destination(obj T, m Motion) (Projection, bool) {
	p, ok := a.index.Projection(obj)
	if !ok {
		return Projection{}, false
	}
	return p.Apply(m), true
}

// Relocate sets the projection of obj directly.
func (a *Adapter[T]) Relocate(obj T, p Projection) bool {
	return a.index.Relocate(obj, p)
}

// FindNeighbours returns the members within radius of obj, excluding obj.
func (a *Adapter[T]) FindNeighbours(obj T, radius float64) []T {
	return a.index.Neighbours(obj, radius)
}

// Position returns the location of obj. The second result is false when obj
// is not inserted.
func (a *Adapter[T]) Position(obj T) (Point, bool) {
	p, ok := a.index.Projection(obj)
	return p.Point, ok
}

// Projection returns the location and heading of obj.
func (a *Adapter[T]) Projection(obj T) (Projection, bool) {
	return a.index.Projection(obj)
}

// Contains reports whether obj is live in space.
func (a *Adapter[T]) Contains(obj T) bool {
	_, ok := a.index.Projection(obj)
	return ok
}

// Members returns a copy of the membership list in insertion order.
func (a *Adapter[T]) Members() []T {
	out := make([]T, len(a.members))
	copy(out, a.members)
	return out
}

// Len returns the number of live members.
func (a *Adapter[T]) Len() int {
	return len(a.members)
}
