package space

import (
	"cmp"
	"math"
	"slices"
)

// Index is a pluggable 2D spatial index storing projections of comparable
// objects. Implementations need not be safe for concurrent writers; concurrent
// readers are allowed while no writer is active.
type Index[T comparable] interface {
	// Insert stores obj at p. It returns false without mutating anything if
	// the index already contains obj.
	Insert(obj T, p Projection) bool

	// Remove deletes obj. It returns false if obj is not stored.
	Remove(obj T) bool

	// Relocate replaces the projection of a stored obj.
	Relocate(obj T, p Projection) bool

	// Projection returns the stored projection of obj.
	Projection(obj T) (Projection, bool)

	// Neighbours returns the objects within radius of obj, excluding obj.
	Neighbours(obj T, radius float64) []T

	// Len returns the number of stored objects.
	Len() int
}

// GridOptions configures a Grid.
type GridOptions struct {
	// CellSize is the side length of a bucket; values <= 0 default to 1.
	CellSize float64

	// Width and Height bound the plane to [0,Width]x[0,Height] when both are
	// positive; positions outside are clamped onto the border.
	Width  float64
	Height float64
}

type cellKey struct {
	cx, cy int
}

type gridEntry struct {
	proj Projection
	cell cellKey
}

// maxCell bounds cell coordinates that convert exactly to int.
const maxCell = 1 << 52

// Grid is a uniform bucket grid. Neighbour queries visit the cells
// overlapping the query circle, or only the occupied cells when those are
// fewer.
type Grid[T comparable] struct {
	cellSize float64
	width    float64
	height   float64
	cells    map[cellKey][]T
	entries  map[T]gridEntry
}

// NewGrid creates an empty grid.
func NewGrid[T comparable](opts GridOptions) *Grid[T] {
	if opts.CellSize <= 0 {
		opts.CellSize = 1
	}
	return &Grid[T]{
		cellSize: opts.CellSize,
		width:    opts.Width,
		height:   opts.Height,
		cells:    make(map[cellKey][]T),
		entries:  make(map[T]gridEntry),
	}
}

// Bounded reports whether the grid clamps positions.
func (g *Grid[T]) Bounded() bool {
	return g.width > 0 && g.height > 0
}

// Insert stores obj at p.
func (g *Grid[T]) Insert(obj T, p Projection) bool {
	if _, exists := g.entries[obj]; exists {
		return false
	}
	p = g.clamp(p)
	key := g.cellOf(p.Point)
	g.entries[obj] = gridEntry{proj: p, cell: key}
	g.cells[key] = append(g.cells[key], obj)
	return true
}

// Remove deletes obj.
func (g *Grid[T]) Remove(obj T) bool {
	e, exists := g.entries[obj]
	if !exists {
		return false
	}
	delete(g.entries, obj)
	g.detach(obj, e.cell)
	return true
}

// Relocate moves obj to p.
func (g *Grid[T]) Relocate(obj T, p Projection) bool {
	e, exists := g.entries[obj]
	if !exists {
		return false
	}
	p = g.clamp(p)
	key := g.cellOf(p.Point)
	if key != e.cell {
		g.detach(obj, e.cell)
		g.cells[key] = append(g.cells[key], obj)
	}
	g.entries[obj] = gridEntry{proj: p, cell: key}
	return true
}

// Projection returns the stored projection of obj.
func (g *Grid[T]) Projection(obj T) (Projection, bool) {
	e, exists := g.entries[obj]
	return e.proj, exists
}

// Neighbours returns the objects within radius of obj, excluding obj itself.
func (g *Grid[T]) Neighbours(obj T, radius float64) []T {
	e, exists := g.entries[obj]
	if !exists {
		return nil
	}
	found := g.Within(e.proj.Point, radius)
	out := found[:0]
	for _, other := range found {
		if other != obj {
			out = append(out, other)
		}
	}
	return out
}

// Within returns all objects whose distance to center is at most radius.
// Results are ordered by cell (row-major) and by insertion within a cell.
// A NaN or negative radius matches nothing.
func (g *Grid[T]) Within(center Point, radius float64) []T {
	if math.IsNaN(radius) || radius < 0 {
		return nil
	}
	r2 := radius * radius
	match := func(obj T) bool {
		p := g.entries[obj].proj
		dx, dy := p.X-center.X, p.Y-center.Y
		return dx*dx+dy*dy <= r2
	}

	loX, hiX := math.Floor((center.X-radius)/g.cellSize), math.Floor((center.X+radius)/g.cellSize)
	loY, hiY := math.Floor((center.Y-radius)/g.cellSize), math.Floor((center.Y+radius)/g.cellSize)
	span := (hiX - loX + 1) * (hiY - loY + 1)

	var out []T
	if math.IsNaN(span) || span > float64(len(g.cells)) || !cellRange(loX, hiX) || !cellRange(loY, hiY) {
		for _, key := range g.occupied() {
			for _, obj := range g.cells[key] {
				if match(obj) {
					out = append(out, obj)
				}
			}
		}
		return out
	}

	for cy := int(loY); cy <= int(hiY); cy++ {
		for cx := int(loX); cx <= int(hiX); cx++ {
			for _, obj := range g.cells[cellKey{cx: cx, cy: cy}] {
				if match(obj) {
					out = append(out, obj)
				}
			}
		}
	}
	return out
}

// Len returns the number of stored objects.
func (g *Grid[T]) Len() int {
	return len(g.entries)
}

func (g *Grid[T]) cellOf(p Point) cellKey {
	return cellKey{
		cx: int(math.Floor(p.X / g.cellSize)),
		cy: int(math.Floor(p.Y / g.cellSize)),
	}
}

func cellRange(lo, hi float64) bool {
	return lo >= -maxCell && hi <= maxCell
}

// occupied returns the non-empty cells in row-major order.
func (g *Grid[T]) occupied() []cellKey {
	keys := make([]cellKey, 0, len(g.cells))
	for key := range g.cells {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b cellKey) int {
		if c := cmp.Compare(a.cy, b.cy); c != 0 {
			return c
		}
		return cmp.Compare(a.cx, b.cx)
	})
	return keys
}

func (g *Grid[T]) clamp(p Projection) Projection {
	if !g.Bounded() {
		return p
	}
	p.X = math.Min(math.Max(p.X, 0), g.width)
	p.Y = math.Min(math.Max(p.Y, 0), g.height)
	return p
}

// detach removes obj from a cell keeping the remaining order.
func (g *Grid[T]) detach(obj T, key cellKey) {
	bucket := g.cells[key]
	for i, other := range bucket {
		if other == obj {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(g.cells, key)
		return
	}
	g.cells[key] = bucket
}
