// Package clone implements cycle-safe deep cloning of object graphs.
//
// A Session is an identity map from original objects to their clones. A
// cloneable type builds its copy in DeepClone and must call Session.Register
// before cloning any of its own fields, so that a field pointing back into a
// cycle resolves to the partially built clone instead of starting a second one:
//
//	func (n *Node) DeepClone(s *clone.Session) any {
//		c := &Node{Name: n.Name}
//		s.Register(n, c)
//		c.Next = clone.Of(s, n.Next)
//		return c
//	}
//
// Cloneable implementations must be pointer types: the identity map is keyed by
// the original object's identity, not by equality.
package clone

import (
	"reflect"

	"github.com/ira-ai-automation/agentsim/ident"
	"github.com/ira-ai-automation/agentsim/simerr"
)

// Cloneable is implemented by mutable objects that are owned by the graph
// being cloned.
type Cloneable interface {
	// DeepClone returns a structurally independent copy. It must register the
	// copy in s before recursing into its fields.
	DeepClone(s *Session) any
}

// Shared marks objects referenced by, but not owned by, the graph being
// cloned (prototypes, configuration, behaviour tables). They are returned as-is.
type Shared interface {
	SharedInstance()
}

// Session scopes one top-level clone invocation. It is not safe for concurrent
// use and must not be reused after Close.
type Session struct {
	clones  map[any]any
	pending map[any]struct{}
	ids     ident.Generator
	closed  bool
}

// Option configures a Session.
type Option func(*Session)

// WithIDs sets the generator cloned objects draw fresh identities from.
func WithIDs(g ident.Generator) Option {
	return func(s *Session) {
		if g != nil {
			s.ids = g
		}
	}
}

// NewSession creates an empty session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		clones:  make(map[any]any),
		pending: make(map[any]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = ident.UUID()
	}
	return s
}

// Register records clone as the copy of orig. Registering a different clone
// for an already registered original is a contract violation.
func (s *Session) Register(orig, clone any) {
	s.checkOpen()
	if prev, exists := s.clones[orig]; exists && prev != clone {
		panic(simerr.Newf(simerr.CloneOrder, "%T registered twice with different clones", orig))
	}
	s.clones[orig] = clone
}

// Lookup returns the clone registered for orig.
func (s *Session) Lookup(orig any) (any, bool) {
	s.checkOpen()
	c, ok := s.clones[orig]
	return c, ok
}

// IDs returns the generator for identities of cloned objects.
func (s *Session) IDs() ident.Generator {
	return s.ids
}

// Len returns the number of registered clones.
func (s *Session) Len() int {
	return len(s.clones)
}

// Close releases the identity map. Any further use panics.
func (s *Session) Close() {
	s.closed = true
	s.clones = nil
	s.pending = nil
}

func (s *Session) checkOpen() {
	if s.closed {
		panic(simerr.New(simerr.SessionClosed, "clone session used after Close"))
	}
}

// Of returns the clone of v within s.
//
// Nil values, Shared objects and values that do not implement Cloneable
// (immutable values) are returned unchanged. An object already registered in
// s yields its registered clone, which is what terminates cycles.
func Of[T any](s *Session, v T) T {
	s.checkOpen()

	obj := any(v)
	if obj == nil || isNilPointer(obj) {
		return v
	}
	if _, shared := obj.(Shared); shared {
		return v
	}
	c, ok := obj.(Cloneable)
	if !ok {
		return v
	}

	if done, exists := s.clones[obj]; exists {
		return done.(T)
	}
	if _, busy := s.pending[obj]; busy {
		panic(simerr.Newf(simerr.CloneOrder, "%T reached again before registering its clone", obj))
	}

	s.pending[obj] = struct{}{}
	out := c.DeepClone(s)
	delete(s.pending, obj)

	registered, exists := s.clones[obj]
	if !exists {
		panic(simerr.Newf(simerr.CloneOrder, "%T did not register its clone", obj))
	}
	if registered != out {
		panic(simerr.Newf(simerr.CloneOrder, "%T returned a clone different from the registered one", obj))
	}
	typed, ok := out.(T)
	if !ok {
		panic(simerr.Newf(simerr.CloneOrder, "%T cloned into unexpected type %T", obj, out))
	}
	return typed
}

// Slice clones every element of in. A nil slice stays nil.
func Slice[T any](s *Session, in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = Of(s, v)
	}
	return out
}

// Map clones every value of in; keys are copied as-is.
func Map[K comparable, V any](s *Session, in map[K]V) map[K]V {
	if in == nil {
		return nil
	}
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = Of(s, v)
	}
	return out
}

// Deep clones root in a fresh session that is closed before returning.
func Deep[T any](root T, opts ...Option) T {
	s := NewSession(opts...)
	defer s.Close()
	return Of(s, root)
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
