// Package ident provides identity generators for agents, messages and reply tokens.
//
// Generators are explicit objects owned by the engine (or passed to a clone
// session / message builder) rather than process-wide counters, so tests can
// substitute a deterministic Sequence.
package ident

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique identifiers.
type Generator interface {
	// Next returns a fresh identifier. Implementations must be safe for
	// concurrent use.
	Next() string
}

type uuidGenerator struct{}

// UUID returns a generator that produces random (version 4) UUID strings.
func UUID() Generator {
	return uuidGenerator{}
}

// Next returns a new random UUID.
func (uuidGenerator) Next() string {
	return uuid.New().String()
}

// Sequence generates prefix-1, prefix-2, ... in call order.
type Sequence struct {
	prefix string
	n      atomic.Uint64
}

// NewSequence creates a deterministic generator. An empty prefix yields bare numbers.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (s *Sequence) Next() string {
	n := strconv.FormatUint(s.n.Add(1), 10)
	if s.prefix == "" {
		return n
	}
	return s.prefix + "-" + n
}

// Issued returns how many identifiers have been produced so far.
func (s *Sequence) Issued() uint64 {
	return s.n.Load()
}
