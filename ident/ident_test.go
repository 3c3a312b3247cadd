package ident

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_Deterministic(t *testing.T) {
	seq := NewSequence("msg")
	assert.Equal(t, "msg-1", seq.Next())
	assert.Equal(t, "msg-2", seq.Next())
	assert.Equal(t, uint64(2), seq.Issued())

	bare := NewSequence("")
	assert.Equal(t, "1", bare.Next())
}

func TestSequence_ConcurrentUnique(t *testing.T) {
	seq := NewSequence("a")
	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		wg   sync.WaitGroup
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := seq.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}

func TestUUID_ProducesValidUUIDs(t *testing.T) {
	gen := UUID()
	a, b := gen.Next(), gen.Next()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	require.NoError(t, err)
}
