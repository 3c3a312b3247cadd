package clone

import (
	"testing"

	"github.com/ira-ai-automation/agentsim/ident"
	"github.com/ira-ai-automation/agentsim/simerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blueprint struct {
	species string
}

func (*blueprint) SharedInstance() {}

type node struct {
	id    string
	name  string
	peers []*node
	left  *node
	right *node
	tags  map[string]*node
	kind  *blueprint
}

func (n *node) DeepClone(s *Session) any {
	c := &node{id: s.IDs().Next(), name: n.name}
	s.Register(n, c)
	c.peers = Slice(s, n.peers)
	c.left = Of(s, n.left)
	c.right = Of(s, n.right)
	c.tags = Map(s, n.tags)
	c.kind = Of(s, n.kind)
	return c
}

// eager clones its field before registering, which is a contract violation.
type eager struct {
	next *eager
}

func (e *eager) DeepClone(s *Session) any {
	c := &eager{}
	c.next = Of(s, e.next)
	s.Register(e, c)
	return c
}

// forgetful never registers its clone.
type forgetful struct{}

func (f *forgetful) DeepClone(*Session) any { return &forgetful{} }

func twoCycle() (*node, *node) {
	kind := &blueprint{species: "ant"}
	a := &node{name: "a", kind: kind}
	b := &node{name: "b", kind: kind}
	a.peers = []*node{b}
	b.peers = []*node{a}
	return a, b
}

func TestDeep_TwoCycle(t *testing.T) {
	a, b := twoCycle()

	ca := Deep(a)

	require.NotSame(t, a, ca)
	require.Len(t, ca.peers, 1)
	cb := ca.peers[0]
	assert.NotSame(t, b, cb)
	assert.Equal(t, "b", cb.name)
	assert.Same(t, ca, cb.peers[0])
	assert.Same(t, a.kind, ca.kind, "shared objects are not cloned")
	assert.Same(t, ca.kind, cb.kind)
}

func TestDeep_PreservesAliasing(t *testing.T) {
	shared := &node{name: "shared"}
	root := &node{name: "root", left: shared, right: shared}
	root.tags = map[string]*node{"x": shared, "self": root}

	c := Deep(root)

	assert.NotSame(t, shared, c.left)
	assert.Same(t, c.left, c.right)
	assert.Same(t, c.left, c.tags["x"])
	assert.Same(t, c, c.tags["self"])
}

func TestDeep_CloneOfCloneIsIsomorphic(t *testing.T) {
	a, _ := twoCycle()
	a.left = a.peers[0]
	a.right = a

	once := Deep(a)
	twice := Deep(once)

	assert.NotSame(t, once, twice)
	assertIsomorphic(t, a, once)
	assertIsomorphic(t, once, twice)
}

func TestDeep_DrawsIDsFromSessionGenerator(t *testing.T) {
	a, _ := twoCycle()

	c := Deep(a, WithIDs(ident.NewSequence("n")))

	assert.Equal(t, "n-1", c.id)
	assert.Equal(t, "n-2", c.peers[0].id)
}

func TestOf_NilAndImmutableValuesPassThrough(t *testing.T) {
	s := NewSession()
	defer s.Close()

	var missing *node
	assert.Nil(t, Of(s, missing))
	assert.Equal(t, 42, Of(s, 42))
	assert.Equal(t, "text", Of(s, "text"))
	assert.Nil(t, Slice[*node](s, nil))
	assert.Equal(t, 0, s.Len())
}

func TestOf_DetectsRecursionBeforeRegister(t *testing.T) {
	a := &eager{}
	b := &eager{next: a}
	a.next = b

	assertPanicsWithCode(t, simerr.CloneOrder, func() { Deep(a) })
}

func TestOf_DetectsMissingRegistration(t *testing.T) {
	assertPanicsWithCode(t, simerr.CloneOrder, func() { Deep(&forgetful{}) })
}

func TestSession_RegisterConflict(t *testing.T) {
	s := NewSession()
	defer s.Close()
	orig := &node{}
	s.Register(orig, &node{})

	assertPanicsWithCode(t, simerr.CloneOrder, func() { s.Register(orig, &node{}) })
}

func TestSession_UseAfterClose(t *testing.T) {
	s := NewSession()
	s.Close()

	assertPanicsWithCode(t, simerr.SessionClosed, func() { Of(s, &node{}) })
}

func assertPanicsWithCode(t *testing.T, code simerr.Code, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, simerr.IsCode(err, code), "got %v", err)
	}()
	fn()
}

// assertIsomorphic walks both graphs in lockstep and checks that the mapping
// between their nodes is a bijection consistent with every edge.
func assertIsomorphic(t *testing.T, x, y *node) {
	t.Helper()
	forward := map[*node]*node{}
	backward := map[*node]*node{}

	var walk func(a, b *node)
	walk = func(a, b *node) {
		if a == nil || b == nil {
			assert.True(t, a == nil && b == nil, "nil mismatch")
			return
		}
		if mapped, seen := forward[a]; seen {
			assert.Same(t, mapped, b)
			return
		}
		assert.NotContains(t, backward, b)
		forward[a], backward[b] = b, a

		assert.Equal(t, a.name, b.name)
		assert.Same(t, a.kind, b.kind)
		require.Len(t, b.peers, len(a.peers))
		for i := range a.peers {
			walk(a.peers[i], b.peers[i])
		}
		walk(a.left, b.left)
		walk(a.right, b.right)
		require.Len(t, b.tags, len(a.tags))
		for k, v := range a.tags {
			walk(v, b.tags[k])
		}
	}
	walk(x, y)
}
