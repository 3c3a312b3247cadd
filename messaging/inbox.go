package messaging

import "sync"

// Inbox holds the messages delivered to one agent in arrival order. It is
// safe for concurrent use.
type Inbox struct {
	mu       sync.Mutex
	messages []Message
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{}
}

// Push appends m.
func (in *Inbox) Push(m Message) {
	in.mu.Lock()
	in.messages = append(in.messages, m)
	in.mu.Unlock()
}

// Extract removes and returns every queued message matching t, in arrival
// order. Non-matching messages stay queued in their original order.
func (in *Inbox) Extract(t Template) []Message {
	in.mu.Lock()
	defer in.mu.Unlock()

	var matched []Message
	kept := in.messages[:0]
	for _, m := range in.messages {
		if t.Match(m) {
			matched = append(matched, m)
		} else {
			kept = append(kept, m)
		}
	}
	clear(in.messages[len(kept):])
	in.messages = kept
	return matched
}

// ReadAll removes and returns every queued message.
func (in *Inbox) ReadAll() []Message {
	return in.Extract(AlwaysTrue())
}

// Len returns the number of queued messages.
func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.messages)
}

// Clear drops every queued message.
func (in *Inbox) Clear() {
	in.mu.Lock()
	in.messages = nil
	in.mu.Unlock()
}
