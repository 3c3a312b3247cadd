package messaging

import (
	"github.com/ira-ai-automation/agentsim/logging"
)

// Recipient is anything owning an inbox.
type Recipient interface {
	Inbox() *Inbox
}

// Directory resolves recipient ids.
type Directory interface {
	Lookup(id string) (Recipient, bool)
}

// DirectoryFunc adapts a lookup function to the Directory interface.
type DirectoryFunc func(id string) (Recipient, bool)

// Lookup calls f(id).
func (f DirectoryFunc) Lookup(id string) (Recipient, bool) {
	return f(id)
}

// Router handles delivering messages to the inboxes of their recipients. It
// is not safe for concurrent use.
type Router struct {
	directory Directory
	logger    logging.Logger
	dropped   int
}

// NewRouter creates a router resolving recipients through directory.
func NewRouter(directory Directory, logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.NewNoOp()
	}
	return &Router{directory: directory, logger: logger}
}

// Route pushes m into the inbox of each recipient and returns how many inboxes
// received it. Unknown recipients are logged and skipped.
func (r *Router) Route(m Message) int {
	delivered := 0
	for _, id := range m.Recipients {
		recipient, ok := r.directory.Lookup(id)
		if !ok {
			r.dropped++
			r.logger.Warn("Recipient agent not found",
				logging.F("recipient", id),
				logging.F("message_id", m.ID),
			)
			continue
		}
		recipient.Inbox().Push(m)
		delivered++
	}

	r.logger.Debug("Message routed",
		logging.F("message_id", m.ID),
		logging.F("performative", m.Performative.String()),
		logging.F("delivered", delivered),
	)
	return delivered
}

// Dropped returns how many recipient deliveries failed because the recipient
// could not be resolved.
func (r *Router) Dropped() int {
	return r.dropped
}
