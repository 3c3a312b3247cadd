package messaging

import "slices"

// Template is a predicate over messages used for selective inbox reads.
type Template interface {
	Match(m Message) bool
}

// TemplateFunc adapts a function to the Template interface.
type TemplateFunc func(m Message) bool

// Match calls f(m).
func (f TemplateFunc) Match(m Message) bool {
	return f(m)
}

// AlwaysTrue matches every message.
func AlwaysTrue() Template {
	return TemplateFunc(func(Message) bool { return true })
}

// AlwaysFalse matches no message.
func AlwaysFalse() Template {
	return TemplateFunc(func(Message) bool { return false })
}

// WithPerformative matches messages tagged with p.
func WithPerformative(p Performative) Template {
	return TemplateFunc(func(m Message) bool { return m.Performative == p })
}

// WithOntology matches messages whose ontology equals ontology.
func WithOntology(ontology string) Template {
	return TemplateFunc(func(m Message) bool { return m.Ontology == ontology })
}

// WithProtocol matches messages following protocol.
func WithProtocol(protocol string) Template {
	return TemplateFunc(func(m Message) bool { return m.Protocol == protocol })
}

// WithConversationID matches messages belonging to conversation id.
func WithConversationID(id int) Template {
	return TemplateFunc(func(m Message) bool { return m.ConversationID == id })
}

// WithInReplyTo matches messages quoting token in their in-reply-to field.
func WithInReplyTo(token string) Template {
	return TemplateFunc(func(m Message) bool { return token != "" && m.InReplyTo == token })
}

// IsReplyTo matches replies to original: same conversation, quoting its
// reply-with token.
func IsReplyTo(original Message) Template {
	return And(WithConversationID(original.ConversationID), WithInReplyTo(original.ReplyWith))
}

// SentTo matches messages addressed to recipient.
func SentTo(recipient string) Template {
	return TemplateFunc(func(m Message) bool { return m.AddressedTo(recipient) })
}

// SentBy matches messages from sender.
func SentBy(sender string) Template {
	return TemplateFunc(func(m Message) bool { return m.Sender == sender })
}

// WithContent matches messages whose content has type T and satisfies pred.
// A nil pred only checks the type.
func WithContent[T any](pred func(T) bool) Template {
	return TemplateFunc(func(m Message) bool {
		c, ok := m.Content.(T)
		if !ok {
			return false
		}
		return pred == nil || pred(c)
	})
}

// And matches when every template matches. And() matches everything.
func And(templates ...Template) Template {
	templates = slices.Clone(templates)
	return TemplateFunc(func(m Message) bool {
		for _, t := range templates {
			if !t.Match(m) {
				return false
			}
		}
		return true
	})
}

// Or matches when any template matches. Or() matches nothing.
func Or(templates ...Template) Template {
	templates = slices.Clone(templates)
	return TemplateFunc(func(m Message) bool {
		for _, t := range templates {
			if t.Match(m) {
				return true
			}
		}
		return false
	})
}

// Not inverts t.
func Not(t Template) Template {
	return TemplateFunc(func(m Message) bool { return !t.Match(m) })
}
