// Package messaging provides FIPA-style agent messages, composable message
// templates, inboxes with selective extraction and a recipient router.
package messaging

import (
	"slices"
	"strconv"
	"time"

	"github.com/ira-ai-automation/agentsim/ident"
	"github.com/ira-ai-automation/agentsim/simerr"
)

// Performative is the speech-act tag of a message.
type Performative int

// The FIPA communicative acts.
const (
	Unknown Performative = iota
	AcceptProposal
	Agree
	Cancel
	CFP
	Confirm
	Disconfirm
	Failure
	Inform
	InformIf
	InformRef
	NotUnderstood
	Propagate
	Propose
	Proxy
	QueryIf
	QueryRef
	Refuse
	RejectProposal
	Request
	RequestWhen
	RequestWhenever
	Subscribe
)

var performativeNames = [...]string{
	Unknown:         "UNKNOWN",
	AcceptProposal:  "ACCEPT_PROPOSAL",
	Agree:           "AGREE",
	Cancel:          "CANCEL",
	CFP:             "CFP",
	Confirm:         "CONFIRM",
	Disconfirm:      "DISCONFIRM",
	Failure:         "FAILURE",
	Inform:          "INFORM",
	InformIf:        "INFORM_IF",
	InformRef:       "INFORM_REF",
	NotUnderstood:   "NOT_UNDERSTOOD",
	Propagate:       "PROPAGATE",
	Propose:         "PROPOSE",
	Proxy:           "PROXY",
	QueryIf:         "QUERY_IF",
	QueryRef:        "QUERY_REF",
	Refuse:          "REFUSE",
	RejectProposal:  "REJECT_PROPOSAL",
	Request:         "REQUEST",
	RequestWhen:     "REQUEST_WHEN",
	RequestWhenever: "REQUEST_WHENEVER",
	Subscribe:       "SUBSCRIBE",
}

// String returns the upper-case FIPA name of p.
func (p Performative) String() string {
	if p < 0 || int(p) >= len(performativeNames) {
		return "Performative(" + strconv.Itoa(int(p)) + ")"
	}
	return performativeNames[p]
}

// ParsePerformative maps a FIPA name to a Performative.
func ParsePerformative(name string) (Performative, bool) {
	for i, n := range performativeNames {
		if n == name {
			return Performative(i), true
		}
	}
	return Unknown, false
}

// Message is an addressed, performative-tagged unit. Messages are values and
// must be treated as immutable once built; Recipients and ReplyTo are never
// modified after Build. ConversationID is -1 when the message belongs to no
// conversation.
type Message struct {
	ID             string
	Performative   Performative
	Sender         string
	Recipients     []string
	ReplyTo        []string
	Language       string
	Encoding       string
	Ontology       string
	Protocol       string
	ConversationID int
	ReplyWith      string
	InReplyTo      string
	ReplyBy        time.Time
	Content        any
}

// Anonymous reports whether m has no declared sender.
func (m Message) Anonymous() bool {
	return m.Sender == ""
}

// AddressedTo reports whether id is among the recipients of m.
func (m Message) AddressedTo(id string) bool {
	return slices.Contains(m.Recipients, id)
}

// String returns a short representation of the message.
func (m Message) String() string {
	return m.Performative.String() + ":" + m.ID
}

// Builder helps construct messages with a fluent API.
type Builder struct {
	msg Message
	ids ident.Generator
}

// NewMessage creates a message builder. Message ids are drawn from ids.
func NewMessage(ids ident.Generator) *Builder {
	if ids == nil {
		ids = ident.UUID()
	}
	return &Builder{ids: ids, msg: Message{ConversationID: -1}}
}

// NewMessageFrom creates a builder seeded with every field of template except
// the id.
func NewMessageFrom(template Message, ids ident.Generator) *Builder {
	b := NewMessage(ids)
	b.msg = template
	b.msg.ID = ""
	b.msg.Recipients = slices.Clone(template.Recipients)
	b.msg.ReplyTo = slices.Clone(template.ReplyTo)
	return b
}

// Performative sets the speech-act tag.
func (b *Builder) Performative(p Performative) *Builder {
	b.msg.Performative = p
	return b
}

// From sets the sender of the message.
func (b *Builder) From(sender string) *Builder {
	b.msg.Sender = sender
	return b
}

// To adds recipients. Duplicates are ignored.
func (b *Builder) To(recipients ...string) *Builder {
	for _, r := range recipients {
		if r != "" && !slices.Contains(b.msg.Recipients, r) {
			b.msg.Recipients = append(b.msg.Recipients, r)
		}
	}
	return b
}

// ReplyTo adds addressees that replies should go to instead of the sender.
func (b *Builder) ReplyTo(ids ...string) *Builder {
	for _, r := range ids {
		if r != "" && !slices.Contains(b.msg.ReplyTo, r) {
			b.msg.ReplyTo = append(b.msg.ReplyTo, r)
		}
	}
	return b
}

// Language sets the content language.
func (b *Builder) Language(language string) *Builder {
	b.msg.Language = language
	return b
}

// Encoding sets the content encoding.
func (b *Builder) Encoding(encoding string) *Builder {
	b.msg.Encoding = encoding
	return b
}

// Ontology sets the ontology the content refers to.
func (b *Builder) Ontology(ontology string) *Builder {
	b.msg.Ontology = ontology
	return b
}

// Protocol sets the interaction protocol.
func (b *Builder) Protocol(protocol string) *Builder {
	b.msg.Protocol = protocol
	return b
}

// Conversation sets the conversation id.
func (b *Builder) Conversation(id int) *Builder {
	b.msg.ConversationID = id
	return b
}

// ReplyWith sets the token a reply must quote in its in-reply-to field.
func (b *Builder) ReplyWith(token string) *Builder {
	b.msg.ReplyWith = token
	return b
}

// InReplyTo sets the reply-with token of the message being answered.
func (b *Builder) InReplyTo(token string) *Builder {
	b.msg.InReplyTo = token
	return b
}

// ReplyBy sets the deadline for replies.
func (b *Builder) ReplyBy(deadline time.Time) *Builder {
	b.msg.ReplyBy = deadline
	return b
}

// Content sets the message payload.
func (b *Builder) Content(content any) *Builder {
	b.msg.Content = content
	return b
}

// Build creates the final message. A message needs at least one recipient.
func (b *Builder) Build() (Message, error) {
	if len(b.msg.Recipients) == 0 {
		return Message{}, simerr.New(simerr.InvalidMessage, "message has no recipients").
			WithContext("performative", b.msg.Performative.String())
	}
	m := b.msg
	m.ID = b.ids.Next()
	m.Recipients = slices.Clone(b.msg.Recipients)
	m.ReplyTo = slices.Clone(b.msg.ReplyTo)
	return m, nil
}

// Reply prepares an answer to m sent by from. Language, ontology, protocol and
// conversation id are copied; the recipients are m's reply-to addressees, or
// m's sender when there are none; in-reply-to quotes m's reply-with and a
// fresh reply-with token is generated. Callers still set performative and
// content before building.
func Reply(m Message, from string, ids ident.Generator) (*Builder, error) {
	if m.Anonymous() {
		return nil, simerr.New(simerr.AnonymousSender, "cannot reply to an anonymous message").
			WithContext("message_id", m.ID)
	}
	b := NewMessage(ids).
		From(from).
		Language(m.Language).
		Ontology(m.Ontology).
		Protocol(m.Protocol).
		Conversation(m.ConversationID).
		InReplyTo(m.ReplyWith)
	if len(m.ReplyTo) > 0 {
		b.To(m.ReplyTo...)
	} else {
		b.To(m.Sender)
	}
	b.ReplyWith(b.ids.Next())
	return b, nil
}
