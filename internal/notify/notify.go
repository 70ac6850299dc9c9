// Package notify publishes workflow notifications. The core only decides
// whether a message goes out and with what context; rendering and delivery
// belong to the mail service consuming the topic.
package notify

import (
	"context"
	"sync"
)

// Template identifies a message template owned by the mail service.
type Template string

const (
	// TemplateSubmissionConfirmed acknowledges a new submission. Sent
	// only on the first submission of a case, never on resubmission
	// after action needed.
	TemplateSubmissionConfirmed Template = "domain-request-submitted"
	// TemplateRequestApproved announces approval and the new domain.
	TemplateRequestApproved Template = "domain-request-approved"
	// TemplateRequestWithdrawn confirms a withdrawal.
	TemplateRequestWithdrawn Template = "domain-request-withdrawn"
	// TemplateRequestRejected carries the rejection reason.
	TemplateRequestRejected Template = "domain-request-rejected"
	// TemplateActionNeeded asks the requester to fix their submission.
	TemplateActionNeeded Template = "domain-request-action-needed"
)

// Message is one notification to one recipient.
type Message struct {
	Template  Template          `json:"template"`
	Recipient string            `json:"recipient"`
	Context   map[string]string `json:"context,omitempty"`
}

// Sender delivers notifications. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Recorder is a Sender that remembers what it was asked to send, for
// tests asserting exactly-once messaging.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of every recorded message.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}

// CountByTemplate returns how many messages used the given template.
func (r *Recorder) CountByTemplate(t Template) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.sent {
		if m.Template == t {
			n++
		}
	}
	return n
}

// Discard is a Sender that drops everything, for deployments without a
// mail pipeline.
type Discard struct{}

func (Discard) Send(context.Context, Message) error { return nil }
