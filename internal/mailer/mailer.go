package mailer

import "context"

// Message is one rendered report addressed for delivery. Text is always
// present; HTML rides along when non-empty.
type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Transport delivers a message to all recipients in one call.
// Implementations retry internally and return only terminal failures.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}
