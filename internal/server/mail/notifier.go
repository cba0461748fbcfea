// Package mail hands outgoing messages to a delivery mechanism. Delivery
// itself happens elsewhere; this package only queues or logs.
package mail

import "context"

// Message is a structured send request.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier accepts messages for delivery.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
