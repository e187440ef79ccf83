package api

import (
	"context"
)

// User defines an external interface for exchanging information and sharing control with the user.
type User interface {
	// Run starts the user interface implementation and initialises any external connections.
	Run(ctx context.Context) error
	// Listen returns a channel of commands to the caller to interact with the user.
	// the caller needs to provide a unique subscription key.
	// additionally the caller can define a prefix to avoid being spammed with messages not relevant to them.
	Listen(key, prefix string) <-chan Command
	// Send sends a message to the user and returns the message ID
	Send(message *Message) int
}

// Notifier is the one-way part of the user interface used by background processes.
type Notifier interface {
	Send(message *Message) int
}

// ConsumerKey is the internal consumer key for indexing and managing consumers.
type ConsumerKey struct {
	Key    string
	Prefix string
}
