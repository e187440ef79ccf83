package local

import (
	"context"
	"fmt"
	"time"

	"github.com/drakos74/grid-coin/internal/api"
)

// MockUser is a user for tests, it exposes every message sent to it on a channel.
type MockUser struct {
	*User
	Messages chan api.Message
}

// NewMockUser creates a new mock user.
func NewMockUser() *MockUser {
	user, _ := NewUser("")
	user.in = nil
	user.out = nil
	return &MockUser{
		User:     user,
		Messages: make(chan api.Message, 100),
	}
}

// MustMockMessage sends the text as a command from the given user and panics if nobody listens.
func (m *MockUser) MustMockMessage(s string, user string) {
	if !m.MockMessage(s, user) {
		panic(fmt.Sprintf("could not send message: %s", s))
	}
}

// MockMessage sends the text as a command from the given user.
func (m *MockUser) MockMessage(s string, user string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return m.dispatch(ctx, s, user)
}

// Send implements the api.User interface.
func (m *MockUser) Send(message *api.Message) int {
	id := m.User.Send(message)
	m.Messages <- *message
	return id
}

// Next waits for the next message.
func (m *MockUser) Next(timeout time.Duration) (api.Message, error) {
	select {
	case msg := <-m.Messages:
		return msg, nil
	case <-time.After(timeout):
		return api.Message{}, fmt.Errorf("no message received after %v", timeout)
	}
}
