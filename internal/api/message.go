package api

import (
	"fmt"
	"time"
)

// Message defines a message that should be sent to the user or group.
type Message struct {
	Text  string
	Reply int
	Time  time.Time
	// Buttons is the keyboard layout to present along with the message, row by row.
	Buttons [][]string
	// RemoveButtons signals that any previously presented keyboard should be removed.
	RemoveButtons bool
}

// NewMessage creates a new message.
func NewMessage(txt string) *Message {
	return &Message{
		Text: txt,
		Time: time.Now(),
	}
}

// ReplyTo defines a message id that this message refers to.
func (m *Message) ReplyTo(msgID int) *Message {
	m.Reply = msgID
	return m
}

// AddLine adds a line argument to the message.
func (m *Message) AddLine(txt string) *Message {
	m.Text = fmt.Sprintf("%s\n%s", m.Text, txt)
	return m
}

// WithButtons attaches a keyboard to the message, one row per argument.
func (m *Message) WithButtons(rows ...[]string) *Message {
	m.Buttons = rows
	m.RemoveButtons = false
	return m
}

// NoButtons removes any keyboard from the user's view.
func (m *Message) NoButtons() *Message {
	m.Buttons = nil
	m.RemoveButtons = true
	return m
}

// Grid arranges the given labels into rows of the given width.
func Grid(width int, labels ...string) [][]string {
	if width <= 0 {
		width = 1
	}
	rows := make([][]string, 0, len(labels)/width+1)
	for i := 0; i < len(labels); i += width {
		end := i + width
		if end > len(labels) {
			end = len(labels)
		}
		rows = append(rows, labels[i:end])
	}
	return rows
}
