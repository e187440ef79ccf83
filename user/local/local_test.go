package local

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/drakos74/grid-coin/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Send(t *testing.T) {
	out := new(bytes.Buffer)
	u, err := NewUser(filepath.Join(t.TempDir(), "messages.log"))
	require.NoError(t, err)
	u.WithOutput(out)

	id := u.Send(api.NewMessage("choose a coin").WithButtons(api.Grid(2, "BTC", "ETH", "SOL")...))
	assert.Equal(t, 1, id)
	assert.Len(t, u.Messages, 1)

	txt := out.String()
	assert.Contains(t, txt, "choose a coin")
	assert.Contains(t, txt, "[ BTC | ETH ]")
	assert.Contains(t, txt, "[ SOL ]")
}

func TestUser_Run(t *testing.T) {
	u, err := NewUser("")
	require.NoError(t, err)
	u.WithInput(strings.NewReader("/start\n\nBTC\nyes\n")).As("alice")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	commands := u.Listen("test", "")
	require.NoError(t, u.Run(ctx))

	expected := []string{"/start", "BTC", "yes"}
	for _, e := range expected {
		select {
		case cmd := <-commands:
			assert.Equal(t, e, cmd.Content)
			assert.Equal(t, "alice", cmd.User)
		case <-time.After(time.Second):
			t.Fatalf("command '%s' not received", e)
		}
	}
}

func TestMockUser(t *testing.T) {

	type test struct {
		prefix string
		text   string
		sent   bool
	}

	tests := map[string]test{
		"any": {
			text: "hello",
			sent: true,
		},
		"prefix": {
			prefix: "/",
			text:   "/start",
			sent:   true,
		},
		"no-match": {
			prefix: "/",
			text:   "start",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m := NewMockUser()
			commands := m.Listen(name, tt.prefix)
			received := make(chan api.Command, 1)
			go func() {
				received <- <-commands
			}()
			sent := m.MockMessage(tt.text, "bob")
			assert.Equal(t, tt.sent, sent)
			if tt.sent {
				cmd := <-received
				assert.Equal(t, tt.text, cmd.Content)
				assert.Equal(t, "bob", cmd.User)
			}

			m.Send(api.NewMessage(tt.text))
			msg, err := m.Next(time.Second)
			assert.NoError(t, err)
			assert.Equal(t, tt.text, msg.Text)
		})
	}
}
