package telegram

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/drakos74/grid-coin/internal/api"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBot struct {
	input  chan tgbotapi.Update
	output chan tgbotapi.MessageConfig
}

func (m *mockBot) GetUpdatesChan(config tgbotapi.UpdateConfig) (tgbotapi.UpdatesChannel, error) {
	return m.input, nil
}

func (m *mockBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.output <- msg
	}
	return tgbotapi.Message{MessageID: 7}, nil
}

func newMockBot(input chan tgbotapi.Update, output chan tgbotapi.MessageConfig, chatID int64) *Bot {
	return newBot(&mockBot{input: input, output: output}, chatID)
}

func update(chatID int64, user, txt string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: rand.Int(),
			From: &tgbotapi.User{
				UserName: user,
			},
			Chat: &tgbotapi.Chat{
				ID: chatID,
			},
			Text: txt,
		},
	}
}

func TestBot_Listen(t *testing.T) {

	in := make(chan tgbotapi.Update)
	out := make(chan tgbotapi.MessageConfig)
	b := newMockBot(in, out, 0)
	cc := b.Listen("my-consumer", "1")

	ctx, cnl := context.WithCancel(context.Background())
	err := b.Run(ctx)
	assert.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(10)

	var producerCount int64
	var validMessageCount int64
	go func() {
		for {
			index := rand.Intn(3)
			in <- update(1, "@user", fmt.Sprintf("%d ... my-message", index))
			atomic.AddInt64(&producerCount, 1)
			if index == 1 {
				if atomic.AddInt64(&validMessageCount, 1) >= 10 {
					return
				}
			}
		}
	}()

	var count int64
	go func() {
		for c := range cc {
			// check we only got messages with our predefined prefix
			assert.True(t, strings.HasPrefix(c.Content, "1"))
			atomic.AddInt64(&count, 1)
			wg.Done()
		}
	}()

	wg.Wait()
	cnl()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&validMessageCount) == 10
	}, time.Second, time.Millisecond)
	assert.Equal(t, int64(10), atomic.LoadInt64(&count))
	assert.True(t, atomic.LoadInt64(&producerCount) >= atomic.LoadInt64(&count))

}

func TestBot_ChatRestriction(t *testing.T) {
	in := make(chan tgbotapi.Update)
	out := make(chan tgbotapi.MessageConfig, 1)
	b := newMockBot(in, out, 42)
	ctx, cnl := context.WithCancel(context.Background())
	defer cnl()
	require.NoError(t, b.Run(ctx))

	cc := b.Listen("conversation", "")

	in <- update(13, "mallory", "/start")
	in <- update(42, "alice", "/start")

	select {
	case cmd := <-cc:
		assert.Equal(t, "alice", cmd.User)
		assert.Equal(t, "/start", cmd.Content)
	case <-time.After(time.Second):
		t.Fatal("command not received")
	}
}

func TestBot_Send(t *testing.T) {

	type test struct {
		chatID  int64
		message *api.Message
		id      int
		markup  func(t *testing.T, markup interface{})
	}

	tests := map[string]test{
		"no-chat": {
			message: api.NewMessage("hello"),
		},
		"text": {
			chatID:  42,
			message: api.NewMessage("hello").ReplyTo(3),
			id:      7,
			markup: func(t *testing.T, markup interface{}) {
				assert.Nil(t, markup)
			},
		},
		"keyboard": {
			chatID:  42,
			message: api.NewMessage("choose").WithButtons(api.Grid(2, "BTC", "ETH", "SOL")...),
			id:      7,
			markup: func(t *testing.T, markup interface{}) {
				keyboard, ok := markup.(tgbotapi.ReplyKeyboardMarkup)
				require.True(t, ok)
				assert.True(t, keyboard.ResizeKeyboard)
				require.Len(t, keyboard.Keyboard, 2)
				assert.Len(t, keyboard.Keyboard[0], 2)
				assert.Equal(t, "ETH", keyboard.Keyboard[0][1].Text)
				assert.Equal(t, "SOL", keyboard.Keyboard[1][0].Text)
			},
		},
		"remove-keyboard": {
			chatID:  42,
			message: api.NewMessage("bye").NoButtons(),
			id:      7,
			markup: func(t *testing.T, markup interface{}) {
				remove, ok := markup.(tgbotapi.ReplyKeyboardRemove)
				require.True(t, ok)
				assert.True(t, remove.RemoveKeyboard)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out := make(chan tgbotapi.MessageConfig, 1)
			b := newMockBot(make(chan tgbotapi.Update), out, tt.chatID)
			id := b.Send(tt.message)
			assert.Equal(t, tt.id, id)
			if tt.markup == nil {
				assert.Len(t, out, 0)
				return
			}
			msg := <-out
			assert.Equal(t, tt.chatID, msg.ChatID)
			assert.Equal(t, tt.message.Text, msg.Text)
			assert.Equal(t, tt.message.Reply, msg.ReplyToMessageID)
			tt.markup(t, msg.ReplyMarkup)
		})
	}
}

func TestBot_SendToLastChat(t *testing.T) {
	in := make(chan tgbotapi.Update)
	out := make(chan tgbotapi.MessageConfig, 1)
	b := newMockBot(in, out, 0)
	ctx, cnl := context.WithCancel(context.Background())
	defer cnl()
	require.NoError(t, b.Run(ctx))

	cc := b.Listen("conversation", "")
	in <- update(99, "alice", "/start")
	<-cc

	assert.Equal(t, 7, b.Send(api.NewMessage("welcome")))
	msg := <-out
	assert.Equal(t, int64(99), msg.ChatID)
}

func TestBot_SendError(t *testing.T) {
	b := newBot(Void{}, 42)
	assert.Equal(t, 0, b.Send(api.NewMessage("lost")))
}
