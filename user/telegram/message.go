package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/drakos74/grid-coin/internal/api"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/rs/zerolog/log"
)

// newMessage creates a new telegram message config, buttons are rendered as a reply keyboard.
func newMessage(chatID int64, message *api.Message) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, message.Text)
	if message.Reply > 0 {
		msg.ReplyToMessageID = message.Reply
	}
	if len(message.Buttons) > 0 {
		rows := make([][]tgbotapi.KeyboardButton, 0, len(message.Buttons))
		for _, row := range message.Buttons {
			buttons := make([]tgbotapi.KeyboardButton, len(row))
			for i, label := range row {
				buttons[i] = tgbotapi.NewKeyboardButton(label)
			}
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
		}
		keyboard := tgbotapi.NewReplyKeyboard(rows...)
		keyboard.ResizeKeyboard = true
		msg.ReplyMarkup = keyboard
	} else if message.RemoveButtons {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}
	return msg
}

// listenToUpdates listens to updates for the telegram bot.
func (b *Bot) listenToUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				log.Info().Msg("updates closed")
				return
			}
			if update.Message == nil { // ignore any non-Message Updates
				continue
			}

			var chatID int64
			if update.Message.Chat != nil {
				chatID = update.Message.Chat.ID
			}
			var user string
			if update.Message.From != nil {
				user = update.Message.From.UserName
			}
			if b.chatID != 0 && chatID != b.chatID {
				log.Warn().
					Str("from", user).
					Int64("chat", chatID).
					Msg("message from unknown chat")
				continue
			}
			log.Info().
				Str("from", user).
				Str("text", update.Message.Text).
				Int64("chat", chatID).
				Msg("message received")

			b.lock.Lock()
			if chatID != 0 {
				b.lastChatID = chatID
			}
			consumers := make(map[api.ConsumerKey]chan api.Command, len(b.consumers))
			for k, c := range b.consumers {
				consumers[k] = c
			}
			b.lock.Unlock()

			for k, consumer := range consumers {
				// propagate the message
				if strings.HasPrefix(update.Message.Text, k.Prefix) {
					log.Debug().
						Str("from", user).
						Str("text", update.Message.Text).
						Str("consumer", fmt.Sprintf("%+v", k)).
						Msg("message propagated")
					select {
					case consumer <- api.Command{
						ID:      update.Message.MessageID,
						User:    user,
						Content: update.Message.Text,
					}:
					case <-time.After(1 * time.Second):
						log.Warn().Str("prefix", k.Prefix).Str("consumer", fmt.Sprintf("%+v", k)).Str("command", update.Message.Text).Msg("consumer did not receive command")
					}
				}
			}
		case <-ctx.Done():
			log.Info().Msg("closing bot")
			return
		}
	}
}
