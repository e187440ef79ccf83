package telegram

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/drakos74/grid-coin/internal/api"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/rs/zerolog/log"
)

const (
	// Name is the name of the telegram user interface.
	Name             = "telegram"
	telegramBotToken = "TELEGRAM_BOT_TOKEN"
	telegramChatID   = "TELEGRAM_CHAT_ID"
)

type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) (tgbotapi.UpdatesChannel, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot defines the telegram bot api.User implementation.
type Bot struct {
	bot botAPI
	// chatID restricts the bot to a single chat, if set.
	chatID int64
	// lastChatID is the chat the bot last heard from, messages go there if no chat is configured.
	lastChatID int64
	consumers  map[api.ConsumerKey]chan api.Command
	lock       *sync.Mutex
}

// NewBot creates a new telegram bot implementing the api.User interface.
func NewBot() (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(os.Getenv(telegramBotToken))
	if err != nil {
		return nil, fmt.Errorf("error creating bot: %w", err)
	}
	var chatID int64
	if chatIDProperty := os.Getenv(telegramChatID); chatIDProperty != "" {
		chatID, err = strconv.ParseInt(chatIDProperty, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing chat ID: %w", err)
		}
	}
	//bot.Debug = true
	bot.Buffer = 0
	log.Info().Str("account", bot.Self.UserName).Int64("chat", chatID).Msg("telegram bot authorised")
	return newBot(bot, chatID), nil
}

func newBot(bot botAPI, chatID int64) *Bot {
	return &Bot{
		bot:        bot,
		chatID:     chatID,
		lastChatID: chatID,
		consumers:  make(map[api.ConsumerKey]chan api.Command),
		lock:       new(sync.Mutex),
	}
}

// Run starts the Bot and polls for updates from telegram.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 10

	updates, err := b.bot.GetUpdatesChan(u)
	if err != nil {
		return err
	}

	go b.listenToUpdates(ctx, updates)
	return nil
}

// Listen exposes a channel to the caller with updates for the given prefix.
func (b *Bot) Listen(key, prefix string) <-chan api.Command {
	b.lock.Lock()
	defer b.lock.Unlock()
	ch := make(chan api.Command)
	b.consumers[api.ConsumerKey{
		Key:    key,
		Prefix: prefix,
	}] = ch
	return ch
}

// Send sends the given message to the telegram chat.
func (b *Bot) Send(message *api.Message) int {
	chatID := b.chat()
	if chatID == 0 {
		log.Warn().Str("text", message.Text).Msg("no chat to send message to")
		return 0
	}
	sent, err := b.bot.Send(newMessage(chatID, message))
	if err != nil {
		log.Err(err).Int64("chat", chatID).Msg("could not send message")
		return 0
	}
	return sent.MessageID
}

func (b *Bot) chat() int64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.lastChatID
}
