package local

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/drakos74/grid-coin/internal/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// Name is the name of the console user interface.
	Name       = "local"
	dateFormat = "Jan _2 15:04:05"
)

// User is a console user interface.
// It reads commands line by line from its input and writes the messages to its output.
type User struct {
	name      string
	in        io.Reader
	out       io.Writer
	logger    *zerolog.Logger
	consumers map[api.ConsumerKey]chan api.Command
	Messages  []api.Message
	count     int
	lock      *sync.RWMutex
}

// NewUser creates a new console user.
// If a file path is given, all messages are additionally logged to that file.
func NewUser(l string) (*User, error) {
	var logger *zerolog.Logger
	if l != "" {
		privateFile, err := os.OpenFile(l, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			return nil, fmt.Errorf("could not open message log '%s': %w", l, err)
		}
		lg := zerolog.New(privateFile).With().Timestamp().Logger()
		logger = &lg
	}

	return &User{
		name:      Name,
		in:        os.Stdin,
		out:       os.Stdout,
		logger:    logger,
		consumers: make(map[api.ConsumerKey]chan api.Command),
		Messages:  make([]api.Message, 0),
		lock:      new(sync.RWMutex),
	}, nil
}

// WithInput sets the source of the user commands.
func (u *User) WithInput(r io.Reader) *User {
	u.in = r
	return u
}

// WithOutput sets the destination of the messages.
func (u *User) WithOutput(w io.Writer) *User {
	u.out = w
	return u
}

// As sets the user name the commands are issued by.
func (u *User) As(name string) *User {
	u.name = name
	return u
}

// Run reads the input in the background until it is exhausted or the context is cancelled.
func (u *User) Run(ctx context.Context) error {
	if u.in == nil {
		return nil
	}
	go func() {
		scanner := bufio.NewScanner(u.in)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			u.dispatch(ctx, line, u.name)
		}
		if err := scanner.Err(); err != nil {
			log.Error().Err(err).Msg("could not read user input")
		}
	}()
	return nil
}

// Listen implements the api.User interface.
func (u *User) Listen(key, prefix string) <-chan api.Command {
	u.lock.Lock()
	defer u.lock.Unlock()
	ch := make(chan api.Command)
	u.consumers[api.ConsumerKey{
		Key:    key,
		Prefix: prefix,
	}] = ch
	return ch
}

// Send implements the api.User interface.
func (u *User) Send(message *api.Message) int {
	u.lock.Lock()
	defer u.lock.Unlock()
	u.count++
	u.Messages = append(u.Messages, *message)
	if u.logger != nil {
		u.logger.Info().Int("id", u.count).Str("text", message.Text).Msg("message")
	}
	if u.out != nil {
		fmt.Fprintf(u.out, "%s | %s\n", message.Time.Format(dateFormat), message.Text)
		for _, row := range message.Buttons {
			fmt.Fprintf(u.out, "  [ %s ]\n", strings.Join(row, " | "))
		}
	}
	return u.count
}

// dispatch propagates the command to all consumers with a matching prefix.
func (u *User) dispatch(ctx context.Context, txt, user string) bool {
	u.lock.Lock()
	u.count++
	cmd := api.NewCommand(u.count, user, txt)
	consumers := make([]chan api.Command, 0, len(u.consumers))
	for k, ch := range u.consumers {
		if strings.HasPrefix(txt, k.Prefix) {
			consumers = append(consumers, ch)
		}
	}
	u.lock.Unlock()

	for _, ch := range consumers {
		select {
		case ch <- cmd:
		case <-ctx.Done():
			return false
		}
	}
	return len(consumers) > 0
}
