package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/drakos74/grid-coin/internal/api"
	"github.com/drakos74/grid-coin/internal/emoji"
	"github.com/drakos74/grid-coin/internal/feed"
	"github.com/drakos74/grid-coin/internal/model"
	"github.com/drakos74/grid-coin/internal/trader"
	"github.com/rs/zerolog/log"
)

const (
	// ConsumerKey is the key the controller listens to the user with.
	ConsumerKey = "conversation"

	// StartCommand restarts the conversation from any state.
	StartCommand = "/start"
	// ButtonBalance asks for the capital of the session.
	ButtonBalance = "Balance"
	// ButtonPrice asks for the current price of the traded coin.
	ButtonPrice = "Price"
	// ButtonStop stops trading and resets the capital.
	ButtonStop = "Stop trading"

	// Yes allows trading on the selected coin.
	Yes = "yes"
	// No declines trading and goes back to the coin menu.
	No = "no"
)

// Engine is the control surface of the trading loop.
type Engine interface {
	Start(ctx context.Context, coin model.Coin) error
	Stop() bool
	Status() trader.Status
	State() trader.RunState
}

// Controller walks the user through the coin selection and the trading authorization.
type Controller struct {
	user     api.User
	engine   Engine
	feed     feed.Feed
	coins    []model.Coin
	currency string
	users    map[string]struct{}
	machine  *Machine
	coin     model.Coin
	lock     *sync.Mutex
}

// NewController creates a new conversation controller.
func NewController(user api.User, engine Engine, f feed.Feed, currency string, coins ...model.Coin) *Controller {
	if len(coins) == 0 {
		coins = model.DefaultCoins
	}
	if currency == "" {
		currency = feed.DefaultCurrency
	}
	return &Controller{
		user:     user,
		engine:   engine,
		feed:     f,
		coins:    coins,
		currency: currency,
		users:    make(map[string]struct{}),
		machine:  NewMachine(),
		lock:     new(sync.Mutex),
	}
}

// AllowUsers restricts the conversation to the given user names.
func (c *Controller) AllowUsers(users ...string) *Controller {
	for u := range api.Contains(users...) {
		if u != "" {
			c.users[u] = struct{}{}
		}
	}
	return c
}

// State returns the current conversation state.
func (c *Controller) State() State {
	return c.machine.State()
}

// Coin returns the selected coin.
func (c *Controller) Coin() model.Coin {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.coin
}

// Run processes the user commands until the context is cancelled.
func (c *Controller) Run(ctx context.Context) {
	commands := c.user.Listen(ConsumerKey, "")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("closing conversation")
			c.engine.Stop()
			c.user.Send(api.NewMessage(fmt.Sprintf("%s GridCoin is going offline.", emoji.Close)).NoButtons())
			return
		case cmd, ok := <-commands:
			if !ok {
				return
			}
			c.handle(ctx, cmd)
		}
	}
}

func (c *Controller) handle(ctx context.Context, cmd api.Command) {
	if err := cmd.Validate(c.users, api.Any()); err != nil {
		log.Warn().Err(err).Str("user", cmd.User).Str("command", cmd.Content).Msg("invalid command")
		return
	}
	log.Debug().Str("user", cmd.User).Str("command", cmd.Content).Str("state", c.machine.State().String()).Msg("command")

	// the loop might have stopped on its own in the meantime
	var halted bool
	if c.machine.State() == Trading && c.engine.State() == trader.Stopped {
		c.fire(Halted)
		halted = true
	}

	event, ok := c.parse(cmd)
	if ok && !c.machine.Can(event) {
		log.Debug().Str("event", event.String()).Str("state", c.machine.State().String()).Msg("event ignored")
		ok = false
	}
	if !ok {
		if halted {
			c.reply(cmd, fmt.Sprintf("%s Trading %s has stopped.\nChoose a coin %s", emoji.Close, c.Coin(), emoji.Point), c.menu())
			return
		}
		c.reply(cmd, c.hint(), c.buttons())
		return
	}

	switch event {
	case Start:
		c.start(cmd)
	case Symbol:
		c.selectSymbol(ctx, cmd)
	case Authorize:
		c.authorize(ctx, cmd)
	case Decline:
		c.fire(Decline)
		c.reply(cmd, "Trading cancelled. Choose another coin:", c.menu())
	case Balance:
		status := c.engine.Status()
		c.reply(cmd, fmt.Sprintf("%s %s", emoji.MapOpen(status.Running), status.Summary.Format(c.currency)), c.buttons())
	case Price:
		c.price(ctx, cmd)
	case Stop:
		c.engine.Stop()
		c.fire(Stop)
		c.reply(cmd, fmt.Sprintf("%s Trading stopped and capital reset.", emoji.Close), c.menu())
	}
}

// parse maps the command to an event, given the current state.
func (c *Controller) parse(cmd api.Command) (Event, bool) {
	txt := cmd.Text()
	switch txt {
	case StartCommand:
		return Start, true
	case strings.ToLower(ButtonBalance):
		return Balance, true
	case strings.ToLower(ButtonPrice):
		return Price, true
	case strings.ToLower(ButtonStop), "stop":
		return Stop, true
	}
	switch c.machine.State() {
	case SelectingSymbol:
		if _, err := model.ParseCoin(txt, c.coins...); err == nil {
			return Symbol, true
		}
	case AwaitingAuthorization:
		var answer string
		if err := api.OneOf(&answer, Yes, No)(txt); err != nil {
			return 0, false
		}
		if answer == Yes {
			return Authorize, true
		}
		return Decline, true
	}
	return 0, false
}

func (c *Controller) start(cmd api.Command) {
	if c.engine.Stop() {
		log.Info().Str("user", cmd.User).Msg("trading stopped on restart")
	}
	c.fire(Start)
	c.setCoin(model.NoCoin)
	c.reply(cmd, fmt.Sprintf("%s Welcome to GridCoin, %s!\nThis bot runs a grid trading strategy on the coin of your choice.\nChoose a coin %s", emoji.Wave, cmd.User, emoji.Point), c.menu())
}

func (c *Controller) selectSymbol(ctx context.Context, cmd api.Command) {
	coin, err := model.ParseCoin(cmd.Text(), c.coins...)
	if err != nil {
		c.reply(cmd, c.hint(), c.menu())
		return
	}
	price, err := c.feed.Price(ctx, coin, c.currency)
	if err != nil {
		log.Error().Err(err).Str("coin", string(coin)).Msg("could not preview price")
		c.reply(cmd, fmt.Sprintf("%s\nPlease choose the coin again.", c.priceError(coin, err)), c.menu())
		return
	}
	c.setCoin(coin)
	c.fire(Symbol)
	c.reply(cmd, fmt.Sprintf("Current price %s: %.2f %s. Allow the bot to trade? (yes/no)", coin, price, c.currency), c.buttons())
}

func (c *Controller) authorize(ctx context.Context, cmd api.Command) {
	coin := c.Coin()
	if err := c.engine.Start(ctx, coin); err != nil {
		log.Error().Err(err).Str("coin", string(coin)).Msg("could not start trading")
		if errors.Is(err, trader.ErrRunning) {
			c.reply(cmd, fmt.Sprintf("%s Trading is already active, stop it first.", emoji.Warning), nil)
			return
		}
		c.fire(Decline)
		c.reply(cmd, fmt.Sprintf("%s\nChoose another coin:", c.priceError(coin, err)), c.menu())
		return
	}
	c.fire(Authorize)
	status := c.engine.Status()
	c.reply(cmd, fmt.Sprintf("%s Trading allowed for %s. Current price: %.2f %s.\nThe trades will show up below.", emoji.Open, coin, status.Summary.Price, c.currency),
		tradingButtons())
}

func (c *Controller) price(ctx context.Context, cmd api.Command) {
	coin := c.Coin()
	if coin == model.NoCoin {
		c.reply(cmd, "Choose a coin first.", nil)
		return
	}
	price, err := c.feed.Price(ctx, coin, c.currency)
	if err != nil {
		c.reply(cmd, c.priceError(coin, err), nil)
		return
	}
	c.reply(cmd, fmt.Sprintf("Current price %s: %.2f %s", coin, price, c.currency), nil)
}

func (c *Controller) priceError(coin model.Coin, err error) string {
	if errors.Is(err, feed.ErrUnknownSymbol) {
		return fmt.Sprintf("%s Coin %s not found.", emoji.Error, coin)
	}
	return fmt.Sprintf("%s Could not get the price for %s.", emoji.Error, coin)
}

// hint tells the user what is expected in the current state.
func (c *Controller) hint() string {
	switch c.machine.State() {
	case SelectingSymbol:
		return "Please choose one of the listed coins."
	case AwaitingAuthorization:
		return "Please answer 'yes' or 'no'."
	case Trading:
		return fmt.Sprintf("Trading %s, use the buttons below to follow the session.", c.Coin())
	}
	return fmt.Sprintf("Send %s to begin.", StartCommand)
}

// buttons returns the keyboard matching the current state.
func (c *Controller) buttons() [][]string {
	switch c.machine.State() {
	case SelectingSymbol:
		return c.menu()
	case AwaitingAuthorization:
		return [][]string{{Yes, No}}
	case Trading:
		return tradingButtons()
	}
	return nil
}

func tradingButtons() [][]string {
	return [][]string{{ButtonBalance, ButtonPrice}, {ButtonStop}}
}

func (c *Controller) menu() [][]string {
	labels := make([]string, len(c.coins))
	for i, coin := range c.coins {
		labels[i] = string(coin)
	}
	return api.Grid(2, labels...)
}

func (c *Controller) fire(e Event) {
	from := c.machine.State()
	to, err := c.machine.Fire(e)
	if err != nil {
		log.Error().Err(err).Msg("conversation transition")
		return
	}
	log.Debug().Str("from", from.String()).Str("to", to.String()).Str("event", e.String()).Msg("conversation")
}

func (c *Controller) setCoin(coin model.Coin) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.coin = coin
}

func (c *Controller) reply(cmd api.Command, txt string, buttons [][]string) {
	msg := api.NewMessage(txt).ReplyTo(cmd.ID)
	if buttons != nil {
		msg.WithButtons(buttons...)
	}
	c.user.Send(msg)
}
