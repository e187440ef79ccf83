package conversation

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned when an event is not allowed in the current state.
var ErrInvalidTransition = errors.New("invalid transition")

// State is the stage of the conversation with the user.
type State int

const (
	// Idle is the state before the user has started the conversation.
	Idle State = iota
	// SelectingSymbol waits for the user to pick a coin.
	SelectingSymbol
	// AwaitingAuthorization waits for the user to allow trading on the selected coin.
	AwaitingAuthorization
	// Trading means the trading loop is running for the selected coin.
	Trading
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SelectingSymbol:
		return "selecting-symbol"
	case AwaitingAuthorization:
		return "awaiting-authorization"
	case Trading:
		return "trading"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event is an input that can move the conversation to another state.
type Event int

const (
	// Start restarts the conversation from any state.
	Start Event = iota
	// Symbol is the selection of a coin.
	Symbol
	// Authorize allows trading on the selected coin.
	Authorize
	// Decline refuses trading on the selected coin.
	Decline
	// Stop halts trading on request of the user.
	Stop
	// Halted signals the trading loop stopped on its own.
	Halted
	// Balance asks for the current capital.
	Balance
	// Price asks for the current price of the selected coin.
	Price
)

func (e Event) String() string {
	switch e {
	case Start:
		return "start"
	case Symbol:
		return "symbol"
	case Authorize:
		return "authorize"
	case Decline:
		return "decline"
	case Stop:
		return "stop"
	case Halted:
		return "halted"
	case Balance:
		return "balance"
	case Price:
		return "price"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

type transition struct {
	from  State
	event Event
}

// transitions is the complete table of allowed moves, anything else is rejected.
var transitions = map[transition]State{
	{Idle, Start}:                      SelectingSymbol,
	{SelectingSymbol, Start}:           SelectingSymbol,
	{AwaitingAuthorization, Start}:     SelectingSymbol,
	{Trading, Start}:                   SelectingSymbol,
	{SelectingSymbol, Symbol}:          AwaitingAuthorization,
	{AwaitingAuthorization, Authorize}: Trading,
	{AwaitingAuthorization, Decline}:   SelectingSymbol,
	{Trading, Stop}:                    SelectingSymbol,
	{Trading, Halted}:                  SelectingSymbol,
	{Trading, Balance}:                 Trading,
	{Trading, Price}:                   Trading,
	{SelectingSymbol, Balance}:         SelectingSymbol,
}

// Machine is the conversation state machine.
type Machine struct {
	state State
	lock  *sync.RWMutex
}

// NewMachine creates a new state machine in the Idle state.
func NewMachine() *Machine {
	return &Machine{
		state: Idle,
		lock:  new(sync.RWMutex),
	}
}

// State returns the current state.
func (m *Machine) State() State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.state
}

// Can checks if the event is allowed in the current state.
func (m *Machine) Can(e Event) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := transitions[transition{m.state, e}]
	return ok
}

// Fire applies the event and returns the new state.
func (m *Machine) Fire(e Event) (State, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	next, ok := transitions[transition{m.state, e}]
	if !ok {
		return m.state, fmt.Errorf("'%s' in state '%s': %w", e, m.state, ErrInvalidTransition)
	}
	m.state = next
	return next, nil
}
