package trader

import "sync/atomic"

// RunState is the state of the trading loop.
type RunState int32

const (
	// Stopped means no loop is ticking.
	Stopped RunState = iota
	// Active means the loop is ticking for a coin.
	Active
)

func (s RunState) String() string {
	switch s {
	case Active:
		return "active"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// state is a run state that is safe to share between the loop and its controller.
type state struct {
	v int32
}

func (s *state) get() RunState {
	return RunState(atomic.LoadInt32(&s.v))
}

func (s *state) swap(from, to RunState) bool {
	return atomic.CompareAndSwapInt32(&s.v, int32(from), int32(to))
}
