package watch

import (
	"context"
	"sync"
	"time"

	"github.com/rulekit/rulekit/internal/logging"
)

// State is the engine's lifecycle phase.
type State string

const (
	StateIdle       State = "idle"
	StateWatching   State = "watching"
	StateDebouncing State = "debouncing"
	StateSyncing    State = "syncing"
)

// DefaultDebounce is how long the engine waits after the last change
// before syncing. Editors often write a file several times in quick
// succession; the quiet period collapses the burst into one run.
const DefaultDebounce = 500 * time.Millisecond

// SyncFunc runs one full sync pass.
type SyncFunc func(ctx context.Context) error

// Engine drives the watch loop. Change notifications move it from
// watching to debouncing; a quiet period moves it to syncing; the sync
// runs on the engine's own goroutine, so runs never overlap. Changes
// arriving during a sync are buffered and handled after it completes.
type Engine struct {
	syncFn   SyncFunc
	debounce time.Duration
	events   chan string

	mu           sync.Mutex
	state        State
	onTransition func(from, to State)
}

// NewEngine creates an engine in the idle state.
func NewEngine(syncFn SyncFunc, debounce time.Duration) *Engine {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Engine{
		syncFn:   syncFn,
		debounce: debounce,
		events:   make(chan string, eventBufferSize),
		state:    StateIdle,
	}
}

// OnTransition registers a callback invoked on every state change. Set
// it before calling Run.
func (e *Engine) OnTransition(fn func(from, to State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTransition = fn
}

// State returns the current lifecycle phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Notify feeds a change into the engine. It never blocks; when the
// buffer is full the change is dropped, which is safe because any
// pending event already schedules a full sync.
func (e *Engine) Notify(path string) {
	select {
	case e.events <- path:
	default:
	}
}

// Run executes the watch loop until ctx is cancelled. It returns nil on
// cancellation; sync failures are logged and the loop continues.
func (e *Engine) Run(ctx context.Context) error {
	e.setState(StateWatching)
	defer e.setState(StateIdle)

	timer := time.NewTimer(e.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case path := <-e.events:
			logging.Debug("scheduling sync", logging.Path(path))
			if timerC == nil {
				e.setState(StateDebouncing)
			} else if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(e.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			e.setState(StateSyncing)
			if err := e.syncFn(ctx); err != nil {
				logging.Error("sync failed", logging.Err(err))
			}
			e.setState(StateWatching)
		}
	}
}

func (e *Engine) setState(to State) {
	e.mu.Lock()
	from := e.state
	e.state = to
	fn := e.onTransition
	e.mu.Unlock()

	if fn != nil && from != to {
		fn(from, to)
	}
}
