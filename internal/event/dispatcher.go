package event

import (
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// KeyHandler consumes key presses. It returns true when the key was
// handled; later handlers then do not see it.
type KeyHandler interface {
	HandleKey(ev Key) bool
}

// MouseHandler consumes mouse presses.
type MouseHandler interface {
	HandleMouse(ev Mouse) bool
}

// ResizeHandler reacts to window size changes.
type ResizeHandler interface {
	HandleResize(ev Resize)
}

// ScrollHandler consumes scroll requests.
type ScrollHandler interface {
	HandleScroll(ev Scroll) bool
}

// GeometryHandler reacts to text area origin changes.
type GeometryHandler interface {
	HandleGeometry(ev Geometry)
}

// ChildHandler receives shell session output and exit notices.
type ChildHandler interface {
	HandleChildOutput(ev ChildOutput)
	HandleChildExited(ev ChildExited)
}

// RunHandler receives run-current-file results.
type RunHandler interface {
	HandleRunFinished(ev RunFinished)
}

// ConfigHandler receives configuration reloads.
type ConfigHandler interface {
	HandleConfigReloaded(ev ConfigReloaded)
}

// Dispatcher routes each event to every registered component that has
// the matching capability, in registration order.
type Dispatcher struct {
	mu sync.RWMutex

	keys     []KeyHandler
	mice     []MouseHandler
	resizes  []ResizeHandler
	scrolls  []ScrollHandler
	geometry []GeometryHandler
	children []ChildHandler
	runs     []RunHandler
	configs  []ConfigHandler

	onPanic func(*PanicError)
	logger  *zap.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithPanicHandler sets the function called after a handler panic has
// been recovered.
func WithPanicHandler(fn func(*PanicError)) DispatcherOption {
	return func(d *Dispatcher) {
		d.onPanic = fn
	}
}

// WithLogger sets the dispatcher's logger.
func WithLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds a component under every capability it implements.
func (d *Dispatcher) Register(c any) error {
	if c == nil {
		return ErrNilHandler
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	found := false
	if h, ok := c.(KeyHandler); ok {
		d.keys = append(d.keys, h)
		found = true
	}
	if h, ok := c.(MouseHandler); ok {
		d.mice = append(d.mice, h)
		found = true
	}
	if h, ok := c.(ResizeHandler); ok {
		d.resizes = append(d.resizes, h)
		found = true
	}
	if h, ok := c.(ScrollHandler); ok {
		d.scrolls = append(d.scrolls, h)
		found = true
	}
	if h, ok := c.(GeometryHandler); ok {
		d.geometry = append(d.geometry, h)
		found = true
	}
	if h, ok := c.(ChildHandler); ok {
		d.children = append(d.children, h)
		found = true
	}
	if h, ok := c.(RunHandler); ok {
		d.runs = append(d.runs, h)
		found = true
	}
	if h, ok := c.(ConfigHandler); ok {
		d.configs = append(d.configs, h)
		found = true
	}

	if !found {
		return ErrNoCapability
	}
	return nil
}

// Dispatch delivers ev. It reports whether a consuming handler (key,
// mouse, scroll) claimed the event; broadcast events always report true
// when at least one handler received them. A panicking handler is
// recovered and reported; delivery continues with the next handler.
func (d *Dispatcher) Dispatch(ev Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	switch e := ev.(type) {
	case Key:
		for _, h := range d.keys {
			if d.consume(ev, func() bool { return h.HandleKey(e) }) {
				return true
			}
		}
	case Mouse:
		for _, h := range d.mice {
			if d.consume(ev, func() bool { return h.HandleMouse(e) }) {
				return true
			}
		}
	case Scroll:
		for _, h := range d.scrolls {
			if d.consume(ev, func() bool { return h.HandleScroll(e) }) {
				return true
			}
		}
	case Resize:
		for _, h := range d.resizes {
			d.call(ev, func() { h.HandleResize(e) })
		}
		return len(d.resizes) > 0
	case Geometry:
		for _, h := range d.geometry {
			d.call(ev, func() { h.HandleGeometry(e) })
		}
		return len(d.geometry) > 0
	case ChildOutput:
		for _, h := range d.children {
			d.call(ev, func() { h.HandleChildOutput(e) })
		}
		return len(d.children) > 0
	case ChildExited:
		for _, h := range d.children {
			d.call(ev, func() { h.HandleChildExited(e) })
		}
		return len(d.children) > 0
	case RunFinished:
		for _, h := range d.runs {
			d.call(ev, func() { h.HandleRunFinished(e) })
		}
		return len(d.runs) > 0
	case ConfigReloaded:
		for _, h := range d.configs {
			d.call(ev, func() { h.HandleConfigReloaded(e) })
		}
		return len(d.configs) > 0
	}
	return false
}

func (d *Dispatcher) consume(ev Event, fn func() bool) (handled bool) {
	d.call(ev, func() { handled = fn() })
	return handled
}

func (d *Dispatcher) call(ev Event, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			perr := &PanicError{Event: ev, Value: r, Stack: string(debug.Stack())}
			d.logger.Error("event handler panicked",
				zap.String("event", eventName(ev)),
				zap.Any("panic", r),
				zap.String("stack", perr.Stack))
			if d.onPanic != nil {
				d.onPanic(perr)
			}
		}
	}()
	fn()
}

func eventName(ev Event) string {
	switch ev.(type) {
	case Key:
		return "key"
	case Mouse:
		return "mouse"
	case Resize:
		return "resize"
	case Scroll:
		return "scroll"
	case Geometry:
		return "geometry"
	case ChildOutput:
		return "child_output"
	case ChildExited:
		return "child_exited"
	case RunFinished:
		return "run_finished"
	case ConfigReloaded:
		return "config_reloaded"
	default:
		return "unknown"
	}
}
