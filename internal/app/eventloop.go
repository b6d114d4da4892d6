package app

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/dshills/mcode/internal/event"
	"github.com/dshills/mcode/internal/renderer/backend"
)

// eventLoop is the main application loop. It renders after each batch of
// events and returns when quit is requested or the queue closes.
func (app *Application) eventLoop() error {
	pollCtx, stopPoll := context.WithCancel(app.ctx)
	defer stopPoll()
	go app.pollInput(pollCtx)

	app.render()
	for {
		select {
		case ev := <-app.queue.Events():
			app.handle(ev)
			// Drain what is already queued before drawing.
			for more := true; more && !app.quit; {
				select {
				case ev := <-app.queue.Events():
					app.handle(ev)
				default:
					more = false
				}
			}
			if app.quit {
				return nil
			}
			app.render()

		case <-app.queue.Done():
			return nil
		}
	}
}

// handle dispatches one event. Panics outside the dispatcher's own
// recovery, such as in rendering helpers, become status notices.
func (app *Application) handle(ev event.Event) {
	defer func() {
		if r := recover(); r != nil {
			perr := &RecoveredPanicError{Value: r, Stack: string(debug.Stack())}
			app.logger.Error("event loop panic", zap.Any("panic", r), zap.String("stack", perr.Stack))
			app.status.Error(perr)
		}
		if app.stale {
			app.relayout()
		}
	}()
	app.dispatcher.Dispatch(ev)
}

// pollInput forwards backend events to the queue. PollEvent blocks; the
// backend's Shutdown unblocks it with EventInterrupt.
func (app *Application) pollInput(ctx context.Context) {
	for {
		bev := app.backend.PollEvent()
		if bev.Type == backend.EventInterrupt || ctx.Err() != nil {
			return
		}
		ev := event.FromBackend(bev)
		if ev == nil {
			continue
		}
		if err := app.queue.Post(ctx, ev); err != nil {
			return
		}
	}
}

// HandleKey runs the action bound to the key, if any.
func (app *Application) HandleKey(ev event.Key) bool {
	name, ok := app.keymap.Lookup(ev)
	if !ok {
		return false
	}
	if err := app.Execute(name); err != nil {
		if errors.Is(err, ErrQuit) {
			app.quit = true
			return true
		}
		app.notifyError(err)
	}
	return true
}

// Execute runs a named action.
func (app *Application) Execute(name string) error {
	fn, ok := app.actions[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	app.logger.Debug("action", zap.String("name", name))
	return fn()
}

// HandleResize re-lays out the window.
func (app *Application) HandleResize(ev event.Resize) {
	app.width, app.height = ev.Width, ev.Height
	app.relayout()
}

// HandleGeometry re-lays out the window for a geometry change reported
// from outside the editor.
func (app *Application) HandleGeometry(event.Geometry) {
	app.relayout()
}
