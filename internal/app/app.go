// Package app provides the main application structure and coordination
// for the mcode editor. It wires the editor buffer, the terminal panel and
// the runner to the display backend and owns the single event loop.
package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/mcode/internal/config"
	"github.com/dshills/mcode/internal/editor"
	"github.com/dshills/mcode/internal/event"
	"github.com/dshills/mcode/internal/integration/process"
	"github.com/dshills/mcode/internal/integration/runner"
	"github.com/dshills/mcode/internal/integration/shell"
	"github.com/dshills/mcode/internal/renderer/backend"
	"github.com/dshills/mcode/internal/renderer/highlight"
)

// Focus identifies the pane receiving text input.
type Focus int

const (
	FocusEditor Focus = iota
	FocusTerminal
)

func (f Focus) String() string {
	if f == FocusTerminal {
		return "terminal"
	}
	return "editor"
}

// Commands are the window-level operations behind the menu shortcuts.
type Commands interface {
	OpenFile(path string) error
	SaveFile(path string) error
	OpenTerminal() error
	RunCurrentFile() error
}

// Options configures the application.
type Options struct {
	// Config holds the settings; nil uses config.Default.
	Config *config.Config

	// ConfigPath is watched for live reload when non-empty.
	ConfigPath string

	// File is opened on startup.
	File string

	// Backend is the display. Required.
	Backend backend.Backend

	// Commands overrides the built-in window commands, for tests.
	Commands Commands

	// Spawner overrides the shell spawner chosen from the config.
	Spawner shell.Spawner

	// Clipboard overrides the system clipboard.
	Clipboard editor.Clipboard

	// Keymap overrides the default shortcuts.
	Keymap *Keymap

	Logger *zap.Logger
}

// Application is the central coordinator for all mcode components.
// Everything except the backend poller, the shell reader and the runner
// goroutines runs on the event loop.
type Application struct {
	cfg  *config.Config
	opts Options

	backend    backend.Backend
	queue      *event.Queue
	dispatcher *event.Dispatcher

	supervisor *process.Supervisor
	runner     *runner.Executor
	spawner    shell.Spawner

	workspace *Workspace
	editor    *editor.Buffer
	panel     *shell.Panel
	status    *StatusLine
	keymap    *Keymap
	cmds      Commands
	actions   map[string]func() error
	registry  *highlight.Registry
	watcher   *config.Watcher

	focus  Focus
	layout layout
	width  int
	height int
	// stale is set when the gutter width changed since the last layout.
	stale bool

	ctx     context.Context
	cancel  context.CancelFunc
	runs    sync.WaitGroup
	running atomic.Bool
	quit    bool

	logger *zap.Logger
}

// New creates the application. The backend is initialized by Run.
func New(opts Options) (*Application, error) {
	if opts.Backend == nil {
		return nil, &InitError{Component: "backend", Err: errors.New("no backend")}
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Keymap == nil {
		opts.Keymap = DefaultKeymap()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = editor.NewSystemClipboard()
	}

	cfg := opts.Config
	logger := opts.Logger

	theme, err := highlight.LoadTheme(cfg.Highlight.Theme)
	if err != nil {
		logger.Warn("unknown theme, using reference palette", zap.Error(err))
		theme = highlight.ReferenceTheme()
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		cfg:        cfg,
		opts:       opts,
		backend:    opts.Backend,
		queue:      event.NewQueue(256),
		supervisor: process.NewSupervisor(process.WithLogger(logger.Named("process"))),
		workspace:  NewWorkspace(cfg.Workspace.Extensions),
		status:     NewStatusLine(),
		keymap:     opts.Keymap,
		registry:   highlight.DefaultRegistry(),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}

	app.runner = newRunner(app, cfg)
	app.spawner = opts.Spawner
	if app.spawner == nil {
		app.spawner = app.defaultSpawner()
	}

	app.editor = editor.New(editorOptions(cfg, theme, opts.Clipboard, logger.Named("editor")))
	app.editor.Gutter().OnMarginChange(func(int) {
		app.stale = true
	})

	app.panel = shell.NewPanel(shell.PanelOptions{
		Theme:          theme,
		FinishedNotice: cfg.Terminal.FinishedNotice,
		MaxLines:       cfg.Terminal.MaxLines,
		Logger:         logger.Named("shell"),
	})

	app.status.onError = app.notifyError

	app.cmds = opts.Commands
	if app.cmds == nil {
		app.cmds = app
	}
	app.actions = app.bindActions()

	app.dispatcher = event.NewDispatcher(
		event.WithLogger(logger.Named("event")),
		event.WithPanicHandler(func(perr *event.PanicError) {
			app.status.Error(&RecoveredPanicError{Value: perr.Value, Stack: perr.Stack})
		}),
	)
	// Key handlers are consulted in this order: an active prompt, the
	// shortcuts, then the focused pane.
	for _, c := range []any{app.status, app, &editorPane{app: app}, &terminalPane{app: app}, app.panel} {
		if err := app.dispatcher.Register(c); err != nil {
			cancel()
			return nil, &InitError{Component: "dispatcher", Err: err}
		}
	}

	if opts.File != "" {
		if err := app.OpenFile(opts.File); err != nil {
			app.notifyError(err)
		}
	}

	return app, nil
}

func newRunner(app *Application, cfg *config.Config) *runner.Executor {
	return runner.NewExecutor(app.supervisor, cfg.Run.Interpreters, app.logger.Named("runner"))
}

func (app *Application) defaultSpawner() shell.Spawner {
	if app.cfg.Terminal.PTY {
		return &shell.PTYSpawner{Supervisor: app.supervisor}
	}
	return &shell.PipeSpawner{Supervisor: app.supervisor}
}

// Run initializes the backend and processes events until quit. Every
// child process is stopped before Run returns.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Shutdown()
	defer app.shutdown()

	if app.opts.ConfigPath != "" {
		w, err := config.Watch(app.opts.ConfigPath, app.postReload,
			config.WithWatcherLogger(app.logger.Named("config")))
		if err != nil {
			app.logger.Warn("config watch failed", zap.Error(err))
		} else {
			app.watcher = w
		}
	}

	app.width, app.height = app.backend.Size()
	app.backend.SetTitle(app.workspace.Title())
	app.relayout()

	return app.eventLoop()
}

func (app *Application) postReload(cfg *config.Config, err error) {
	ev := event.ConfigReloaded{Header: event.Now(), Err: err}
	if cfg != nil {
		ev.Settings = cfg
	}
	if perr := app.queue.Post(app.ctx, ev); perr != nil {
		app.logger.Debug("config reload dropped", zap.Error(perr))
	}
}

// Shutdown asks the event loop to exit. It is safe from any goroutine.
func (app *Application) Shutdown() {
	app.queue.Close()
}

// shutdown stops background work in reverse start order.
func (app *Application) shutdown() {
	app.cancel()
	if app.watcher != nil {
		_ = app.watcher.Close()
	}
	app.panel.Stop()
	app.runs.Wait()
	app.queue.Close()

	app.supervisor.Shutdown(app.cfg.Terminal.KillTimeout.Std() + time.Second)
	app.logger.Info("application stopped")
}

// IsRunning returns true if the event loop is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Editor returns the editor buffer.
func (app *Application) Editor() *editor.Buffer {
	return app.editor
}

// Panel returns the terminal panel.
func (app *Application) Panel() *shell.Panel {
	return app.panel
}

// Status returns the status line.
func (app *Application) Status() *StatusLine {
	return app.status
}

// Workspace returns the workspace.
func (app *Application) Workspace() *Workspace {
	return app.workspace
}

// Focus returns the focused pane.
func (app *Application) Focus() Focus {
	return app.focus
}

// Config returns the active settings.
func (app *Application) Config() *config.Config {
	return app.cfg
}

func (app *Application) focused() *editor.Buffer {
	if app.focus == FocusTerminal && app.panel.Visible() {
		return app.panel.Buffer()
	}
	return app.editor
}

func (app *Application) setFocus(f Focus) {
	if f == FocusTerminal && !app.panel.Visible() {
		f = FocusEditor
	}
	app.focus = f
}

func (app *Application) notifyError(err error) {
	app.logger.Debug("status error", zap.Error(err))
	app.status.Error(err)
}
