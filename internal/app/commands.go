package app

import (
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/mcode/internal/event"
	"github.com/dshills/mcode/internal/integration/runner"
	"github.com/dshills/mcode/internal/integration/shell"
)

// bindActions builds the action table behind the key map. Window
// operations go through the injected Commands; edit operations go to the
// focused buffer.
func (app *Application) bindActions() map[string]func() error {
	return map[string]func() error{
		ActionUndo: func() error {
			_, err := app.focused().Undo()
			return err
		},
		ActionRedo: func() error {
			_, err := app.focused().Redo()
			return err
		},
		ActionCopy:      func() error { return app.focused().Copy() },
		ActionCut:       func() error { return app.focused().Cut() },
		ActionPaste:     func() error { return app.focused().Paste() },
		ActionSelectAll: func() error { app.focused().SelectAll(); return nil },
		ActionOpen: func() error {
			app.status.Prompt("Open: ", app.promptDir(), app.cmds.OpenFile)
			return nil
		},
		ActionSave: func() error {
			if app.workspace.Path() == "" {
				app.status.Prompt("Save as: ", app.promptDir(), app.cmds.SaveFile)
				return nil
			}
			return app.cmds.SaveFile("")
		},
		ActionRun:            func() error { return app.cmds.RunCurrentFile() },
		ActionToggleTerminal: app.toggleTerminal,
		ActionSwitchFocus: func() error {
			if app.focus == FocusEditor {
				app.setFocus(FocusTerminal)
			} else {
				app.setFocus(FocusEditor)
			}
			return nil
		},
		ActionFocusEditor: func() error { app.setFocus(FocusEditor); return nil },
		ActionQuit:        func() error { return ErrQuit },
	}
}

func (app *Application) promptDir() string {
	if p := app.workspace.Path(); p != "" {
		return filepath.Dir(p) + string(filepath.Separator)
	}
	return ""
}

// OpenFile loads path into the editor.
func (app *Application) OpenFile(path string) error {
	text, err := app.workspace.Open(path)
	if err != nil {
		return err
	}
	app.editor.SetRules(app.registry.ForExtension(filepath.Ext(app.workspace.Path())))
	app.editor.Load(text)
	app.setFocus(FocusEditor)
	app.backend.SetTitle(app.workspace.Title())
	app.status.Notify("Opened %s", app.workspace.Path())
	app.logger.Info("opened file", zap.String("path", app.workspace.Path()))
	return nil
}

// SaveFile writes the editor to path, or to the open file when path is
// empty.
func (app *Application) SaveFile(path string) error {
	text := app.editor.Serialize()
	var err error
	if path == "" {
		err = app.workspace.Save(text)
	} else {
		err = app.workspace.SaveAs(path, text)
	}
	if err != nil {
		return err
	}
	app.editor.MarkSaved()
	app.backend.SetTitle(app.workspace.Title())
	app.status.Notify("Saved %s", app.workspace.Path())
	app.logger.Info("saved file", zap.String("path", app.workspace.Path()))
	return nil
}

// OpenTerminal shows the panel, starting a shell when none is running.
// A spawn failure is written into the panel, which stays usable.
func (app *Application) OpenTerminal() error {
	app.panel.Show()
	app.setFocus(FocusTerminal)
	app.relayout()

	if s := app.panel.Session(); s != nil && s.Alive() {
		return nil
	}

	rows, cols := app.layout.panel.Height(), app.layout.panel.Width()
	session := shell.NewSession(shell.Options{
		Spec: shell.Spec{
			Shell: app.cfg.Terminal.Shell,
			Dir:   app.terminalDir(),
			Cols:  uint16(max(cols, 1)),
			Rows:  uint16(max(rows, 1)),
		},
		Spawner:     app.spawner,
		Poster:      app.queue,
		KillTimeout: app.cfg.Terminal.KillTimeout.Std(),
		Logger:      app.logger.Named("shell"),
	})

	if old := app.panel.Session(); old != nil {
		old.Stop()
	}
	app.panel.Attach(session)
	if err := session.Start(app.ctx); err != nil {
		app.panel.AppendToScrollback(err.Error() + "\n")
		return err
	}
	return nil
}

func (app *Application) terminalDir() string {
	if p := app.workspace.Path(); p != "" {
		return filepath.Dir(p)
	}
	return ""
}

// ShowTerminal makes the terminal panel visible without starting a shell
// or moving focus.
func (app *Application) ShowTerminal() {
	if app.panel.Visible() {
		return
	}
	app.panel.Show()
	app.relayout()
}

func (app *Application) toggleTerminal() error {
	if app.panel.Visible() {
		app.panel.Hide()
		app.setFocus(FocusEditor)
		app.relayout()
		return nil
	}
	return app.cmds.OpenTerminal()
}

// RunCurrentFile runs the open file with its interpreter in the
// background. The result arrives as event.RunFinished.
func (app *Application) RunCurrentFile() error {
	path := app.workspace.Path()
	if _, err := app.runner.Interpreter(path); err != nil {
		if errors.Is(err, runner.ErrUnsupported) {
			return errors.New("only " + strings.Join(app.runner.Extensions(), ", ") + " files can be run")
		}
		return err
	}

	app.status.Notify("Running %s", filepath.Base(path))
	executor := app.runner
	app.runs.Add(1)
	go func() {
		defer app.runs.Done()
		res, err := executor.Run(app.ctx, path)
		ev := event.RunFinished{
			Header:   event.Now(),
			Path:     path,
			Output:   res.Output,
			ExitCode: res.ExitCode,
			Err:      err,
		}
		if perr := app.queue.Post(app.ctx, ev); perr != nil {
			app.logger.Debug("run result dropped", zap.Error(perr))
		}
	}()
	return nil
}

// HandleRunFinished appends the run output to the terminal panel.
func (app *Application) HandleRunFinished(ev event.RunFinished) {
	if ev.Err != nil {
		app.notifyError(ev.Err)
		return
	}
	app.panel.AppendToScrollback(ev.Output + "\n")
	app.ShowTerminal()
	if ev.ExitCode != 0 {
		app.status.Notify("%s exited with code %d", filepath.Base(ev.Path), ev.ExitCode)
	} else {
		app.status.Notify("%s finished", filepath.Base(ev.Path))
	}
}
