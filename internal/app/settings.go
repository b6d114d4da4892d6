package app

import (
	"go.uber.org/zap"

	"github.com/dshills/mcode/internal/config"
	"github.com/dshills/mcode/internal/editor"
	"github.com/dshills/mcode/internal/event"
	"github.com/dshills/mcode/internal/renderer/gutter"
	"github.com/dshills/mcode/internal/renderer/highlight"
	"github.com/dshills/mcode/internal/renderer/viewport"
)

func editorOptions(cfg *config.Config, theme *highlight.Theme, clip editor.Clipboard, logger *zap.Logger) editor.Options {
	opts := editor.DefaultOptions()
	opts.IndentUnit = cfg.Editor.IndentUnit
	opts.TabWidth = cfg.Editor.TabWidth
	opts.HistorySize = cfg.Editor.HistorySize
	opts.BlockScope = cfg.Highlight.BlockScope
	opts.Theme = theme
	opts.Gutter = gutterConfig(cfg)
	opts.Margins = viewport.ScrollMargins(cfg.Editor.ScrollMargin)
	opts.Clipboard = clip
	opts.Logger = logger
	return opts
}

func gutterConfig(cfg *config.Config) gutter.Config {
	return gutter.Config{
		ShowLineNumbers: cfg.Gutter.Show,
		Margin:          cfg.Gutter.Margin,
		RightPadding:    cfg.Gutter.RightPadding,
		GlyphAdvance:    1,
	}
}

// HandleConfigReloaded applies settings that can change while running:
// theme, indentation, tab width, highlight scope, gutter and panel height.
// Shell and interpreter settings take effect for the next session or run.
func (app *Application) HandleConfigReloaded(ev event.ConfigReloaded) {
	if ev.Err != nil {
		app.notifyError(ev.Err)
		return
	}
	cfg, ok := ev.Settings.(*config.Config)
	if !ok || cfg == nil {
		return
	}
	app.apply(cfg)
	app.status.Notify("Configuration reloaded")
}

func (app *Application) apply(cfg *config.Config) {
	old := app.cfg
	app.cfg = cfg

	if cfg.Highlight.Theme != old.Highlight.Theme {
		theme, err := highlight.LoadTheme(cfg.Highlight.Theme)
		if err != nil {
			app.notifyError(err)
		} else {
			app.editor.SetTheme(theme)
			app.panel.Buffer().SetTheme(theme)
		}
	}

	app.editor.SetIndentUnit(cfg.Editor.IndentUnit)
	app.editor.SetTabWidth(cfg.Editor.TabWidth)
	app.editor.SetScrollMargins(viewport.ScrollMargins(cfg.Editor.ScrollMargin))
	if cfg.Highlight.BlockScope != old.Highlight.BlockScope {
		app.editor.SetBlockScope(cfg.Highlight.BlockScope)
	}
	app.editor.Gutter().SetConfig(gutterConfig(cfg))
	app.workspace.SetExtensions(cfg.Workspace.Extensions)

	app.spawner = app.opts.Spawner
	if app.spawner == nil {
		app.spawner = app.defaultSpawner()
	}
	app.runner = newRunner(app, cfg)

	app.relayout()
	app.logger.Info("configuration applied")
}
