package shell

import (
	"go.uber.org/zap"

	"github.com/dshills/mcode/internal/editor"
	"github.com/dshills/mcode/internal/event"
	"github.com/dshills/mcode/internal/renderer/gutter"
	"github.com/dshills/mcode/internal/renderer/highlight"
	"github.com/dshills/mcode/internal/renderer/viewport"
)

// DefaultFinishedNotice is appended when the shell exits.
const DefaultFinishedNotice = "[Process finished]"

// DefaultMaxLines bounds the scrollback.
const DefaultMaxLines = 10000

// PanelOptions configures a Panel.
type PanelOptions struct {
	Theme          *highlight.Theme
	FinishedNotice string
	MaxLines       int
	Logger         *zap.Logger
}

// Panel is the terminal pane: an editable scrollback that receives shell
// output and submits the caret line as a command. It is owned by the event
// loop.
type Panel struct {
	buf      *editor.Buffer
	session  *Session
	decoder  *Decoder
	notice   string
	maxLines int
	visible  bool
	logger   *zap.Logger
}

// NewPanel creates an empty, hidden panel.
func NewPanel(opts PanelOptions) *Panel {
	if opts.FinishedNotice == "" {
		opts.FinishedNotice = DefaultFinishedNotice
	}
	if opts.MaxLines <= 0 {
		opts.MaxLines = DefaultMaxLines
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	bopts := editor.DefaultOptions()
	bopts.Rules = highlight.MustCompileRules("terminal", nil, nil)
	bopts.Theme = opts.Theme
	bopts.Gutter = gutter.Config{ShowLineNumbers: false, GlyphAdvance: 1}
	bopts.Margins = viewport.NoMargins()
	bopts.Logger = opts.Logger

	return &Panel{
		buf:      editor.New(bopts),
		decoder:  NewDecoder(),
		notice:   opts.FinishedNotice,
		maxLines: opts.MaxLines,
		logger:   opts.Logger,
	}
}

// Buffer returns the scrollback buffer.
func (p *Panel) Buffer() *editor.Buffer {
	return p.buf
}

// Session returns the attached session, or nil.
func (p *Panel) Session() *Session {
	return p.session
}

// Attach connects a session whose events the panel will consume.
func (p *Panel) Attach(s *Session) {
	p.session = s
	p.decoder = NewDecoder()
}

// Visible reports whether the panel is shown.
func (p *Panel) Visible() bool {
	return p.visible
}

// Show makes the panel visible.
func (p *Panel) Show() {
	p.visible = true
}

// Hide hides the panel without stopping the session.
func (p *Panel) Hide() {
	p.visible = false
}

// AppendToScrollback appends text verbatim and moves the read cursor to
// the end.
func (p *Panel) AppendToScrollback(text string) {
	if err := p.buf.Append(text); err != nil {
		p.logger.Warn("append to scrollback", zap.Error(err))
		return
	}
	if excess := p.buf.LineCount() - p.maxLines; excess > 0 {
		if err := p.buf.TrimFront(excess); err != nil {
			p.logger.Warn("trim scrollback", zap.Error(err))
		}
	}
}

// Text returns the whole scrollback.
func (p *Panel) Text() string {
	return p.buf.Serialize()
}

// HandleChildOutput decodes and appends a chunk from the attached session.
func (p *Panel) HandleChildOutput(ev event.ChildOutput) {
	if p.session == nil || ev.SessionID != p.session.ID() {
		return
	}
	p.AppendToScrollback(p.decoder.Decode(ev.Data))
}

// HandleChildExited appends the finished notice.
func (p *Panel) HandleChildExited(ev event.ChildExited) {
	if p.session == nil || ev.SessionID != p.session.ID() {
		return
	}
	p.AppendToScrollback(p.decoder.Flush())
	p.AppendToScrollback("\n" + p.notice + "\n")
}

// SubmitCurrentLine sends the caret line to the shell after echoing a
// newline. Nothing is echoed or written once the session has ended.
func (p *Panel) SubmitCurrentLine() error {
	if p.session == nil {
		return ErrNotStarted
	}
	if !p.session.Alive() {
		return ErrSessionClosed
	}

	line := p.buf.Line(p.buf.Caret().Line)
	p.AppendToScrollback("\n")
	return p.session.Submit(line)
}

// Stop stops the attached session.
func (p *Panel) Stop() {
	if p.session != nil {
		p.session.Stop()
	}
}
