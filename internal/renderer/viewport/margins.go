package viewport

// MarginConfig is the number of lines and columns kept visible around the
// caret when the view scrolls to reveal it.
type MarginConfig struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// DefaultMargins keeps two lines and four columns of context.
func DefaultMargins() MarginConfig {
	return ScrollMargins(2)
}

// ScrollMargins keeps lines of context above and below the caret and
// twice as many columns to either side.
func ScrollMargins(lines int) MarginConfig {
	lines = max(lines, 0)
	return MarginConfig{Top: lines, Bottom: lines, Left: 2 * lines, Right: 2 * lines}
}

// NoMargins lets the caret reach the edges, as in the terminal panel
// where the newest output sits on the last row.
func NoMargins() MarginConfig {
	return MarginConfig{}
}

// No margin may take more than a third of the view.
const maxMarginRatio = 3

func (v *Viewport) clampMargins() MarginConfig {
	m := v.margins
	vertical, horizontal := v.height/maxMarginRatio, v.width/maxMarginRatio
	m.Top, m.Bottom = min(m.Top, vertical), min(m.Bottom, vertical)
	m.Left, m.Right = min(m.Left, horizontal), min(m.Right, horizontal)
	return m
}

// EffectiveMargins returns the margins after clamping to the view size.
func (v *Viewport) EffectiveMargins() MarginConfig {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.clampMargins()
}
