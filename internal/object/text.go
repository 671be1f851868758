package object

import (
	"fmt"
)

// Popup is a short text that floats up from where something happened,
// e.g. "+5" for a gift. It is drawn over the rendered canvas.
type Popup struct {
	X, Y     float64 // Logical position of the text center
	Value    string
	Lifetime int // Frames remaining
}

// popupRise is how far a popup drifts up per frame, in logical pixels.
const popupRise = 1.5

// NewPopup creates a popup that lives for lifetime frames.
func NewPopup(x, y float64, value string, lifetime int) Popup {
	return Popup{X: x, Y: y, Value: value, Lifetime: lifetime}
}

// Update moves the popup one frame. Returns true when it has expired.
func (t *Popup) Update() bool {
	t.Lifetime--
	t.Y -= popupRise
	return t.Lifetime <= 0
}

// Draw writes the text at its terminal cell and marks the cells dirty so
// the canvas repaints them once the popup moves on.
func (t *Popup) Draw(ctx DrawContext) error {
	if t.Value == "" {
		return nil
	}
	c := ctx.Canvas
	col, row := c.LogicalToTerminal(t.X, t.Y)
	col -= len(t.Value) / 2
	if row < 1 || row > c.TerminalHeight() || col < 1 || col+len(t.Value)-1 > c.TerminalWidth() {
		return nil
	}
	if _, err := fmt.Fprintf(ctx.Writer, "\033[%d;%dH%s", row+c.OffsetRow(), col+c.OffsetCol(), t.Value); err != nil {
		return err
	}
	c.MarkTextDirty(col, row, len(t.Value))
	return nil
}
