// Package object holds the game entities and the managers that spawn them.
package object

import (
	"io"

	"github.com/tomz197/santa-rush/internal/draw"
)

// Screen is the logical canvas the simulation runs on, in pixels.
type Screen struct {
	Width  float64
	Height float64
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas // Scaled canvas, takes logical coordinates
	Writer io.Writer    // Direct terminal output for text overlays
	Frame  uint64       // Frame counter for animations
}

// Drawable is anything the terminal renderer can put on the canvas.
type Drawable interface {
	Draw(ctx DrawContext) error
}

// ShouldRenderBlink returns true if an object with remaining protection/invincibility
// frames should be rendered this frame (for blinking effect).
// Returns true always if remaining <= 0 (no protection).
func ShouldRenderBlink(remaining int, frequency float64, fps int) bool {
	if remaining <= 0 {
		return true
	}
	phase := int(float64(remaining) / float64(fps) * frequency)
	return phase%2 != 0
}
