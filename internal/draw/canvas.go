// Package draw renders the logical game canvas to a terminal with half-block characters.
package draw

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

// Point is a 2D coordinate in logical space.
type Point struct {
	X, Y float64
}

// Half-block characters. Each terminal cell holds two vertical sub-pixels.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// circleSegments is the number of polygon edges used to approximate a circle.
const circleSegments = 24

// maxChunkSize is the maximum bytes written at once, close to a typical MTU
// so frames stream smoothly over SSH.
const maxChunkSize = 1400

// Canvas is a pixel buffer with 2x vertical resolution. Callers draw in
// logical coordinates (the simulation canvas, e.g. 800x600) and the canvas
// scales them to the terminal.
type Canvas struct {
	termWidth      int
	termHeight     int
	subPixelHeight int    // termHeight * 2
	pixels         []bool // [y*termWidth + x]

	logicalWidth  float64
	logicalHeight float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // subPixelHeight / logicalHeight

	// 0-based terminal offsets used to center the canvas in a larger terminal
	offsetCol int
	offsetRow int

	// Character last written to each terminal cell; 0 forces a rewrite
	shown []rune

	renderBuf       strings.Builder
	scaledBuf       []Point
	intersectionBuf []float64
	polygonBuf      []Point
	circleBuf       []Point
}

// NewCanvas creates an unscaled canvas for the given terminal dimensions.
func NewCanvas(width, height int) *Canvas {
	return NewScaledCanvas(width, height, float64(width), float64(height*2))
}

// NewScaledCanvas creates a canvas mapping logicalWidth x logicalHeight onto
// termWidth columns and termHeight*2 sub-pixel rows.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the terminal dimensions while keeping the logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	subPixelHeight := termHeight * 2
	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		c.pixels = make([]bool, subPixelHeight*termWidth)
		c.shown = make([]rune, termHeight*termWidth)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
	}
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(subPixelHeight) / c.logicalHeight
}

// SetOffset sets the 0-based column and row offset used for centering.
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int { return c.offsetCol }

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int { return c.offsetRow }

// LogicalWidth returns the width of the logical coordinate space.
func (c *Canvas) LogicalWidth() float64 { return c.logicalWidth }

// LogicalHeight returns the height of the logical coordinate space.
func (c *Canvas) LogicalHeight() float64 { return c.logicalHeight }

// TerminalWidth returns the terminal column count.
func (c *Canvas) TerminalWidth() int { return c.termWidth }

// TerminalHeight returns the terminal row count.
func (c *Canvas) TerminalHeight() int { return c.termHeight }

// Clear resets all pixels.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// IsSet reports whether the pixel at sub-pixel coordinates is set.
func (c *Canvas) IsSet(px, py int) bool {
	if px < 0 || px >= c.termWidth || py < 0 || py >= c.subPixelHeight {
		return false
	}
	return c.pixels[py*c.termWidth+px]
}

func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = true
	}
}

func (c *Canvas) toPixel(x, y float64) (int, int) {
	return int(math.Round(x * c.scaleX)), int(math.Round(y * c.scaleY))
}

// SetFloat sets the pixel under a logical coordinate.
func (c *Canvas) SetFloat(x, y float64) {
	c.setPixel(c.toPixel(x, y))
}

// DrawLine draws a line between two logical points using Bresenham's algorithm.
func (c *Canvas) DrawLine(p1, p2 Point) {
	x1, y1 := c.toPixel(p1.X, p1.Y)
	x2, y2 := c.toPixel(p2.X, p2.Y)

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		c.setPixel(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon draws a closed polygon, filling it with a scanline pass when filled is set.
func (c *Canvas) DrawPolygon(points []Point, filled bool) {
	if len(points) < 3 {
		return
	}
	if filled {
		c.fillPolygon(points)
	}
	n := len(points)
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n])
	}
}

// FillRect fills an axis-aligned rectangle given by its top-left corner.
func (c *Canvas) FillRect(x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	x1, y1 := c.toPixel(x, y)
	x2, y2 := c.toPixel(x+w, y+h)
	x1, y1 = max(x1, 0), max(y1, 0)
	x2, y2 = min(x2, c.termWidth-1), min(y2, c.subPixelHeight-1)
	for py := y1; py <= y2; py++ {
		row := c.pixels[py*c.termWidth:]
		for px := x1; px <= x2; px++ {
			row[px] = true
		}
	}
}

// StrokeRect draws the outline of an axis-aligned rectangle.
func (c *Canvas) StrokeRect(x, y, w, h float64) {
	tl := Point{X: x, Y: y}
	tr := Point{X: x + w, Y: y}
	br := Point{X: x + w, Y: y + h}
	bl := Point{X: x, Y: y + h}
	c.DrawLine(tl, tr)
	c.DrawLine(tr, br)
	c.DrawLine(br, bl)
	c.DrawLine(bl, tl)
}

// DrawCircle draws a circle approximated by a regular polygon.
func (c *Canvas) DrawCircle(cx, cy, r float64, filled bool) {
	if r <= 0 {
		return
	}
	if cap(c.circleBuf) < circleSegments {
		c.circleBuf = make([]Point, circleSegments)
	}
	points := c.circleBuf[:circleSegments]
	for i := range points {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / circleSegments)
		points[i] = Point{X: cx + r*cos, Y: cy + r*sin}
	}
	c.DrawPolygon(points, filled)
}

// fillPolygon fills a polygon with a scanline pass in pixel space.
func (c *Canvas) fillPolygon(points []Point) {
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]
	for i, p := range points {
		scaled[i] = Point{X: p.X * c.scaleX, Y: p.Y * c.scaleY}
	}

	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	yStart := max(int(math.Floor(minY)), 0)
	yEnd := min(int(math.Ceil(maxY)), c.subPixelHeight-1)

	n := len(scaled)
	for y := yStart; y <= yEnd; y++ {
		scanY := float64(y) + 0.5
		intersections := c.intersectionBuf[:0]
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]
			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				intersections = append(intersections, p1.X+t*(p2.X-p1.X))
			}
		}
		c.intersectionBuf = intersections

		sort.Float64s(intersections)
		for i := 0; i+1 < len(intersections); i += 2 {
			xStart := int(math.Ceil(intersections[i]))
			xEnd := int(math.Floor(intersections[i+1]))
			for x := xStart; x <= xEnd; x++ {
				c.setPixel(x, y)
			}
		}
	}
}

// BorrowPoints returns a reusable slice of n points, valid until the next call.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.polygonBuf) < n {
		c.polygonBuf = make([]Point, n)
	}
	return c.polygonBuf[:n]
}

// LogicalToTerminal converts logical coordinates to a 1-based terminal (col, row)
// relative to the canvas origin.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(x, y)
	return px + 1, py/2 + 1
}

// Render writes the cells that changed since the previous Render as
// half-block characters, blanking cells that were drawn before.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 12)

	for row := 0; row < c.termHeight; row++ {
		top := c.pixels[row*2*c.termWidth:]
		bottom := c.pixels[(row*2+1)*c.termWidth:]
		shown := c.shown[row*c.termWidth:]
		for col := 0; col < c.termWidth; col++ {
			ch := ' '
			switch {
			case top[col] && bottom[col]:
				ch = BlockFull
			case top[col]:
				ch = BlockUpperHalf
			case bottom[col]:
				ch = BlockLowerHalf
			}
			if shown[col] == ch {
				continue
			}
			shown[col] = ch
			fmt.Fprintf(&c.renderBuf, "\033[%d;%dH%c", row+1+c.offsetRow, col+1+c.offsetCol, ch)
		}
	}

	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data[:min(len(data), maxChunkSize)]
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

// ForceRedraw makes the next Render rewrite every cell, e.g. after the
// terminal was cleared.
func (c *Canvas) ForceRedraw() {
	clear(c.shown)
}

// MarkTextDirty marks n cells starting at the 1-based (col, row) as
// overwritten by text so the next Render repaints them.
func (c *Canvas) MarkTextDirty(col, row, n int) {
	if row < 1 || row > c.termHeight {
		return
	}
	start := max(col-1, 0)
	end := min(col-1+n, c.termWidth)
	if start >= end {
		return
	}
	clear(c.shown[(row-1)*c.termWidth+start : (row-1)*c.termWidth+end])
}

// RenderBorder frames the canvas when the terminal is larger than the
// render area: horizontal bars need a row offset, vertical bars a column offset.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	bar := strings.Repeat("─", c.termWidth)

	var buf strings.Builder
	if hasV {
		if hasH {
			fmt.Fprintf(&buf, "\033[%d;%dH┌%s┐", top, left, bar)
			fmt.Fprintf(&buf, "\033[%d;%dH└%s┘", bottom, left, bar)
		} else {
			fmt.Fprintf(&buf, "\033[%d;%dH%s", top, c.offsetCol+1, bar)
			fmt.Fprintf(&buf, "\033[%d;%dH%s", bottom, c.offsetCol+1, bar)
		}
	}
	if hasH {
		for row := c.offsetRow + 1; row <= c.offsetRow+c.termHeight; row++ {
			fmt.Fprintf(&buf, "\033[%d;%dH│\033[%d;%dH│", row, left, row, right)
		}
	}
	io.WriteString(w, buf.String())
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
