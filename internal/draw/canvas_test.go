package draw

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestScaledCanvasMapsLogicalSpace(t *testing.T) {
	// 800x600 logical onto 80 columns x 30 rows (60 sub-pixel rows)
	c := NewScaledCanvas(80, 30, 800, 600)

	tests := []struct {
		x, y   float64
		px, py int
	}{
		{0, 0, 0, 0},
		{400, 300, 40, 30},
		{790, 590, 79, 59},
		{125, 45, 13, 5},
	}
	for _, tt := range tests {
		c.Clear()
		c.SetFloat(tt.x, tt.y)
		if !c.IsSet(tt.px, tt.py) {
			t.Errorf("SetFloat(%v, %v): pixel (%d, %d) not set", tt.x, tt.y, tt.px, tt.py)
		}
	}

	col, row := c.LogicalToTerminal(400, 300)
	if col != 41 || row != 16 {
		t.Errorf("LogicalToTerminal: got (%d, %d), want (41, 16)", col, row)
	}
}

func TestSetFloatOutOfBounds(t *testing.T) {
	c := NewCanvas(10, 5)
	c.SetFloat(-5, 3)
	c.SetFloat(3, 100)
	for py := 0; py < 10; py++ {
		for px := 0; px < 10; px++ {
			if c.IsSet(px, py) {
				t.Fatalf("pixel (%d, %d) set by out-of-bounds draw", px, py)
			}
		}
	}
}

func TestFillRectClamps(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillRect(-4, 6, 20, 20)

	if !c.IsSet(0, 6) || !c.IsSet(9, 9) {
		t.Error("visible part of the rect not filled")
	}
	if c.IsSet(0, 5) {
		t.Error("pixel above the rect filled")
	}
}

func TestDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(Point{X: 1, Y: 1}, Point{X: 8, Y: 6})
	if !c.IsSet(1, 1) || !c.IsSet(8, 6) {
		t.Error("line endpoints not set")
	}
}

func TestRenderWritesOnlyChanges(t *testing.T) {
	c := NewCanvas(10, 5)
	var out bytes.Buffer

	// First frame paints every cell, blank or not
	c.Render(&out)
	if got := strings.Count(out.String(), "\033["); got != 50 {
		t.Fatalf("first render wrote %d cells, want 50", got)
	}

	out.Reset()
	c.SetFloat(2, 3) // Bottom half of row 2, column 3
	c.Render(&out)
	if got, want := out.String(), "\033[2;3H▄"; got != want {
		t.Fatalf("render: got %q, want %q", got, want)
	}

	out.Reset()
	c.Render(&out)
	if out.Len() != 0 {
		t.Errorf("unchanged frame wrote %q", out.String())
	}

	out.Reset()
	c.Clear()
	c.Render(&out)
	if got, want := out.String(), "\033[2;3H "; got != want {
		t.Errorf("cleared pixel: got %q, want %q", got, want)
	}
}

func TestRenderRepaintsDirtyCells(t *testing.T) {
	c := NewCanvas(10, 5)
	c.SetOffset(4, 2)
	var out bytes.Buffer
	c.Render(&out)

	out.Reset()
	c.MarkTextDirty(3, 1, 2)
	c.MarkTextDirty(9, 9, 4) // Off canvas, ignored
	c.Render(&out)
	if got, want := out.String(), "\033[3;7H \033[3;8H "; got != want {
		t.Errorf("dirty cells: got %q, want %q", got, want)
	}

	out.Reset()
	c.ForceRedraw()
	c.Render(&out)
	if got := strings.Count(out.String(), "\033["); got != 50 {
		t.Errorf("forced redraw wrote %d cells, want 50", got)
	}
}

func TestRenderBorder(t *testing.T) {
	c := NewCanvas(4, 2)

	var out bytes.Buffer
	c.RenderBorder(&out)
	if out.Len() != 0 {
		t.Errorf("border drawn without room: %q", out.String())
	}

	c.SetOffset(1, 1)
	c.RenderBorder(&out)
	got := out.String()
	for _, want := range []string{"\033[1;1H┌────┐", "\033[4;1H└────┘", "\033[2;1H│\033[2;6H│"} {
		if !strings.Contains(got, want) {
			t.Errorf("border missing %q in %q", want, got)
		}
	}
}

func TestChunkWriterOffset(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 2, 3)
	cw.WriteAt(1, 1, "hi")
	if out.Len() != 0 {
		t.Fatal("wrote before Flush")
	}
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got, want := out.String(), "\033[4;3Hhi"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	out.Reset()
	cw.SetOffset(0, 0)
	cw.WriteString(strings.Repeat("x", 3*maxChunkSize))
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if out.Len() != 3*maxChunkSize {
		t.Errorf("flushed %d bytes, want %d", out.Len(), 3*maxChunkSize)
	}
}

func TestTerminalSize(t *testing.T) {
	boom := errors.New("not a tty")
	tests := []struct {
		name    string
		w, h    int
		err     error
		wantErr bool
	}{
		{"ok", 120, 40, nil, false},
		{"zero width", 0, 40, nil, true},
		{"negative height", 80, -1, nil, true},
		{"error", 80, 24, boom, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := TerminalSize(func() (int, int, error) { return tt.w, tt.h, tt.err })
			if tt.wantErr {
				if !errors.Is(err, ErrNoTerminalSize) {
					t.Fatalf("got %v, want ErrNoTerminalSize", err)
				}
				if tt.err != nil && !errors.Is(err, tt.err) {
					t.Errorf("cause lost: %v", err)
				}
				return
			}
			if err != nil || w != tt.w || h != tt.h {
				t.Errorf("got %dx%d %v", w, h, err)
			}
		})
	}
}
