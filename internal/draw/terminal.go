package draw

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ANSI sequences used by the renderers.
const (
	SeqClearScreen = "\033[H\033[2J"
	SeqHideCursor  = "\033[?25l"
	SeqShowCursor  = "\033[?25h"
)

// Size assumed when the terminal does not report one.
const (
	FallbackWidth  = 80
	FallbackHeight = 24
)

// ErrNoTerminalSize is returned when the terminal reports no usable size.
var ErrNoTerminalSize = errors.New("terminal size unavailable")

// ChunkWriter accumulates one frame of terminal output and writes it in
// chunks, so a frame reaches an SSH channel in a few large writes instead
// of one per cell. Coordinates passed to it are canvas coordinates; the
// centering offset is added on output.
type ChunkWriter struct {
	buf    strings.Builder
	bufw   *bufio.Writer
	numBuf [20]byte // Scratch for allocation-free integer formatting
	offCol int
	offRow int
}

// NewChunkWriter creates a ChunkWriter that writes to w with the given
// centering offset.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		bufw:   bufio.NewWriterSize(w, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset updates the centering offset after a resize.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol = offsetCol
	cw.offRow = offsetRow
}

// MoveCursor appends a cursor position sequence for the 1-based canvas cell.
func (cw *ChunkWriter) MoveCursor(col, row int) {
	cw.buf.WriteString("\033[")
	cw.buf.Write(strconv.AppendInt(cw.numBuf[:0], int64(row+cw.offRow), 10))
	cw.buf.WriteByte(';')
	cw.buf.Write(strconv.AppendInt(cw.numBuf[:0], int64(col+cw.offCol), 10))
	cw.buf.WriteByte('H')
}

// Write implements io.Writer so the canvas can render into the frame.
func (cw *ChunkWriter) Write(p []byte) (n int, err error) {
	return cw.buf.Write(p)
}

// WriteString appends s to the frame.
func (cw *ChunkWriter) WriteString(s string) {
	cw.buf.WriteString(s)
}

// WriteAt writes s starting at the 1-based canvas cell.
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.MoveCursor(col, row)
	cw.buf.WriteString(s)
}

// ClearScreen queues a full terminal clear.
func (cw *ChunkWriter) ClearScreen() {
	cw.buf.WriteString(SeqClearScreen)
}

var _ io.Writer = (*ChunkWriter)(nil)

// Flush writes the frame to the underlying writer in chunks of
// maxChunkSize and resets the buffer.
func (cw *ChunkWriter) Flush() error {
	data := cw.buf.String()
	cw.buf.Reset()
	for len(data) > 0 {
		chunk := data[:min(len(data), maxChunkSize)]
		if _, err := cw.bufw.WriteString(chunk); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return cw.bufw.Flush()
}

// TermSizeFunc returns the terminal dimensions in cells.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc returns the size of the terminal on os.Stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// TerminalSize calls sizeFunc and rejects sizes without any cells, which
// some SSH clients report before the first window change.
func TerminalSize(sizeFunc TermSizeFunc) (width, height int, err error) {
	width, height, err = sizeFunc()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrNoTerminalSize, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: got %dx%d", ErrNoTerminalSize, width, height)
	}
	return width, height, nil
}

// ClearScreen clears the terminal and moves the cursor home.
func ClearScreen(w io.Writer) {
	io.WriteString(w, SeqClearScreen)
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) {
	io.WriteString(w, SeqHideCursor)
}

// ShowCursor shows the terminal cursor.
func ShowCursor(w io.Writer) {
	io.WriteString(w, SeqShowCursor)
}
