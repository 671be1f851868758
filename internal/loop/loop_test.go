package loop

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tomz197/santa-rush/internal/loop/config"
)

func TestRunStopsOnQuit(t *testing.T) {
	var out bytes.Buffer
	opts := Options{
		TermSizeFunc: func() (int, int, error) { return 80, 24, nil },
		Tuning:       config.DefaultTuning(),
		Logger:       log.New(io.Discard),
	}

	if err := Run(bufio.NewReader(strings.NewReader("q")), &out, opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "\033[?25l") || !strings.Contains(got, "\033[?25h") {
		t.Error("cursor not hidden and restored")
	}
}

func TestRunRejectsInvalidTuning(t *testing.T) {
	opts := Options{Tuning: config.Tuning{}, Logger: log.New(io.Discard)}
	if err := Run(bufio.NewReader(strings.NewReader("")), io.Discard, opts); err == nil {
		t.Fatal("Run: want error for a zero tuning")
	}
}
