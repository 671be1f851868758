// Package input turns the raw terminal byte stream into a per-frame boost signal.
package input

import (
	"bufio"
	"time"
)

// Terminals only report key presses, never releases. A held key shows up as
// a burst of auto-repeat bytes, so a key counts as held while its last byte
// is younger than holdDuration. It must outlast the repeat interval (~30ms)
// and the pause between the first press and the first repeat is bridged by
// the longer firstHoldDuration.
const (
	holdDuration      = 120 * time.Millisecond
	firstHoldDuration = 350 * time.Millisecond
)

// Input is the state of the controls for one frame.
type Input struct {
	Quit    bool
	Boost   bool   // Hold to fly
	Restart bool   // Enter, or a fresh boost press
	Closed  bool   // The underlying reader hit EOF
	Pressed []byte // Raw bytes read this frame
}

// keyState tracks key timestamps across frames.
type keyState struct {
	quit       time.Time
	boost      time.Time
	boostStart time.Time // First byte of the current boost burst
	enter      time.Time
}

// Stream delivers input bytes via a channel and tracks key state between frames.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 128),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream without blocking.
func ReadInput(s *Stream) Input {
	return readInputAt(s, time.Now())
}

func readInputAt(s *Stream, now time.Time) Input {
	var buf []byte

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	wasHeld := s.boostHeld(now)
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// Up arrow: ESC [ A
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			if buf[i+2] == 'A' {
				s.pressBoost(now)
			}
			i += 2
			continue
		}
		applyByteToState(s, b, now)
	}

	boost := s.boostHeld(now)
	return Input{
		Quit:    now.Sub(s.state.quit) < holdDuration,
		Boost:   boost,
		Restart: now.Sub(s.state.enter) < holdDuration || (boost && !wasHeld),
		Closed:  s.closed,
		Pressed: buf,
	}
}

// boostHeld reports whether the boost key is still considered down.
func (s *Stream) boostHeld(now time.Time) bool {
	since := now.Sub(s.state.boost)
	if since < holdDuration {
		return true
	}
	// A single press waits for the terminal's repeat delay before repeats start
	return s.state.boost.Equal(s.state.boostStart) && since < firstHoldDuration
}

func (s *Stream) pressBoost(now time.Time) {
	if !s.boostHeld(now) {
		s.state.boostStart = now
	}
	s.state.boost = now
}

// applyByteToState updates the key state timestamps based on the pressed byte.
func applyByteToState(s *Stream, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', '\x03': // Ctrl+C arrives as a byte in raw mode
		s.state.quit = now
	case ' ', 'w', 'W', 'k', 'K':
		s.pressBoost(now)
	case '\n', '\r':
		s.state.enter = now
	}
}

// ResetKeyInput forgets every held key, so a key held across a screen
// change does not carry over into the next one.
func ResetKeyInput(s *Stream) {
	s.state = keyState{}
}
