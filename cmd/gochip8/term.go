// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const (
	// Terminals report key repeats, not releases, so a pressed key is held
	// for this many frames after its last byte arrives.
	KEY_HOLD_FRAMES = 6

	KEY_ESCAPE = 0x1B
	KEY_CTRL_C = 0x03

	ANSI_HOME        = "\x1b[H"
	ANSI_CLEAR       = "\x1b[2J"
	ANSI_HIDE_CURSOR = "\x1b[?25l"
	ANSI_SHOW_CURSOR = "\x1b[?25h"
	ANSI_RESET       = "\x1b[0m"
)

// terminal renders the display with half-block characters, two machine rows
// per text row, and reads the keypad from raw stdin.
type terminal struct {
	fd      int
	out     *bufio.Writer
	palette config.Palette

	mu   sync.Mutex
	held [machine.KEY_COUNT]int
	quit bool

	restore     *term.State
	nonblockSet bool
	stop        chan struct{}
	done        chan struct{}
}

func newTerminal(out io.Writer, palette config.Palette) *terminal {
	return &terminal{
		fd:      int(os.Stdin.Fd()),
		out:     bufio.NewWriter(out),
		palette: palette,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (t *terminal) enterRawTerm() error {
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return fmt.Errorf("setting raw mode: %w", err)
	}
	t.restore = state

	if err := unix.SetNonblock(t.fd, true); err != nil {
		_ = term.Restore(t.fd, t.restore)
		t.restore = nil
		return fmt.Errorf("setting nonblocking stdin: %w", err)
	}
	t.nonblockSet = true

	fmt.Fprint(t.out, ANSI_HIDE_CURSOR, ANSI_CLEAR)
	return t.out.Flush()
}

func (t *terminal) exitRawTerm() {
	close(t.stop)
	<-t.done

	if t.nonblockSet {
		_ = unix.SetNonblock(t.fd, false)
		t.nonblockSet = false
	}
	if t.restore != nil {
		_ = term.Restore(t.fd, t.restore)
		t.restore = nil
	}

	fmt.Fprint(t.out, ANSI_RESET, ANSI_SHOW_CURSOR, "\r\n")
	_ = t.out.Flush()
}

func (t *terminal) readInput() {
	defer close(t.done)
	buf := make([]byte, 16)

	for {
		select {
		case <-t.stop:
			return
		default:
		}

		n, err := unix.Read(t.fd, buf)
		for i := 0; i < n; i++ {
			t.input(buf[i])
		}

		if errors.Is(err, unix.EAGAIN) || n <= 0 {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
	}
}

func (t *terminal) input(b byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch b {
	case KEY_ESCAPE, KEY_CTRL_C:
		t.quit = true
		return
	}

	if key, ok := keyForByte(b); ok {
		t.held[key] = KEY_HOLD_FRAMES
	}
}

// Poll copies held keys into the machine and ages them by one frame.
func (t *terminal) Poll(mc *machine.Machine) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.quit {
		return false
	}

	for key := range t.held {
		mc.Keypress(key, t.held[key] > 0)
		if t.held[key] > 0 {
			t.held[key]--
		}
	}

	return true
}

func (t *terminal) Present(screen *machine.Screen) error {
	fmt.Fprint(t.out, ANSI_HOME)
	fmt.Fprint(t.out, renderColors(t.palette))
	fmt.Fprint(t.out, renderScreen(screen))
	fmt.Fprint(t.out, ANSI_RESET)
	return t.out.Flush()
}

// Beep rings the terminal bell.
func (t *terminal) Beep() {
	fmt.Fprint(t.out, "\a")
}

func renderColors(palette config.Palette) string {
	return ansiColor(38, palette.Foreground) + ansiColor(48, palette.Background)
}

func ansiColor(layer int, c color.RGBA) string {
	return fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", layer, c.R, c.G, c.B)
}

// renderScreen draws the display as SCREEN_HEIGHT/2 lines of half blocks.
func renderScreen(screen *machine.Screen) string {
	var sb strings.Builder
	sb.Grow(machine.SCREEN_HEIGHT / 2 * (machine.SCREEN_WIDTH*3 + 2))

	for y := 0; y < machine.SCREEN_HEIGHT; y += 2 {
		for x := 0; x < machine.SCREEN_WIDTH; x++ {
			top, bottom := screen.At(x, y), screen.At(x, y+1)

			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}

	return sb.String()
}

func runTerminal(
	ctx context.Context,
	logger *log.Logger,
	mc *machine.Machine,
	opts config.Options,
	palette config.Palette,
) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("terminal mode needs stdin to be a terminal")
	}

	t := newTerminal(os.Stdout, palette)

	// Everything worth logging happens before raw mode; stderr would tear
	// the redrawn screen afterwards.
	if width, height, err := term.GetSize(t.fd); err == nil && !fitsTerminal(width, height) {
		logger.Warn("Terminal is smaller than the display",
			log.Int("columns", width),
			log.Int("rows", height))
	}
	if opts.Debug {
		logger.Debug("Debug logging is suspended while the terminal is in raw mode")
	}

	if err := t.enterRawTerm(); err != nil {
		return err
	}
	go t.readInput()
	defer t.exitRawTerm()

	r := newRunner(config.CreateLogger(false, true), mc, opts, t)
	return r.Run(ctx, t)
}

// fitsTerminal reports whether a terminal of the given size shows the whole
// display, two machine rows per text row.
func fitsTerminal(columns, rows int) bool {
	return columns >= machine.SCREEN_WIDTH && rows >= machine.SCREEN_HEIGHT/2
}
