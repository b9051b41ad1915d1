//go:build !headless

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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/lassandro/gochip8/pkg/rom"
	"github.com/lassandro/gochip8/pkg/runner"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/font/basicfont"
)

const PAUSE_LABEL = "PAUSED"

var windowKeys = [machine.KEY_COUNT]ebiten.Key{
	0x0: ebiten.KeyX, 0x1: ebiten.KeyDigit1, 0x2: ebiten.KeyDigit2, 0x3: ebiten.KeyDigit3,
	0x4: ebiten.KeyQ, 0x5: ebiten.KeyW, 0x6: ebiten.KeyE, 0x7: ebiten.KeyA,
	0x8: ebiten.KeyS, 0x9: ebiten.KeyD, 0xA: ebiten.KeyZ, 0xB: ebiten.KeyC,
	0xC: ebiten.KeyDigit4, 0xD: ebiten.KeyR, 0xE: ebiten.KeyF, 0xF: ebiten.KeyV,
}

// window runs one machine frame per ebiten update. Escape quits, P pauses
// and Backspace reloads the image into a reset machine.
type window struct {
	ctx     context.Context
	logger  *log.Logger
	runner  *runner.Runner
	image   *rom.ROM
	palette config.Palette
	bell    io.Writer

	pixels []byte
	canvas *ebiten.Image
	paused bool
	err    error
}

func newWindow(
	ctx context.Context,
	logger *log.Logger,
	image *rom.ROM,
	palette config.Palette,
) *window {
	return &window{
		ctx:     ctx,
		logger:  logger,
		image:   image,
		palette: palette,
		bell:    os.Stdout,
		pixels:  make([]byte, machine.SCREEN_WIDTH*machine.SCREEN_HEIGHT*4),
	}
}

// Beep rings the bell of the controlling terminal.
func (w *window) Beep() {
	fmt.Fprint(w.bell, "\a")
}

func (w *window) Poll(mc *machine.Machine) bool {
	for key, hostKey := range windowKeys {
		mc.Keypress(key, ebiten.IsKeyPressed(hostKey))
	}
	return true
}

func (w *window) reset() {
	mc := w.runner.Machine()
	mc.Reset()
	mc.Load(w.image.Data)
	w.logger.Info("Machine reset", log.String("name", w.image.Name))
}

func (w *window) Update() error {
	if w.ctx.Err() != nil || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		w.paused = !w.paused
		w.logger.Debug("Pause toggled", log.String("paused", fmt.Sprint(w.paused)))
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		w.reset()
	}

	if w.paused {
		return nil
	}

	w.Poll(w.runner.Machine())

	if err := w.runner.Frame(); err != nil {
		w.err = err
		return ebiten.Termination
	}

	return nil
}

func (w *window) Draw(screen *ebiten.Image) {
	display := w.runner.Machine().Display()
	renderPixels(w.pixels, &display, w.palette)

	if w.canvas == nil {
		w.canvas = ebiten.NewImage(machine.SCREEN_WIDTH, machine.SCREEN_HEIGHT)
	}
	w.canvas.WritePixels(w.pixels)
	screen.DrawImage(w.canvas, nil)

	if w.paused {
		face := basicfont.Face7x13
		bounds := text.BoundString(face, PAUSE_LABEL)
		x := (machine.SCREEN_WIDTH - bounds.Dx()) / 2
		y := (machine.SCREEN_HEIGHT + bounds.Dy()) / 2
		text.Draw(screen, PAUSE_LABEL, face, x, y, w.palette.Foreground)
	}
}

func (w *window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return machine.SCREEN_WIDTH, machine.SCREEN_HEIGHT
}

// renderPixels fills an RGBA buffer from the display.
func renderPixels(pixels []byte, screen *machine.Screen, palette config.Palette) {
	for y := 0; y < machine.SCREEN_HEIGHT; y++ {
		for x := 0; x < machine.SCREEN_WIDTH; x++ {
			c := palette.Background
			if screen.At(x, y) {
				c = palette.Foreground
			}

			i := (y*machine.SCREEN_WIDTH + x) * 4
			pixels[i+0] = c.R
			pixels[i+1] = c.G
			pixels[i+2] = c.B
			pixels[i+3] = c.A
		}
	}
}

func runWindow(
	ctx context.Context,
	logger *log.Logger,
	mc *machine.Machine,
	image *rom.ROM,
	opts config.Options,
	palette config.Palette,
) error {
	w := newWindow(ctx, logger, image, palette)
	w.runner = newRunner(logger, mc, opts, w)

	ebiten.SetWindowSize(machine.SCREEN_WIDTH*opts.Scale, machine.SCREEN_HEIGHT*opts.Scale)
	ebiten.SetWindowTitle("gochip8 - " + image.Name)
	ebiten.SetTPS(runner.DefaultFrameRate)

	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("running window: %w", err)
	}

	return w.err
}
