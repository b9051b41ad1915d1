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

// Package runner drives a machine in frames: a fixed number of instruction
// ticks followed by one timer tick, at the 60 Hz timer cadence.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/log"
)

const (
	DefaultTicksPerFrame = 15
	DefaultFrameRate     = 60
)

// Beeper is told when the sound timer expires.
type Beeper interface {
	Beep()
}

// Frontend is a host that feeds keys into the machine and shows its screen.
type Frontend interface {
	// Poll updates the machine key state and returns false once the user
	// asked to quit.
	Poll(mc *machine.Machine) bool
	Present(screen *machine.Screen) error
}

type Option func(r *Runner)

func WithTicksPerFrame(n int) Option {
	return func(r *Runner) {
		r.ticksPerFrame = n
	}
}

func WithFrameRate(hz int) Option {
	return func(r *Runner) {
		r.frameRate = hz
	}
}

func WithBeeper(b Beeper) Option {
	return func(r *Runner) {
		r.beeper = b
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

type Runner struct {
	mc            *machine.Machine
	ticksPerFrame int
	frameRate     int
	beeper        Beeper
	logger        *log.Logger
	frames        uint64
}

func New(mc *machine.Machine, options ...Option) *Runner {
	r := &Runner{
		mc:            mc,
		ticksPerFrame: DefaultTicksPerFrame,
		frameRate:     DefaultFrameRate,
	}

	for _, option := range options {
		option(r)
	}

	if r.logger == nil {
		r.logger = log.NewWithConfig(log.DefaultConfig())
	}

	return r
}

func (r *Runner) Machine() *machine.Machine {
	return r.mc
}

func (r *Runner) Frames() uint64 {
	return r.frames
}

// Frame executes one frame. A machine fault stops the frame at the faulting
// instruction and is returned as a *machine.Fault for the caller to report.
func (r *Runner) Frame() error {
	if err := r.frame(); err != nil {
		r.logger.Debug("Machine fault",
			log.Err(err),
			log.Int("frame", int(r.frames)))
		return err
	}

	r.frames++
	return nil
}

func (r *Runner) frame() (err error) {
	defer machine.Recover(&err)

	for i := 0; i < r.ticksPerFrame; i++ {
		r.mc.Tick()
	}

	if r.mc.TimerTick() && r.beeper != nil {
		r.beeper.Beep()
	}

	return nil
}

// Run paces frames at the frame rate until the frontend quits, the context
// is cancelled or the machine faults. Only a fault or a presentation error is
// returned.
func (r *Runner) Run(ctx context.Context, frontend Frontend) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.frameRate))
	defer ticker.Stop()

	r.logger.Debug("Starting frame loop",
		log.Int("ticks_per_frame", r.ticksPerFrame),
		log.Int("frame_rate", r.frameRate))

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Frame loop cancelled", log.Int("frames", int(r.frames)))
			return nil
		case <-ticker.C:
		}

		if !frontend.Poll(r.mc) {
			r.logger.Debug("Frontend quit", log.Int("frames", int(r.frames)))
			return nil
		}

		if err := r.Frame(); err != nil {
			return err
		}

		screen := r.mc.Display()
		if err := frontend.Present(&screen); err != nil {
			return fmt.Errorf("presenting frame: %w", err)
		}
	}
}
