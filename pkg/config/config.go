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

// Package config holds the host options shared by the frontends and the
// logger they log through.
package config

import (
	"fmt"
	"image/color"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/runner"
	"github.com/retroenv/retrogolib/log"
)

const (
	DefaultScale      = 10
	DefaultForeground = "#FFFFFF"
	DefaultBackground = "#000000"

	MaxTicksPerFrame = 1000
	MaxScale         = 64
)

// Options configure the host around the machine. The machine itself has no
// configuration.
type Options struct {
	Input         string
	TicksPerFrame int
	Scale         int
	Foreground    string
	Background    string
	Seed          string
	Terminal      bool
	Debug         bool
	Quiet         bool
}

// Palette is the pair of colors lit and unlit pixels are drawn in.
type Palette struct {
	Foreground color.RGBA
	Background color.RGBA
}

func Defaults() Options {
	return Options{
		TicksPerFrame: runner.DefaultTicksPerFrame,
		Scale:         DefaultScale,
		Foreground:    DefaultForeground,
		Background:    DefaultBackground,
	}
}

// Validate checks ranges and returns the parsed palette.
func (o Options) Validate() (Palette, error) {
	var palette Palette

	if o.TicksPerFrame < 1 || o.TicksPerFrame > MaxTicksPerFrame {
		return palette, fmt.Errorf("ticks per frame must be between 1 and %d, got %d",
			MaxTicksPerFrame, o.TicksPerFrame)
	}

	if o.Scale < 1 || o.Scale > MaxScale {
		return palette, fmt.Errorf("scale must be between 1 and %d, got %d", MaxScale, o.Scale)
	}

	var err error
	if palette.Foreground, err = encoding.DecodeColor(o.Foreground); err != nil {
		return palette, fmt.Errorf("parsing foreground color %q: %w", o.Foreground, err)
	}
	if palette.Background, err = encoding.DecodeColor(o.Background); err != nil {
		return palette, fmt.Errorf("parsing background color %q: %w", o.Background, err)
	}

	if o.Seed != "" {
		if _, err := encoding.DecodeHex(o.Seed); err != nil {
			return palette, fmt.Errorf("parsing seed %q: %w", o.Seed, err)
		}
	}

	return palette, nil
}

// SeedValue returns the parsed random seed and whether one was given.
func (o Options) SeedValue() (uint16, bool) {
	if o.Seed == "" {
		return 0, false
	}

	seed, err := encoding.DecodeHex(o.Seed)
	if err != nil {
		return 0, false
	}
	return seed, true
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
