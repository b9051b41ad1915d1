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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/runner"
	"github.com/retroenv/retrogolib/assert"
)

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := parseFlags([]string{"pong.ch8"})
	assert.NoError(t, err)

	assert.Equal(t, "pong.ch8", opts.Input)
	assert.Equal(t, runner.DefaultTicksPerFrame, opts.TicksPerFrame)
	assert.Equal(t, config.DefaultScale, opts.Scale)
	assert.Equal(t, config.DefaultForeground, opts.Foreground)
	assert.Equal(t, config.DefaultBackground, opts.Background)
	assert.False(t, opts.Terminal)
	assert.Equal(t, "", opts.Seed)
}

func TestParseFlagsAll(t *testing.T) {
	opts, err := parseFlags([]string{
		"-term", "-scale", "4", "-ticks", "20",
		"-fg", "#00FF00", "-bg", "0x101010",
		"-seed", "0xBEEF", "-debug", "-q",
		"tetris.ch8",
	})
	assert.NoError(t, err)

	assert.Equal(t, "tetris.ch8", opts.Input)
	assert.True(t, opts.Terminal)
	assert.Equal(t, 4, opts.Scale)
	assert.Equal(t, 20, opts.TicksPerFrame)
	assert.Equal(t, "#00FF00", opts.Foreground)
	assert.Equal(t, "0x101010", opts.Background)
	assert.Equal(t, "0xBEEF", opts.Seed)
	assert.True(t, opts.Debug)
	assert.True(t, opts.Quiet)
}

func TestParseFlagsUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		help bool
	}{
		{"no image", []string{}, false},
		{"two images", []string{"a.ch8", "b.ch8"}, false},
		{"unknown flag", []string{"-turbo", "a.ch8"}, false},
		{"bad int", []string{"-scale", "big", "a.ch8"}, false},
		{"help", []string{"-help"}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := parseFlags(test.args)
			assert.Error(t, err)

			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))
			assert.Equal(t, test.help, usageErr.help)

			var buf bytes.Buffer
			usageErr.ShowUsage(&buf)
			assert.True(t, strings.HasPrefix(buf.String(), usage))
			assert.Contains(t, buf.String(), "-ticks")
		})
	}
}

func TestNewMachineSeeded(t *testing.T) {
	opts := config.Defaults()
	opts.Seed = "0x1234"

	program := []byte{0xC0, 0xFF, 0xC1, 0xFF, 0xC2, 0xFF}

	first := newMachine(opts)
	first.Load(program)
	second := newMachine(opts)
	second.Load(program)

	for i := 0; i < 3; i++ {
		first.Tick()
		second.Tick()
	}

	assert.Equal(t, first.State().Registers, second.State().Registers)
}
