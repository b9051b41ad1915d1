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

package machine

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func runFault(fn func()) (err error) {
	defer Recover(&err)
	fn()
	return nil
}

func TestNew(t *testing.T) {
	mc := New()
	state := mc.State()

	assert.Equal(t, MEMSPACE_PROGRAM, state.Program)
	assert.Equal(t, uint16(0), state.Index)
	assert.Equal(t, uint8(0), state.StackPointer)
	assert.Equal(t, [REGISTER_COUNT]uint8{}, state.Registers)
	assert.Equal(t, [KEY_COUNT]bool{}, state.Keys)
	assert.Equal(t, Screen{}, state.Screen)

	for i, glyph := range FONT {
		assert.Equal(t, glyph, state.Memory[i])
	}

	for i := FONT_SIZE; i < MEMORY_SIZE; i++ {
		if state.Memory[i] != 0 {
			t.Fatalf("Memory not zeroed at %#04x", i)
		}
	}
}

func TestReset(t *testing.T) {
	fresh := New(WithRandom(fixedRandom(0xFF))).State()

	mc := New(WithRandom(fixedRandom(0xFF)))
	mc.Load([]byte{
		0x60, 0xFF, // LD V0, 0xFF
		0xA0, 0x00, // LD I, 0x000
		0xD0, 0x05, // DRW V0, V0, 5
		0xF0, 0x15, // LD DT, V0
		0xF0, 0x18, // LD ST, V0
		0xC1, 0xFF, // RND V1, 0xFF
		0xA3, 0x00, // LD I, 0x300
		0xF2, 0x55, // LD [I], V1
		0x22, 0x00, // CALL 0x200
	})
	mc.Keypress(7, true)

	for i := 0; i < 9; i++ {
		mc.Tick()
	}
	mc.TimerTick()

	dirty := mc.State()
	// CALL at 0x210 leaves the program counter back at 0x200, so compare
	// state that only the run could have produced
	assert.Equal(t, uint16(0x212), dirty.Stack[0])
	assert.Equal(t, uint8(1), dirty.StackPointer)
	assert.Equal(t, uint8(0xFE), dirty.Delay)
	assert.True(t, fresh.Screen != dirty.Screen)

	mc.Reset()
	assert.True(t, fresh == mc.State())

	mc.Reset()
	assert.True(t, fresh == mc.State())
}

func TestLoad(t *testing.T) {
	mc := New()
	mc.Load([]byte{0xDE, 0xAD, 0xBE, 0xEF})

	state := mc.State()
	assert.Equal(t, uint8(0xDE), state.Memory[0x200])
	assert.Equal(t, uint8(0xAD), state.Memory[0x201])
	assert.Equal(t, uint8(0xBE), state.Memory[0x202])
	assert.Equal(t, uint8(0xEF), state.Memory[0x203])
	assert.Equal(t, uint8(0x00), state.Memory[0x204])
	assert.Equal(t, uint8(0x00), state.Memory[0x1FF])
}

func TestLoadFull(t *testing.T) {
	image := make([]byte, MAX_PROGRAM_SIZE)
	for i := range image {
		image[i] = uint8(i)
	}

	mc := New()
	mc.Load(image)

	state := mc.State()
	assert.Equal(t, uint8((MAX_PROGRAM_SIZE-1)&0xFF), state.Memory[MEMORY_SIZE-1])
}

func TestLoadTruncated(t *testing.T) {
	image := make([]byte, MAX_PROGRAM_SIZE+16)
	for i := range image {
		image[i] = 0xAA
	}

	mc := New()
	mc.Load(image)

	state := mc.State()
	assert.Equal(t, uint8(0xAA), state.Memory[MEMSPACE_PROGRAM])
	assert.Equal(t, uint8(0xAA), state.Memory[MEMORY_SIZE-1])
	assert.Equal(t, uint8(0x00), state.Memory[MEMSPACE_PROGRAM-1])
}

func TestTimerTick(t *testing.T) {
	mc := New()

	// Both timers are floored at zero
	assert.False(t, mc.TimerTick())
	assert.Equal(t, uint8(0), mc.State().Delay)
	assert.Equal(t, uint8(0), mc.State().Sound)

	mc.state.Delay = 2
	mc.state.Sound = 3

	assert.False(t, mc.TimerTick())
	assert.Equal(t, uint8(1), mc.State().Delay)
	assert.Equal(t, uint8(2), mc.State().Sound)

	assert.False(t, mc.TimerTick())
	assert.Equal(t, uint8(0), mc.State().Delay)
	assert.Equal(t, uint8(1), mc.State().Sound)

	// The tick that brings the sound timer to zero requests the tone
	assert.True(t, mc.TimerTick())
	assert.Equal(t, uint8(0), mc.State().Sound)

	assert.False(t, mc.TimerTick())
	assert.Equal(t, uint8(0), mc.State().Delay)
	assert.Equal(t, uint8(0), mc.State().Sound)
}

func TestDrawTwice(t *testing.T) {
	mc := New()
	mc.Load([]byte{
		0x60, 0x08, // LD V0, 8
		0x61, 0x04, // LD V1, 4
		0xA3, 0x00, // LD I, 0x300
		0xD0, 0x11, // DRW V0, V1, 1
		0xD0, 0x11, // DRW V0, V1, 1
	})
	mc.state.Memory[0x300] = 0b1000_0000

	for i := 0; i < 4; i++ {
		mc.Tick()
	}

	screen := mc.Display()
	assert.True(t, screen.At(8, 4))
	assert.Equal(t, uint8(0), mc.State().Registers[REG_FLAG])

	mc.Tick()

	screen = mc.Display()
	assert.False(t, screen.At(8, 4))
	assert.Equal(t, uint8(1), mc.State().Registers[REG_FLAG])
	assert.Equal(t, Screen{}, screen)
}

func TestDisplayIsCopy(t *testing.T) {
	mc := New()
	screen := mc.Display()
	screen[0] = true

	after := mc.Display()
	assert.False(t, after.At(0, 0))
}

func TestKeypress(t *testing.T) {
	mc := New()

	mc.Keypress(0xF, true)
	assert.True(t, mc.State().Keys[0xF])

	mc.Keypress(0xF, false)
	assert.False(t, mc.State().Keys[0xF])
}

func TestFaults(t *testing.T) {
	tests := []struct {
		name    string
		program []byte
		steps   int
		want    error
	}{
		{
			name:    "stack overflow",
			program: []byte{0x22, 0x00},
			steps:   STACK_SIZE + 1,
			want:    ErrStackOverflow,
		},
		{
			name:    "stack underflow",
			program: []byte{0x00, 0xEE},
			steps:   1,
			want:    ErrStackUnderflow,
		},
		{
			name:    "machine code routine",
			program: []byte{0x01, 0x23},
			steps:   1,
			want:    ErrUnimplemented,
		},
		{
			name:    "register compare with trailing nibble",
			program: []byte{0x51, 0x21},
			steps:   1,
			want:    ErrUnimplemented,
		},
		{
			name:    "shift left with E suffix",
			program: []byte{0x80, 0x0E},
			steps:   1,
			want:    ErrUnimplemented,
		},
		{
			name:    "unknown key instruction",
			program: []byte{0xE0, 0x00},
			steps:   1,
			want:    ErrUnimplemented,
		},
		{
			name:    "unknown misc instruction",
			program: []byte{0xF0, 0xFF},
			steps:   1,
			want:    ErrUnimplemented,
		},
		{
			name:    "fetch past memory",
			program: []byte{0x1F, 0xFF},
			steps:   2,
			want:    ErrMemoryBounds,
		},
		{
			name:    "key register out of range",
			program: []byte{0x60, 0x10, 0xE0, 0x9E},
			steps:   2,
			want:    ErrKeyBounds,
		},
		{
			name:    "sprite past memory",
			program: []byte{0xAF, 0xFF, 0xD0, 0x02},
			steps:   2,
			want:    ErrMemoryBounds,
		},
		{
			name:    "bcd past memory",
			program: []byte{0xAF, 0xFE, 0xF0, 0x33},
			steps:   2,
			want:    ErrMemoryBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc := New()
			mc.Load(tt.program)

			err := runFault(func() {
				for i := 0; i < tt.steps; i++ {
					mc.Tick()
				}
			})

			assert.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))

			var fault *Fault
			assert.True(t, errors.As(err, &fault))
		})
	}
}

func TestFaultLocation(t *testing.T) {
	mc := New()
	mc.Load([]byte{0x00, 0x00, 0xF0, 0xFF})

	err := runFault(func() {
		mc.Tick()
		mc.Tick()
	})

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0x202), fault.Program)
	assert.Equal(t, uint16(0xF0FF), fault.Opcode)
	assert.ErrorContains(t, err, "unimplemented instruction")
}

func TestKeypressFault(t *testing.T) {
	mc := New()

	err := runFault(func() {
		mc.Keypress(KEY_COUNT, true)
	})
	assert.True(t, errors.Is(err, ErrKeyBounds))

	err = runFault(func() {
		mc.Keypress(-1, true)
	})
	assert.True(t, errors.Is(err, ErrKeyBounds))
}

func TestRecoverPropagatesForeignPanics(t *testing.T) {
	defer func() {
		assert.True(t, recover() == "boom")
	}()

	_ = runFault(func() {
		panic("boom")
	})
}

func TestMnemonic(t *testing.T) {
	assert.Equal(t, chip8.OrName, mnemonic(0x8AB1))
	assert.Equal(t, chip8.DrwName, mnemonic(0xD125))
}
