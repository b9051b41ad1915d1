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

// Source of the random byte consumed by RND; *rand.Rand from math/rand/v2
// satisfies it.
type RandomSource interface {
	Uint32() uint32
}

// Row-major 64x32 monochrome framebuffer
type Screen [SCREEN_WIDTH * SCREEN_HEIGHT]bool

func (s *Screen) At(x, y int) bool {
	return s[x+SCREEN_WIDTH*y]
}

type MachineState struct {
	Registers    [REGISTER_COUNT]uint8
	Program      uint16
	Index        uint16
	Stack        [STACK_SIZE]uint16
	StackPointer uint8
	Delay        uint8
	Sound        uint8
	Keys         [KEY_COUNT]bool
	Screen       Screen
	Memory       [MEMORY_SIZE]uint8
}

type Option func(mc *Machine)

type Machine struct {
	state  MachineState
	random RandomSource

	// Address and word of the instruction currently executing, for faults
	current uint16
	opcode  uint16
}
