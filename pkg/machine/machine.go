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
	"math/rand/v2"
	"time"

	"github.com/lassandro/gochip8/pkg/encoding"
)

func WithRandom(src RandomSource) Option {
	return func(mc *Machine) {
		mc.random = src
	}
}

func New(options ...Option) *Machine {
	mc := &Machine{}

	for _, option := range options {
		option(mc)
	}

	if mc.random == nil {
		seed := uint64(time.Now().UnixNano())
		mc.random = rand.New(rand.NewPCG(seed, seed>>32))
	}

	mc.Reset()

	return mc
}

func (mc *MachineState) Reset() {
	*mc = MachineState{}

	// Font glyphs live in the reserved low region below the program
	copy(mc.Memory[MEMSPACE_FONT:], FONT[:])

	mc.Program = MEMSPACE_PROGRAM
}

func (mc *Machine) Reset() {
	mc.state.Reset()
	mc.current = 0
	mc.opcode = 0
}

func (mc *Machine) SetRandom(src RandomSource) {
	mc.random = src
}

// Load copies a program image into memory at MEMSPACE_PROGRAM. Images longer
// than MAX_PROGRAM_SIZE bytes are truncated at the end of memory.
func (mc *Machine) Load(data []byte) {
	copy(mc.state.Memory[MEMSPACE_PROGRAM:], data)
}

func (mc *Machine) Keypress(index int, pressed bool) {
	if index < 0 || index >= KEY_COUNT {
		mc.fault(ErrKeyBounds, "key %d", index)
	}

	mc.state.Keys[index] = pressed
}

func (mc *Machine) Display() Screen {
	return mc.state.Screen
}

func (mc *Machine) State() MachineState {
	return mc.state
}

// TimerTick decrements both timers once and reports whether the sound timer
// just expired, which is when a tone should sound.
func (mc *Machine) TimerTick() bool {
	if mc.state.Delay > 0 {
		mc.state.Delay--
	}

	tone := false

	if mc.state.Sound > 0 {
		tone = mc.state.Sound == 1
		mc.state.Sound--
	}

	return tone
}

func (mc *Machine) push(value uint16) {
	if int(mc.state.StackPointer) == STACK_SIZE {
		mc.fault(ErrStackOverflow, "depth %d", STACK_SIZE)
	}

	mc.state.Stack[mc.state.StackPointer] = value
	mc.state.StackPointer++
}

func (mc *Machine) pop() uint16 {
	if mc.state.StackPointer == 0 {
		mc.fault(ErrStackUnderflow, "")
	}

	mc.state.StackPointer--
	return mc.state.Stack[mc.state.StackPointer]
}

func (mc *Machine) read(addr int) uint8 {
	if addr < 0 || addr >= MEMORY_SIZE {
		mc.fault(ErrMemoryBounds, "read %#04x", addr)
	}

	return mc.state.Memory[addr]
}

func (mc *Machine) write(addr int, value uint8) {
	if addr < 0 || addr >= MEMORY_SIZE {
		mc.fault(ErrMemoryBounds, "write %#04x", addr)
	}

	mc.state.Memory[addr] = value
}

func (mc *Machine) fetch() uint16 {
	pc := int(mc.state.Program)
	instruction := encoding.Word(mc.read(pc), mc.read(pc+1))

	mc.state.Program += 2

	return instruction
}

func (mc *Machine) skipIf(condition bool) {
	if condition {
		mc.state.Program += 2
	}
}

func (mc *Machine) unimplemented() {
	if name := mnemonic(mc.opcode); name != "" {
		mc.fault(ErrUnimplemented, "%s is not supported", name)
	}

	mc.fault(ErrUnimplemented, "")
}

func (mc *Machine) Tick() {
	mc.current = mc.state.Program
	mc.opcode = mc.fetch()

	mc.execute(mc.opcode)
}

func (mc *Machine) execute(instruction uint16) {
	digits := encoding.Nibbles(instruction)
	x := digits[1]
	y := digits[2]
	n := digits[3]
	nn := encoding.Byte(instruction)
	nnn := encoding.Address(instruction)

	v := &mc.state.Registers

	switch digits[0] {
	// NOP  |0000   |0000   |0000   |0000   | No operation
	// CLS  |0000   |0000   |1110   |0000   | Clear screen
	// RET  |0000   |0000   |1110   |1110   | Return from subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SYS:
		switch instruction {
		case 0x0000:
		case 0x00E0:
			mc.state.Screen = Screen{}
		case 0x00EE:
			mc.state.Program = mc.pop()
		default:
			mc.unimplemented()
		}

	// JP   |0001   |addr                   | Jump
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JP:
		mc.state.Program = nnn

	// CALL |0010   |addr                   | Call subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_CALL:
		mc.push(mc.state.Program)
		mc.state.Program = nnn

	// SE   |0011   |Vx     |byte           | Skip if Vx == byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SE_IMM:
		mc.skipIf(v[x] == nn)

	// SNE  |0100   |Vx     |byte           | Skip if Vx != byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SNE_IMM:
		mc.skipIf(v[x] != nn)

	// SE   |0101   |Vx     |Vy     |0000   | Skip if Vx == Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SE_REG:
		if n != 0 {
			mc.unimplemented()
		}

		mc.skipIf(v[x] == v[y])

	// LD   |0110   |Vx     |byte           | Vx = byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LD_IMM:
		v[x] = nn

	// ADD  |0111   |Vx     |byte           | Vx += byte, no carry
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ADD_IMM:
		v[x] += nn

	// ALU  |1000   |Vx     |Vy     |op     | Register arithmetic
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ALU:
		mc.executeALU(x, y, n)

	// SNE  |1001   |Vx     |Vy     |0000   | Skip if Vx != Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SNE_REG:
		if n != 0 {
			mc.unimplemented()
		}

		mc.skipIf(v[x] != v[y])

	// LD   |1010   |addr                   | I = addr
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LD_I:
		mc.state.Index = nnn

	// JP   |1011   |addr                   | Jump to V0 + addr
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JP_V0:
		mc.state.Program = uint16(v[0]) + nnn

	// RND  |1100   |Vx     |byte           | Vx = random & byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_RND:
		v[x] = uint8(mc.random.Uint32()) & nn

	// DRW  |1101   |Vx     |Vy     |rows   | XOR sprite at (Vx, Vy)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_DRW:
		mc.draw(int(v[x]), int(v[y]), int(n))

	// SKP  |1110   |Vx     |1001   |1110   | Skip if key Vx pressed
	// SKNP |1110   |Vx     |1010   |0001   | Skip if key Vx released
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SKP:
		switch nn {
		case 0x9E:
			mc.skipIf(mc.key(v[x]))
		case 0xA1:
			mc.skipIf(!mc.key(v[x]))
		default:
			mc.unimplemented()
		}

	// MISC |1111   |Vx     |op             | Timers, keys, index, memory
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_MISC:
		mc.executeMisc(x, nn)
	}
}

func (mc *Machine) executeALU(x, y, op uint8) {
	v := &mc.state.Registers

	// The flag is always written after the result, so VF as a destination
	// ends up holding the flag.
	switch op {
	case ALU_LD:
		v[x] = v[y]

	case ALU_OR:
		v[x] |= v[y]

	case ALU_AND:
		v[x] &= v[y]

	case ALU_XOR:
		v[x] ^= v[y]

	case ALU_ADD:
		sum := uint16(v[x]) + uint16(v[y])
		v[x] = uint8(sum)
		v[REG_FLAG] = boolToFlag(sum > 0xFF)

	case ALU_SUB:
		borrow := v[y] > v[x]
		v[x] -= v[y]
		v[REG_FLAG] = boolToFlag(!borrow)

	case ALU_SHR:
		lsb := v[x] & 0x1
		v[x] >>= 1
		v[REG_FLAG] = lsb

	case ALU_SUBN:
		borrow := v[x] > v[y]
		v[x] = v[y] - v[x]
		v[REG_FLAG] = boolToFlag(!borrow)

	// Compatibility: the flag receives the whole pre-shift value rather than
	// its most significant bit.
	case ALU_SHL:
		prev := v[x]
		v[x] <<= 1
		v[REG_FLAG] = prev

	default:
		mc.unimplemented()
	}
}

func (mc *Machine) executeMisc(x, op uint8) {
	v := &mc.state.Registers

	switch op {
	case MISC_LD_DT:
		v[x] = mc.state.Delay

	// Without a pressed key the instruction is fetched again next tick
	case MISC_LD_KEY:
		for i, pressed := range mc.state.Keys {
			if pressed {
				v[x] = uint8(i)
				return
			}
		}

		mc.state.Program -= 2

	case MISC_SET_DT:
		mc.state.Delay = v[x]

	case MISC_SET_ST:
		mc.state.Sound = v[x]

	case MISC_ADD_I:
		mc.state.Index += uint16(v[x])

	case MISC_LD_FONT:
		mc.state.Index = MEMSPACE_FONT + uint16(v[x])*uint16(FONT_GLYPH_SIZE)

	case MISC_BCD:
		for i, digit := range encoding.BCD(v[x]) {
			mc.write(int(mc.state.Index)+i, digit)
		}

	// Compatibility: registers V0 through V(x-1) are transferred, Vx is not
	case MISC_STORE:
		for i := 0; i < int(x); i++ {
			mc.write(int(mc.state.Index)+i, v[i])
		}

	case MISC_LOAD:
		for i := 0; i < int(x); i++ {
			v[i] = mc.read(int(mc.state.Index) + i)
		}

	default:
		mc.unimplemented()
	}
}

func (mc *Machine) draw(originX, originY, rows int) {
	collision := false

	for row := 0; row < rows; row++ {
		pixels := mc.read(int(mc.state.Index) + row)

		for col := 0; col < 8; col++ {
			if pixels&(0x80>>col) == 0 {
				continue
			}

			// Sprites wrap around both edges instead of clipping
			px := (originX + col) % SCREEN_WIDTH
			py := (originY + row) % SCREEN_HEIGHT
			idx := px + SCREEN_WIDTH*py

			if mc.state.Screen[idx] {
				collision = true
			}

			mc.state.Screen[idx] = !mc.state.Screen[idx]
		}
	}

	mc.state.Registers[REG_FLAG] = boolToFlag(collision)
}

func (mc *Machine) key(index uint8) bool {
	if int(index) >= KEY_COUNT {
		mc.fault(ErrKeyBounds, "key %d", index)
	}

	return mc.state.Keys[index]
}

func boolToFlag(value bool) uint8 {
	if value {
		return 1
	}

	return 0
}
