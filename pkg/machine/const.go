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

const (
	MEMORY_SIZE    int = 4096
	REGISTER_COUNT int = 16
	STACK_SIZE     int = 16
	KEY_COUNT      int = 16
	SCREEN_WIDTH   int = 64
	SCREEN_HEIGHT  int = 32
)

const (
	MEMSPACE_FONT    uint16 = 0x0000
	MEMSPACE_PROGRAM uint16 = 0x0200
)

const MAX_PROGRAM_SIZE int = MEMORY_SIZE - int(MEMSPACE_PROGRAM)

const (
	FONT_GLYPH_SIZE int = 5
	FONT_SIZE       int = 16 * FONT_GLYPH_SIZE
)

// VF doubles as the carry, borrow, shift and collision flag
const REG_FLAG uint8 = 0xF

const (
	OP_SYS     uint8 = 0x0
	OP_JP      uint8 = 0x1
	OP_CALL    uint8 = 0x2
	OP_SE_IMM  uint8 = 0x3
	OP_SNE_IMM uint8 = 0x4
	OP_SE_REG  uint8 = 0x5
	OP_LD_IMM  uint8 = 0x6
	OP_ADD_IMM uint8 = 0x7
	OP_ALU     uint8 = 0x8
	OP_SNE_REG uint8 = 0x9
	OP_LD_I    uint8 = 0xA
	OP_JP_V0   uint8 = 0xB
	OP_RND     uint8 = 0xC
	OP_DRW     uint8 = 0xD
	OP_SKP     uint8 = 0xE
	OP_MISC    uint8 = 0xF
)

const (
	ALU_LD   uint8 = 0x0
	ALU_OR   uint8 = 0x1
	ALU_AND  uint8 = 0x2
	ALU_XOR  uint8 = 0x3
	ALU_ADD  uint8 = 0x4
	ALU_SUB  uint8 = 0x5
	ALU_SHR  uint8 = 0x6
	ALU_SUBN uint8 = 0x7
	ALU_SHL  uint8 = 0x8
)

const (
	MISC_LD_DT   uint8 = 0x07
	MISC_LD_KEY  uint8 = 0x0A
	MISC_SET_DT  uint8 = 0x15
	MISC_SET_ST  uint8 = 0x18
	MISC_ADD_I   uint8 = 0x1E
	MISC_LD_FONT uint8 = 0x29
	MISC_BCD     uint8 = 0x33
	MISC_STORE   uint8 = 0x55
	MISC_LOAD    uint8 = 0x65
)

var FONT = [FONT_SIZE]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}
