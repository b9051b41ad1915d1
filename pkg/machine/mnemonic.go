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
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Looks up the conventional CHIP-8 mnemonic for an instruction word, so that
// faults on instructions outside this machine's set can still name them.
// Returns an empty string for words that are not CHIP-8 instructions at all.
func mnemonic(instruction uint16) string {
	for _, op := range chip8.Opcodes[int(instruction>>12)] {
		if op.Instruction == nil {
			continue
		}

		if op.Info.Mask&instruction == op.Info.Value {
			return op.Instruction.Name
		}
	}

	return ""
}
