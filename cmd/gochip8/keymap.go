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
	"github.com/lassandro/gochip8/pkg/machine"
)

// The hexadecimal keypad is laid out over the left side of a QWERTY
// keyboard:
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   <=   Q W E R
//	7 8 9 E        A S D F
//	A 0 B F        Z X C V
var keypad = [machine.KEY_COUNT]byte{
	0x0: 'x', 0x1: '1', 0x2: '2', 0x3: '3',
	0x4: 'q', 0x5: 'w', 0x6: 'e', 0x7: 'a',
	0x8: 's', 0x9: 'd', 0xA: 'z', 0xB: 'c',
	0xC: '4', 0xD: 'r', 0xE: 'f', 0xF: 'v',
}

// keyForByte returns the keypad index a host character maps to. Letters
// match in either case.
func keyForByte(b byte) (int, bool) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}

	for key, ch := range keypad {
		if ch == b {
			return key, true
		}
	}

	return 0, false
}
