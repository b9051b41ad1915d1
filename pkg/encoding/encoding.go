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

package encoding

import (
	"errors"
	"image/color"
	"strconv"
	"strings"
)

// Decodes a hexidecimal string in the formats: 0xFFFF, xFFFF, 0xFF, xFF
func DecodeHex(s string) (uint16, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes an RGB color in the formats: #RRGGBB, 0xRRGGBB, RRGGBB
func DecodeColor(s string) (color.RGBA, error) {
	switch {
	case strings.HasPrefix(s, "#"):
		s = s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	}

	if len(s) != 6 {
		return color.RGBA{}, errors.New("Invalid color string")
	}

	result, err := strconv.ParseUint(s, 16, 32)

	if err != nil {
		return color.RGBA{}, err
	}

	return color.RGBA{
		R: uint8(result >> 16),
		G: uint8(result >> 8),
		B: uint8(result),
		A: 0xFF,
	}, nil
}

// Joins two bytes into a big-endian instruction word
func Word(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

// Splits an instruction word into its four nibbles, highest first
func Nibbles(word uint16) [4]uint8 {
	return [4]uint8{
		uint8(word>>12) & 0xF,
		uint8(word>>8) & 0xF,
		uint8(word>>4) & 0xF,
		uint8(word) & 0xF,
	}
}

// Lower 12 bits of an instruction word
func Address(word uint16) uint16 {
	return word & 0x0FFF
}

// Lower 8 bits of an instruction word
func Byte(word uint16) uint8 {
	return uint8(word & 0x00FF)
}

func BCD(value uint8) [3]uint8 {
	return [3]uint8{value / 100, (value / 10) % 10, value % 10}
}
