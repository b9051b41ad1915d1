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

package rom

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lassandro/gochip8/pkg/machine"
)

var (
	ErrEmpty    = errors.New("image is empty")
	ErrTooLarge = errors.New("image does not fit in program memory")
)

type ROM struct {
	Name string
	Data []byte
}

// Load reads a raw program image. Images are loaded verbatim at
// machine.MEMSPACE_PROGRAM, so anything larger than machine.MAX_PROGRAM_SIZE
// is rejected here rather than overrunning memory.
func Load(path string) (*ROM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("reading image %s: %w", path, ErrEmpty)
	}

	if len(data) > machine.MAX_PROGRAM_SIZE {
		return nil, fmt.Errorf(
			"reading image %s: %w (%d bytes, limit %d)",
			path, ErrTooLarge, len(data), machine.MAX_PROGRAM_SIZE,
		)
	}

	base := filepath.Base(path)

	return &ROM{
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		Data: data,
	}, nil
}

func (r *ROM) Size() int {
	return len(r.Data)
}
