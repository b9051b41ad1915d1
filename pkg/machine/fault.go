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
	"fmt"
)

var (
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrMemoryBounds   = errors.New("memory address out of range")
	ErrKeyBounds      = errors.New("key index out of range")
	ErrUnimplemented  = errors.New("unimplemented instruction")
)

// Fault is the panic value raised by the machine on conditions that no
// program can recover from. Program and Opcode identify the instruction that
// was executing when the fault occurred.
type Fault struct {
	Err     error
	Program uint16
	Opcode  uint16
	Detail  string
}

func (f *Fault) Error() string {
	msg := fmt.Sprintf(
		"%v at %#04x (opcode %#04x)", f.Err, f.Program, f.Opcode,
	)

	if f.Detail != "" {
		msg += ": " + f.Detail
	}

	return msg
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func (mc *Machine) fault(err error, format string, args ...interface{}) {
	panic(&Fault{
		Err:     err,
		Program: mc.current,
		Opcode:  mc.opcode,
		Detail:  fmt.Sprintf(format, args...),
	})
}

// Recover converts a machine fault raised in the calling goroutine into an
// error stored in *err. Any other panic is propagated.
//
//	defer machine.Recover(&err)
func Recover(err *error) {
	if r := recover(); r != nil {
		fault, ok := r.(*Fault)

		if !ok {
			panic(r)
		}

		*err = fault
	}
}
