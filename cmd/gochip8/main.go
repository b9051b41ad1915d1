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
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/lassandro/gochip8/pkg/rom"
	"github.com/lassandro/gochip8/pkg/runner"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

const usage = "gochip8 [-term] [-scale n] [-ticks n] [-fg color] [-bg color] [-seed 0x####] filename"

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
	help  bool
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintln(w, usage)
	fmt.Fprintln(w)
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
}

func parseFlags(args []string) (config.Options, error) {
	opts := config.Defaults()
	flags := flag.NewFlagSet("gochip8", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var help bool
	flags.BoolVar(&help, "help", false, "Displays command usage")
	flags.BoolVar(&opts.Terminal, "term", false, "Renders in the terminal instead of a window")
	flags.IntVar(&opts.Scale, "scale", opts.Scale, "Window pixels per machine pixel")
	flags.IntVar(&opts.TicksPerFrame, "ticks", opts.TicksPerFrame, "Instructions executed per 60 Hz frame")
	flags.StringVar(&opts.Foreground, "fg", opts.Foreground, "Color of lit pixels")
	flags.StringVar(&opts.Background, "bg", opts.Background, "Color of unlit pixels")
	flags.StringVar(&opts.Seed, "seed", "", "Fixed hex seed for the random number instruction")
	flags.BoolVar(&opts.Debug, "debug", false, "Enables debug logging")
	flags.BoolVar(&opts.Quiet, "q", false, "Only logs errors")

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	if help {
		return opts, &UsageError{flags: flags, help: true}
	}

	if flags.NArg() != 1 {
		return opts, &UsageError{
			flags: flags,
			msg:   fmt.Sprintf("expected one image path, got %d arguments", flags.NArg()),
		}
	}

	opts.Input = flags.Arg(0)
	return opts, nil
}

func newMachine(opts config.Options) *machine.Machine {
	if seed, ok := opts.SeedValue(); ok {
		src := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
		return machine.New(machine.WithRandom(src))
	}

	return machine.New()
}

func gochip8() int {
	opts, err := parseFlags(os.Args[1:])

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		if usageErr.help {
			usageErr.ShowUsage(os.Stdout)
			return 0
		}

		fmt.Fprintf(os.Stderr, "gochip8: %s\n", usageErr.msg)
		usageErr.ShowUsage(os.Stderr)
		return 1
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)

	palette, err := opts.Validate()
	if err != nil {
		logger.Error("Invalid options", log.Err(err))
		return 1
	}

	image, err := rom.Load(opts.Input)
	if err != nil {
		logger.Error("Loading image failed", log.Err(err))
		return 1
	}

	mc := newMachine(opts)
	mc.Load(image.Data)

	logger.Info("Loaded image",
		log.String("name", image.Name),
		log.Int("size", image.Size()),
		log.Hex("start", machine.MEMSPACE_PROGRAM))

	ctx := app.Context()

	if opts.Terminal {
		err = runTerminal(ctx, logger, mc, opts, palette)
	} else {
		err = runWindow(ctx, logger, mc, image, opts, palette)
	}

	if err != nil {
		logger.Error("Emulation stopped", log.Err(err))
		return 1
	}

	return 0
}

func main() {
	os.Exit(gochip8())
}

func newRunner(logger *log.Logger, mc *machine.Machine, opts config.Options, beeper runner.Beeper) *runner.Runner {
	return runner.New(mc,
		runner.WithTicksPerFrame(opts.TicksPerFrame),
		runner.WithBeeper(beeper),
		runner.WithLogger(logger),
	)
}
