/*
 * edumips64 - Interactive command loop.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package repl is the interactive front end of SPEC_FULL.md §4.7/§8: a
// command loop over github.com/peterh/liner that dispatches by unambiguous
// command-name prefix, the same way a line-oriented command parser resolves
// a shortened command against its registered set before rejecting it as
// ambiguous or unknown.
package repl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/edumips64/sim/internal/config"
	"github.com/edumips64/sim/internal/cpu"
	"github.com/edumips64/sim/internal/simulator"
)

var errQuit = errors.New("quit")

type command struct {
	name string
	help string
	fn   func(r *REPL, args []string) error
}

var commands = []command{
	{"load", "load <file>         assemble and load a program", (*REPL).cmdLoad},
	{"step", "step [n]            execute n cycles (default 1)", (*REPL).cmdStep},
	{"run", "run                 execute until HALTED or a breakpoint", (*REPL).cmdRun},
	{"break", "break <addr>        set a breakpoint at addr", (*REPL).cmdBreak},
	{"regs", "regs                dump general purpose registers", (*REPL).cmdRegs},
	{"fregs", "fregs               dump floating point registers", (*REPL).cmdFregs},
	{"mem", "mem <addr> <len>    dump len bytes of data memory starting at addr", (*REPL).cmdMem},
	{"reset", "reset               restart the loaded program", (*REPL).cmdReset},
	{"quit", "quit                exit the REPL", (*REPL).cmdQuit},
	{"help", "help                show this command list", (*REPL).cmdHelp},
}

// resolveCommand finds the command whose name matches prefix exactly, or is
// the only registered name prefix accepts (SPEC_FULL.md §8 item 8). Two or
// more names sharing the prefix is reported as ambiguous, with no command
// run.
func resolveCommand(prefix string) (*command, error) {
	prefix = strings.ToLower(prefix)
	var matches []*command
	for i := range commands {
		if commands[i].name == prefix {
			return &commands[i], nil
		}
		if strings.HasPrefix(commands[i].name, prefix) {
			matches = append(matches, &commands[i])
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("unknown command: %s", prefix)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.name
		}
		return nil, fmt.Errorf("ambiguous command %q matches %s", prefix, strings.Join(names, ", "))
	}
}

// REPL is one interactive session: the configuration new loads assemble
// against, the logger a loaded CPU reports through, and the breakpoint set
// `run` honors.
type REPL struct {
	cfg         config.Config
	log         *slog.Logger
	line        *liner.State
	sim         *simulator.Simulator
	breakpoints map[uint32]bool
	out         io.Writer
}

// New returns a REPL ready for Run. No program is loaded until `load` runs.
func New(cfg config.Config, log *slog.Logger) *REPL {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)

	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	l.SetCompleter(func(line string) []string {
		var out []string
		for _, n := range names {
			if strings.HasPrefix(n, strings.ToLower(line)) {
				out = append(out, n)
			}
		}
		return out
	})

	return &REPL{
		cfg:         cfg,
		log:         log,
		line:        l,
		breakpoints: make(map[uint32]bool),
		out:         os.Stdout,
	}
}

// Close releases the line editor's terminal state.
func (r *REPL) Close() error { return r.line.Close() }

// Run reads commands until `quit`, EOF, or an aborted prompt (Ctrl-D/Ctrl-C).
func (r *REPL) Run() {
	for {
		input, err := r.line.Prompt("edumips64> ")
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "error:", err)
			}
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.line.AppendHistory(input)

		fields := strings.Fields(input)
		cmd, err := resolveCommand(fields[0])
		if err != nil {
			fmt.Fprintln(r.out, err)
			continue
		}
		if err := cmd.fn(r, fields[1:]); err != nil {
			if errors.Is(err, errQuit) {
				return
			}
			fmt.Fprintln(r.out, "error:", err)
		}
	}
}

func (r *REPL) requireSim() error {
	if r.sim == nil {
		return errors.New("no program loaded (use `load <file>`)")
	}
	return nil
}

func (r *REPL) printStatus() {
	snap := r.sim.CPU.Snapshot()
	fmt.Fprintf(r.out, "cycle=%d status=%s instructions=%d stalls=%d\n",
		snap.Cycle, snap.Status, snap.Instructions, snap.Stalls.Sum())
}

func (r *REPL) cmdLoad(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: load <file>")
	}
	source, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	sim, err := simulator.Assemble(string(source), r.cfg)
	if err != nil {
		return err
	}
	sim.CPU.SetLogger(r.log)
	sim.Start()
	r.sim = sim
	r.breakpoints = make(map[uint32]bool)
	fmt.Fprintf(r.out, "loaded %s: %d instructions\n", args[0], len(sim.Program.Instructions))
	return nil
}

func (r *REPL) cmdStep(args []string) error {
	if err := r.requireSim(); err != nil {
		return err
	}
	n := 1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return fmt.Errorf("invalid cycle count %q", args[0])
		}
		n = v
	}
	for i := 0; i < n && r.sim.CPU.Status != cpu.StatusHalted; i++ {
		if err := r.sim.CPU.Step(); err != nil {
			return err
		}
	}
	r.printStatus()
	return nil
}

func (r *REPL) cmdRun(args []string) error {
	if err := r.requireSim(); err != nil {
		return err
	}
	for r.sim.CPU.Status != cpu.StatusHalted {
		if err := r.sim.CPU.Step(); err != nil {
			return err
		}
		if pc := r.sim.CPU.Snapshot().PC; r.breakpoints[pc] {
			fmt.Fprintf(r.out, "breakpoint hit at %#08x\n", pc)
			return nil
		}
	}
	r.printStatus()
	return nil
}

func (r *REPL) cmdBreak(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: break <addr>")
	}
	addr, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return fmt.Errorf("invalid address %q", args[0])
	}
	r.breakpoints[uint32(addr)] = true
	fmt.Fprintf(r.out, "breakpoint set at %#08x\n", addr)
	return nil
}

func (r *REPL) cmdRegs(args []string) error {
	if err := r.requireSim(); err != nil {
		return err
	}
	snap := r.sim.CPU.Snapshot()
	for i, v := range snap.GPR {
		fmt.Fprintf(r.out, "R%-2d = %#016x\n", i, v)
	}
	return nil
}

func (r *REPL) cmdFregs(args []string) error {
	if err := r.requireSim(); err != nil {
		return err
	}
	snap := r.sim.CPU.Snapshot()
	for i, v := range snap.FPR {
		fmt.Fprintf(r.out, "F%-2d = %#016x\n", i, v)
	}
	return nil
}

func (r *REPL) cmdMem(args []string) error {
	if err := r.requireSim(); err != nil {
		return err
	}
	if len(args) != 2 {
		return errors.New("usage: mem <addr> <len>")
	}
	addr, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return fmt.Errorf("invalid address %q", args[0])
	}
	length, err := strconv.ParseUint(args[1], 0, 32)
	if err != nil {
		return fmt.Errorf("invalid length %q", args[1])
	}
	for i := uint64(0); i < length; i++ {
		if i%16 == 0 {
			if i != 0 {
				fmt.Fprintln(r.out)
			}
			fmt.Fprintf(r.out, "%#08x: ", uint32(addr)+uint32(i))
		}
		b, err := r.sim.Program.Memory.ReadByte(uint32(addr) + uint32(i))
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "%02x ", b)
	}
	fmt.Fprintln(r.out)
	return nil
}

func (r *REPL) cmdReset(args []string) error {
	if err := r.requireSim(); err != nil {
		return err
	}
	r.sim.Start()
	fmt.Fprintln(r.out, "reset")
	return nil
}

func (r *REPL) cmdQuit(args []string) error { return errQuit }

func (r *REPL) cmdHelp(args []string) error {
	for _, c := range commands {
		fmt.Fprintln(r.out, c.help)
	}
	return nil
}
