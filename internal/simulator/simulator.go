/*
 * edumips64 - Assembles a program and drives a CPU to completion.
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

// Package simulator is the one component shared by cmd/edumips64 and repl
// (SPEC_FULL.md §4.7): it turns assembly source into a running CPU and
// steps it to completion, the way the teacher's main.go builds a core/master
// pair from a configuration file and then runs it to shutdown.
package simulator

import (
	"context"

	"github.com/edumips64/sim/internal/config"
	"github.com/edumips64/sim/internal/cpu"
	"github.com/edumips64/sim/internal/cycle"
	"github.com/edumips64/sim/internal/isa"
	"github.com/edumips64/sim/internal/parser"
)

// Simulator bundles one assembled Program with the CPU driving it. It is
// constructed fresh by each `load` (CLI or REPL) rather than reused, mirroring
// SPEC_FULL.md §9's recasting of the source simulator's process-wide
// singletons as values owned by one caller.
type Simulator struct {
	Table   *isa.Table
	Program *parser.Program
	CPU     *cpu.CPU
}

// Assemble parses source against a fresh instruction table and wires the
// resulting Program into a new CPU governed by cfg. A non-nil error means
// the source failed to assemble; Simulator is nil in that case.
func Assemble(source string, cfg config.Config) (*Simulator, error) {
	table := isa.NewTable()
	p := parser.New(table, 0)
	prog, err := p.Parse(source)
	if err != nil {
		return nil, err
	}
	return &Simulator{
		Table:   table,
		Program: prog,
		CPU:     cpu.New(table, prog.Instructions, prog.Memory, cfg),
	}, nil
}

// Start transitions the CPU to RUNNING, ready for Step or Run.
func (s *Simulator) Start() { s.CPU.Start() }

// Run steps the CPU once per loop until it halts, ctx is cancelled, or
// maxCycles have executed (0 means unlimited), matching the teacher's
// main.go signal.Notify shutdown path: cancellation is cooperative, checked
// only between cycles, never preemptive (SPEC_FULL.md §5). It returns the
// number of cycles actually stepped.
func (s *Simulator) Run(ctx context.Context, maxCycles uint64) (uint64, error) {
	var n uint64
	for s.CPU.Status != cpu.StatusHalted {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		default:
		}
		if maxCycles > 0 && n >= maxCycles {
			return n, nil
		}
		if err := s.CPU.Step(); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Snapshot exposes the CPU's latest per-cycle Snapshot (SPEC_FULL.md §4.8).
func (s *Simulator) Snapshot() cycle.Snapshot { return s.CPU.Snapshot() }
