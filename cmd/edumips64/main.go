/*
 * edumips64 - Command line driver: batch assembly runs and the interactive REPL.
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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/edumips64/sim/internal/config"
	"github.com/edumips64/sim/internal/logging"
	"github.com/edumips64/sim/internal/simulator"
	"github.com/edumips64/sim/repl"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optCycles := getopt.Uint64Long("cycles", 'n', 0, "Maximum cycles to run (0 = until HALTED)")
	optInteractive := getopt.BoolLong("interactive", 'i', "Drop into the interactive REPL")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logOut *os.File = os.Stderr
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "edumips64: can't create log file %s: %v\n", *optLogFile, err)
			os.Exit(1)
		}
		logOut = f
	}
	Logger = logging.New(logOut, slog.LevelInfo)

	cfg := config.Default()
	if *optConfig != "" {
		data, err := os.ReadFile(*optConfig)
		if err != nil {
			Logger.Error("can't read configuration file", "file", *optConfig, "error", err)
			os.Exit(1)
		}
		loaded, err := config.Load(string(data))
		if err != nil {
			Logger.Error("configuration rejected", "file", *optConfig, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if *optInteractive {
		runInteractive(cfg)
		return
	}

	args := getopt.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: edumips64 [options] program.s")
		getopt.Usage()
		os.Exit(1)
	}
	runBatch(args[0], cfg, *optCycles)
}

// runBatch assembles program and steps it to HALTED or optCycles, whichever
// comes first, then dumps the final architectural state through the logger
// (SPEC_FULL.md §4.7).
func runBatch(path string, cfg config.Config, maxCycles uint64) {
	source, err := os.ReadFile(path)
	if err != nil {
		Logger.Error("can't read program", "file", path, "error", err)
		os.Exit(1)
	}

	sim, err := simulator.Assemble(string(source), cfg)
	if err != nil {
		Logger.Error("assembly failed", "file", path, "error", err)
		os.Exit(1)
	}
	sim.CPU.SetLogger(Logger)
	sim.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	Logger.Info("run started", "file", path, "max_cycles", maxCycles)
	ran, err := sim.Run(ctx, maxCycles)
	if err != nil && !errors.Is(err, context.Canceled) {
		Logger.Error("run aborted", "cycles", ran, "error", err)
		os.Exit(1)
	}

	dumpState(sim)
}

func runInteractive(cfg config.Config) {
	r := repl.New(cfg, Logger)
	defer r.Close()
	r.Run()
}

func dumpState(sim *simulator.Simulator) {
	snap := sim.Snapshot()
	Logger.Info("run finished",
		"status", snap.Status,
		"cycles", snap.Cycle,
		"instructions", snap.Instructions,
		"stalls", snap.Stalls.Sum())
	for i, v := range snap.GPR {
		Logger.Info("register", "reg", fmt.Sprintf("R%d", i), "value", v)
	}
	Logger.Info("fcsr",
		"rounding", snap.FCSR.Rounding,
		"cause_invalid", snap.FCSR.CauseInvalid,
		"cause_overflow", snap.FCSR.CauseOverflow,
		"cause_underflow", snap.FCSR.CauseUnderflow,
		"cause_div_by_zero", snap.FCSR.CauseDivByZero,
		"cause_inexact", snap.FCSR.CauseInexact)
}
