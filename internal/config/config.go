/*
 * edumips64 - Simulator configuration loader.
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

// Package config loads the simulator's configuration keywords of
// SPEC_FULL.md §6 from a line-oriented text file or string, the way the
// source simulator's config/configparser loads device models from a
// line-oriented text file: one keyword, optionally followed by a
// space-separated value, per line; '#' starts a comment.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

// RoundingMode mirrors internal/register's FCSR rounding modes, named here
// to keep this package free of a register import, by symmetry with how
// internal/isa avoids importing internal/register directly.
type RoundingMode int

const (
	RoundNearest RoundingMode = iota
	RoundTowardZero
	RoundTowardPlusInfinity
	RoundTowardMinusInfinity
)

// SyncExceptionPolicy governs what happens when a synchronous exception
// (overflow, divide-by-zero, ...) reaches end-of-cycle unmasked.
type SyncExceptionPolicy int

const (
	SyncExceptionContinue SyncExceptionPolicy = iota
	SyncExceptionMasked
	SyncExceptionTerminate
)

// Config is the resolved configuration, consumed read-only by the cpu
// package's pipeline controller.
type Config struct {
	Forwarding bool

	SyncExceptions SyncExceptionPolicy

	FPInvalidOperation bool
	FPOverflow         bool
	FPUnderflow        bool
	FPDivideByZero     bool

	Rounding RoundingMode

	DividerLatency int // FP divider countdown cycles, default 24
}

// Default returns the configuration SPEC_FULL.md's defaults describe:
// forwarding disabled, exceptions unmasked and non-terminating, round to
// nearest, no FP exceptions enabled.
func Default() Config {
	return Config{
		SyncExceptions: SyncExceptionContinue,
		Rounding:       RoundNearest,
		DividerLatency: 24,
	}
}

// Load parses a configuration file's contents, one keyword per line.
// Unrecognized keywords are collected and returned together as a
// multi-error, the way the parser's assembler reports errors (SPEC_FULL.md
// §7): a bad line does not stop the scan.
func Load(source string) (Config, error) {
	cfg := Default()
	var errs []error

	scanner := bufio.NewScanner(strings.NewReader(source))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := apply(&cfg, line); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", lineNo, err))
		}
	}
	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}

func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

var (
	errUnknownKeyword = errors.New("unknown configuration keyword")
	errMissingValue   = errors.New("missing value for keyword")
	errUnknownValue   = errors.New("unknown value for keyword")
)

// apply parses one line of the form "keyword" or "keyword value"
// (SPEC_FULL.md §6) and applies it to cfg.
func apply(cfg *Config, line string) error {
	fields := strings.Fields(line)
	keyword := strings.ToLower(fields[0])
	var value string
	if len(fields) > 1 {
		value = strings.ToLower(fields[1])
	}

	switch keyword {
	case "forwarding":
		cfg.Forwarding = true
	case "fp_invalid_operation":
		cfg.FPInvalidOperation = true
	case "fp_overflow":
		cfg.FPOverflow = true
	case "fp_underflow":
		cfg.FPUnderflow = true
	case "fp_divide_by_zero":
		cfg.FPDivideByZero = true
	case "sync_exceptions":
		switch value {
		case "masked":
			cfg.SyncExceptions = SyncExceptionMasked
		case "terminate":
			cfg.SyncExceptions = SyncExceptionTerminate
		case "":
			return fmt.Errorf("%w: sync_exceptions", errMissingValue)
		default:
			return fmt.Errorf("%w: sync_exceptions %s", errUnknownValue, value)
		}
	case "fp_rounding":
		switch value {
		case "nearest":
			cfg.Rounding = RoundNearest
		case "zero":
			cfg.Rounding = RoundTowardZero
		case "plus_infinity":
			cfg.Rounding = RoundTowardPlusInfinity
		case "minus_infinity":
			cfg.Rounding = RoundTowardMinusInfinity
		case "":
			return fmt.Errorf("%w: fp_rounding", errMissingValue)
		default:
			return fmt.Errorf("%w: fp_rounding %s", errUnknownValue, value)
		}
	default:
		return fmt.Errorf("%w: %s", errUnknownKeyword, keyword)
	}
	return nil
}
