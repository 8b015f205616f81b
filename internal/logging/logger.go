/*
 * edumips64 - Wrapper for slog
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

// Package logging wraps log/slog with the teacher's own handler shape
// (util/logger in the reference tree): one line per record, timestamp and
// level first, then key=value attributes in call order, so a cycle trace
// reads `2024/01/02 12:00:00 INFO: jump cycle=12 instr=J target=0x000010`
// instead of slog's default time=/level=/msg= text form.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// LogHandler is a slog.Handler that renders a record as one space-joined
// line: formatted time, level, message, then each attribute as key=value in
// the order it was logged.
type LogHandler struct {
	out io.Writer
	h   slog.Handler
	mu  *sync.Mutex
}

func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{out: h.out, h: h.h.WithAttrs(attrs), mu: h.mu}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{out: h.out, h: h.h.WithGroup(name), mu: h.mu}
}

func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	formattedTime := r.Time.Format("2006/01/02 15:04:05")

	strs := []string{formattedTime, level, r.Message}
	r.Attrs(func(a slog.Attr) bool {
		strs = append(strs, a.Key+"="+a.Value.String())
		return true
	})
	result := strings.Join(strs, " ") + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write([]byte(result))
	return err
}

// NewHandler returns a LogHandler writing to out at the level opts
// describes. A nil opts uses slog's default level (Info).
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *LogHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &LogHandler{
		out: out,
		h:   slog.NewTextHandler(out, opts),
		mu:  &sync.Mutex{},
	}
}

// New returns a ready-to-use *slog.Logger over a LogHandler at the given
// level, the way cmd/edumips64 and the cpu package's default logger are
// constructed.
func New(out io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewHandler(out, &slog.HandlerOptions{Level: level}))
}
