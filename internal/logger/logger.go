/*
 * IST-66 - Wrapper for slog producing "/<SUBSYS>-<severity>-<message>" lines.
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

// Package logger wraps slog with the front panel's status-line shape:
// "/<SUBSYS>-<severity-letter>-<message>".
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Handler formats records as "/<SUBSYS>-<I|E>-<message>" and writes
// each as one line to its single writer; it adds no timestamp and does
// not copy anything to stderr.
type Handler struct {
	out io.Writer
	mu  *sync.Mutex
}

var _ slog.Handler = (*Handler)(nil)

func (h *Handler) Enabled(context.Context, slog.Level) bool { return true }

func (h *Handler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *Handler) WithGroup(string) slog.Handler { return h }

func severityLetter(l slog.Level) string {
	if l >= slog.LevelError {
		return "E"
	}
	return "I"
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	line := r.Message
	if !strings.HasPrefix(line, "/") {
		line = "/LOG-" + severityLetter(r.Level) + "-" + line
	}

	r.Attrs(func(a slog.Attr) bool {
		line += " " + a.Value.String()
		return true
	})
	line += "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write([]byte(line))
	return err
}

// New wraps out in a Handler suitable for slog.New.
func New(out io.Writer) *Handler {
	return &Handler{out: out, mu: &sync.Mutex{}}
}
