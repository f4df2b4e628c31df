/*
 * IST-66 - Line printer backend.
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

// Package lpt implements the line printer backend: a 132-column
// buffer that flushes on CR, LF, FF, or when full, sleeping 4ms per
// flush to model print-head travel.
package lpt

import (
	"os"
	"time"

	"github.com/rdc700/ist66/internal/device"
	"github.com/rdc700/ist66/internal/devices/common"
)

const (
	lineWidth  = 132
	flushDelay = 4 * time.Millisecond
)

// LPT is a line printer.
type LPT struct {
	common.Worker

	file *os.File
	ch   byte
	buf  []byte
}

// New creates/truncates path and starts the printer's worker goroutine.
func New(path string, host common.IRQHost, irq int) (*LPT, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	l := &LPT{file: f, buf: make([]byte, 0, lineWidth)}
	l.Init(host, irq)
	go l.run()
	return l, nil
}

func (l *LPT) run() {
	for l.WaitCommand() {
		l.step()
		l.Complete()
	}
}

// step applies the latched character to the line buffer, flushing on
// CR, LF, FF, or when the buffer reaches lineWidth columns.
func (l *LPT) step() {
	switch l.ch {
	case '\r', '\n', '\f':
		l.flush()
	default:
		l.buf = append(l.buf, l.ch)
		if len(l.buf) >= lineWidth {
			l.flush()
		}
	}
}

func (l *LPT) flush() {
	time.Sleep(flushDelay)
	l.file.Write(l.buf)
	l.file.Write([]byte{'\n'})
	l.buf = l.buf[:0]
}

// IO implements device.Device.
func (l *LPT) IO(data uint64, ctl int, transfer int) uint64 {
	switch transfer {
	case device.XferWriteLow:
		l.ch = byte(data)
		return 0

	case device.XferWriteCtl:
		l.Latch(ctl)
		return 0

	case device.XferStatus:
		done, busy := l.Status()
		var v uint64
		if done {
			v |= device.StatusDone
		}
		if busy {
			v |= device.StatusBusy
		}
		return v

	default:
		return 0
	}
}

// Shutdown stops the worker goroutine, flushing any partial line, and
// closes the backing file.
func (l *LPT) Shutdown() {
	l.Stop()
	if len(l.buf) > 0 {
		l.file.Write(l.buf)
		l.file.Write([]byte{'\n'})
	}
	l.file.Close()
}
