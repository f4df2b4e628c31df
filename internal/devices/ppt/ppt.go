/*
 * IST-66 - Paper-tape reader backend.
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

// Package ppt implements the paper-tape reader backend: a worker
// thread that reads one byte per command at 2ms/byte from a file. At
// EOF a command still completes, the last byte read stays in place and
// an EOF notice is logged; the file is not closed until Shutdown.
package ppt

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/rdc700/ist66/internal/device"
	"github.com/rdc700/ist66/internal/devices/common"
)

const byteDelay = 2 * time.Millisecond

// PPT is a paper-tape reader.
type PPT struct {
	common.Worker

	mu   sync.Mutex
	file *os.File
	last byte
	eof  bool
}

// New opens path and starts the reader's worker goroutine.
func New(path string, host common.IRQHost, irq int) (*PPT, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	p := &PPT{file: f}
	p.Init(host, irq)
	go p.run()
	return p, nil
}

func (p *PPT) run() {
	buf := make([]byte, 1)
	for p.WaitCommand() {
		time.Sleep(byteDelay)
		n, err := p.file.Read(buf)
		p.mu.Lock()
		if n == 1 {
			p.last = buf[0]
		} else if err == io.EOF {
			p.eof = true
			slog.Info("/DEV-I-PPT EOF")
		}
		p.mu.Unlock()
		p.Complete()
	}
}

// IO implements device.Device.
func (p *PPT) IO(_ uint64, ctl int, transfer int) uint64 {
	switch transfer {
	case device.XferReadLow:
		p.mu.Lock()
		defer p.mu.Unlock()
		return uint64(p.last)

	case device.XferWriteCtl:
		p.Latch(ctl)
		return 0

	case device.XferStatus:
		done, busy := p.Status()
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

// Shutdown stops the worker goroutine and closes the backing file.
func (p *PPT) Shutdown() {
	p.Stop()
	p.file.Close()
}
