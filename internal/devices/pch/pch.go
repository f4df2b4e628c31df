/*
 * IST-66 - Paper-tape punch backend.
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

// Package pch implements the paper-tape punch backend: a worker
// thread that writes one byte per command at 16ms/byte to a file.
package pch

import (
	"os"
	"time"

	"github.com/rdc700/ist66/internal/device"
	"github.com/rdc700/ist66/internal/devices/common"
)

const byteDelay = 16 * time.Millisecond

// PCH is a paper-tape punch.
type PCH struct {
	common.Worker

	file *os.File
	out  byte
}

// New creates/truncates path and starts the punch's worker goroutine.
func New(path string, host common.IRQHost, irq int) (*PCH, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	p := &PCH{file: f}
	p.Init(host, irq)
	go p.run()
	return p, nil
}

func (p *PCH) run() {
	for p.WaitCommand() {
		time.Sleep(byteDelay)
		p.file.Write([]byte{p.out})
		p.Complete()
	}
}

// IO implements device.Device.
func (p *PCH) IO(data uint64, ctl int, transfer int) uint64 {
	switch transfer {
	case device.XferWriteLow:
		p.out = byte(data)
		return 0

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
func (p *PCH) Shutdown() {
	p.Stop()
	p.file.Close()
}
