/*
 * IST-66 - Shared worker-thread device skeleton.
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

// Package common implements the mutex+condvar+command-register
// skeleton that every non-trivial IST-66 device backend builds on.
package common

import (
	"sync"

	"github.com/rdc700/ist66/internal/device"
)

// IRQHost is the narrow interrupt-controller capability a device
// worker needs: assert on Done, release when Done is acknowledged.
type IRQHost interface {
	Assert(irq int)
	Release(irq int)
}

// Worker holds the command register, done flag, and condvar shared by
// every worker-thread device backend. Embed it in a device and call
// Latch from IO and Loop (or an equivalent custom loop) from a
// dedicated goroutine.
type Worker struct {
	mu   sync.Mutex
	cond *sync.Cond

	command bool
	done    bool
	stop    bool

	Host IRQHost
	IRQ  int
}

// Init wires the condvar and interrupt target. Call once before Start.
func (w *Worker) Init(host IRQHost, irq int) {
	w.cond = sync.NewCond(&w.mu)
	w.Host = host
	w.IRQ = irq
}

// Latch implements the CPU-thread half of the command protocol: on
// ctl=Start it sets command=1, done=0 (releasing a previously
// asserted Done), and wakes the worker; on ctl=ClearDone it clears
// command and done (releasing a previously asserted Done) without
// queuing any work.
func (w *Worker) Latch(ctl int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch ctl {
	case device.CtlStart:
		if w.done {
			w.Host.Release(w.IRQ)
			w.done = false
		}
		w.command = true
		w.cond.Broadcast()
	case device.CtlClearDone:
		if w.done {
			w.Host.Release(w.IRQ)
		}
		w.command = false
		w.done = false
	}
}

// Status returns the (Done, Busy) pair for a StatusQuery transfer.
func (w *Worker) Status() (done, busy bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done, w.command && !w.done
}

// WaitCommand blocks until a command is latched or Stop is called,
// reporting false in the latter case.
func (w *Worker) WaitCommand() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for !w.command && !w.stop {
		w.cond.Wait()
	}
	return !w.stop
}

// Complete marks the latched command done and asserts the host IRQ,
// called by the worker after it finishes its simulated I/O.
func (w *Worker) Complete() {
	w.mu.Lock()
	w.command = false
	w.done = true
	w.mu.Unlock()
	w.Host.Assert(w.IRQ)
}

// Stop wakes a blocked WaitCommand permanently, used by Shutdown.
func (w *Worker) Stop() {
	w.mu.Lock()
	w.stop = true
	w.cond.Broadcast()
	w.mu.Unlock()
}
