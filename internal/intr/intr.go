/*
 * IST-66 - Prioritised interrupt controller.
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

// Package intr implements the 15-level prioritised, masked, refcounted
// interrupt controller. Level 0 is the synchronous-exception vector;
// levels 1..14 are device IRQs (1 highest priority); level 15 is the
// mask-all sentinel and is never
// asserted as a device level.
package intr

import "sync"

// NumLevels is the number of interrupt levels, 0..14, plus the level
// 15 "nothing pending" sentinel value min_pending settles on.
const NumLevels = 15

// Exception causes, stored in CW bits 24..27 on a level-0 vector.
const (
	XUser = 0  // UMR: unimplemented op
	XInst = 1  // ILL: illegal op
	XMemX = 2  // MEMX: memory fault
	XDevX = 3  // DEVX: no such device
	XPPFR = 4  // PPFR: key fault on read
	XPPFW = 5  // PPFW: key fault on write
	XPPFS = 6  // PPFS: privileged op from problem state
	XTimer = 7
	XDivz  = 8
	XNFPU  = 9
	XMChk  = 14
	XPWRF  = 15
)

// Controller owns the pending counters, mask, and the derived
// min_pending cache. All three exported
// mutating operations acquire a single mutex and, for Assert, signal a
// condition variable the CPU thread may be waiting on while halted.
type Controller struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending [NumLevels + 1]int // index 1..14 used; 0 reserved for exceptions
	mask    uint16
	min     int // min_pending cache, recomputed on every mutation

	running bool // run loop should fetch/dispatch
	exit    bool // run loop should terminate after this turn
}

// New returns a Controller with nothing pending and an all-masked
// mask, matching a freshly reset machine.
func New() *Controller {
	c := &Controller{min: NumLevels}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// recompute rescans pending/mask and resets c.min to the lowest
// asserted, unmasked level (NumLevels if none). Caller must hold c.mu.
func (c *Controller) recompute() {
	for lvl := 1; lvl < NumLevels; lvl++ {
		if c.pending[lvl] > 0 && c.mask&(1<<uint(lvl)) != 0 {
			c.min = lvl
			return
		}
	}
	c.min = NumLevels
}

// Assert increments the pending refcount for irq. If the new min
// pending level is lower than the cached one it updates min_pending
// immediately (cheaper than a full recompute) and wakes any CPU thread
// waiting on Wait.
func (c *Controller) Assert(irq int) {
	if irq < 0 || irq > NumLevels {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending[irq]++
	if irq < c.min && c.mask&(1<<uint(irq)) != 0 {
		c.min = irq
	}
	c.cond.Broadcast()
}

// Release decrements the pending refcount for irq and recomputes
// min_pending upward from irq until a pending unmasked level is found
// or the sentinel 15 is reached.
func (c *Controller) Release(irq int) {
	if irq < 0 || irq > NumLevels {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending[irq] > 0 {
		c.pending[irq]--
	}
	if c.min != irq {
		return
	}
	for lvl := irq; lvl < NumLevels; lvl++ {
		if c.pending[lvl] > 0 && c.mask&(1<<uint(lvl)) != 0 {
			c.min = lvl
			return
		}
	}
	c.min = NumLevels
}

// SetMask replaces the interrupt mask wholesale and recomputes
// min_pending from scratch.
func (c *Controller) SetMask(m uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mask = m
	c.recompute()
	c.cond.Broadcast()
}

// Mask returns the current interrupt mask.
func (c *Controller) Mask() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mask
}

// MinPending returns the lowest asserted-and-unmasked level, or 15 if
// none.
func (c *Controller) MinPending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.min
}

// Pending returns the current refcount for irq, for diagnostics and
// tests.
func (c *Controller) Pending(irq int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[irq]
}

// Wait blocks until either min_pending < currentIRQL or a permanent
// stop is indicated (currentIRQL == 0 and mask == 0), matching the
// run loop's halt/wake rendezvous. It returns true if woken by a
// pending interrupt, false if the permanent-stop condition was
// observed instead.
func (c *Controller) Wait(currentIRQL int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if c.min < currentIRQL {
			return true
		}
		if currentIRQL == 0 && c.mask == 0 {
			return false
		}
		c.cond.Wait()
	}
}

// CanHalt reports whether the HLT opcode may transition running to
// false: only when no higher-priority unmasked IRQ is pending, i.e.
// min_pending >= currentIRQL.
func (c *Controller) CanHalt(currentIRQL int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.min >= currentIRQL
}

// TryHalt implements the HLT opcode's gate: running transitions to
// false only if CanHalt(currentIRQL); it reports whether the halt
// took effect.
func (c *Controller) TryHalt(currentIRQL int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.min < currentIRQL {
		return false
	}
	c.running = false
	c.cond.Broadcast()
	return true
}

// SetRunning forces the running flag, used by CPU.Start/CPU.Stop.
func (c *Controller) SetRunning(v bool) {
	c.mu.Lock()
	c.running = v
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Running reports the current running flag.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// WaitNotRunning blocks until the running flag is false, used by an
// external driver (the front panel's "run until halt" command) to
// synchronize with a self-initiated HLT without forcing the run loop
// to exit.
func (c *Controller) WaitNotRunning() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.running {
		c.cond.Wait()
	}
}

// RequestExit sets the exit flag and wakes any waiter, used by
// CPU.Stop to unblock a halted run loop.
func (c *Controller) RequestExit() {
	c.mu.Lock()
	c.exit = true
	c.cond.Broadcast()
	c.mu.Unlock()
}

// ShouldExit reports the exit flag.
func (c *Controller) ShouldExit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exit
}

// PermanentStop reports whether the run loop, while not running,
// should terminate outright rather than wait for a future interrupt:
// current IRQ level 0 with an all-zero mask.
func (c *Controller) PermanentStop(currentIRQL int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return currentIRQL == 0 && c.mask == 0
}
