/*
 * IST-66 - CPU execution engine: state, run loop, fetch/dispatch.
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

// Package cpu implements the IST-66 main CPU execution engine: the 16
// accumulators and 8 control registers, effective-address computation,
// instruction dispatch, the execute/edit instruction class, call-with-
// mask, and the main run loop.
package cpu

import (
	"log/slog"
	"sync"

	"github.com/rdc700/ist66/internal/device"
	"github.com/rdc700/ist66/internal/intr"
	"github.com/rdc700/ist66/internal/memory"
)

// CPU holds one IST-66 main processor. Each CPU owns its own memory,
// interrupt controller and device table, so several can coexist in
// one process.
type CPU struct {
	Mem     *memory.Memory
	Intr    *intr.Controller
	Devices *device.Table

	// Register file: exclusively owned by the CPU's own goroutine
	// during execution; externally readable only while halted.
	A  [16]memory.Word // accumulators A0..A15
	C  [8]memory.Word  // control registers C0 (PSW) .. C7
	FP [16][2]uint64   // opaque FPU accumulators; no arithmetic (out of scope)

	stopCode memory.Word // last A-register value captured by HLT

	// Pending-exception / staged-writeback scratch.
	xeqInst memory.Word
	doEdit  bool
	doEdsk  bool
	incAddr uint32
	incData memory.Word
	doInc   bool

	wg   sync.WaitGroup
	step bool // single-step mode: run loop does exactly one turn
}

// New creates a CPU with the given memory size in words, wired to a
// fresh interrupt controller and an empty device table.
func New(memWords uint32) *CPU {
	c := &CPU{
		Mem:     memory.New(memWords),
		Intr:    intr.New(),
		Devices: device.NewTable(),
	}
	return c
}

// --- PSW (C0) accessors ---

func (c *CPU) pc() uint32        { return uint32(c.C[0]) & pswPCMask }
func (c *CPU) setPC(pc uint32)   { c.C[0] = (c.C[0] &^ pswPCMask) | memory.Word(pc&pswPCMask) }
func (c *CPU) carry() bool       { return c.C[0]&pswCarryBit != 0 }
func (c *CPU) key() uint8        { return uint8((c.C[0] & pswKeyMask) >> pswKeyShift) }
func (c *CPU) setKey(k uint8)    { c.C[0] = (c.C[0] &^ memory.Word(pswKeyMask)) | (memory.Word(k) << pswKeyShift) }

func (c *CPU) setCarry(v bool) {
	if v {
		c.C[0] |= pswCarryBit
	} else {
		c.C[0] &^= pswCarryBit
	}
}

// Supervisor reports whether the CPU is in supervisor mode: PSW.key
// == 0.
func (c *CPU) Supervisor() bool { return c.key() == 0 }

// --- CW (C1) accessors ---

func (c *CPU) directPage() uint32 { return uint32(c.C[1]) & cwDirectPageMask }
func (c *CPU) curIRQL() int       { return int((c.C[1] & cwCurIRQLMask) >> cwCurIRQLShift) }
func (c *CPU) prevIRQL() int      { return int((c.C[1] & cwPrevIRQLMask) >> cwPrevIRQLShift) }

func (c *CPU) setCurIRQL(l int) {
	c.C[1] = (c.C[1] &^ memory.Word(cwCurIRQLMask)) | (memory.Word(l) << cwCurIRQLShift)
}

func (c *CPU) setPrevIRQL(l int) {
	c.C[1] = (c.C[1] &^ memory.Word(cwPrevIRQLMask)) | (memory.Word(l) << cwPrevIRQLShift)
}

func (c *CPU) setExceptCode(code int) {
	c.C[1] = (c.C[1] &^ memory.Word(cwExceptMask)) | (memory.Word(code) << cwExceptShift)
}

func (c *CPU) setDirectPage(p uint32) {
	c.C[1] = (c.C[1] &^ memory.Word(cwDirectPageMask)) | memory.Word(p&cwDirectPageMask)
}

// StopCode returns the last value HLT captured from its accumulator.
func (c *CPU) StopCode() memory.Word { return c.stopCode }

// PC returns the current program counter (for diagnostics/front panel).
func (c *CPU) PC() uint32 { return c.pc() }

// SetPC sets the program counter (front panel's G/GW/GS commands).
// Only safe to call while the CPU is halted.
func (c *CPU) SetPC(pc uint32) { c.setPC(pc) }

// except vectors through interrupt level 0 with the given 4-bit cause
// code. Any staged do_edit/do_edsk/do_inc is cleared as part of
// vectoring.
func (c *CPU) except(code int) {
	c.setExceptCode(code)
	c.vector(0)
}

// vector performs interrupt entry at level L: save PSW/CW to the
// level's save slots, load new CW (direct page from the level's
// vector slot, prev/cur IRQL), load new PSW from the level's vector
// slot, and clear staged execute/writeback state.
func (c *CPU) vector(level int) {
	cur := c.curIRQL()

	saveSlotPSW := uint32(32 + 2*cur)
	saveSlotCW := uint32(33 + 2*cur)
	_ = c.Mem.Write(0, saveSlotPSW, c.C[0])
	_ = c.Mem.Write(0, saveSlotCW, c.C[1])

	directPageTemplate := c.Mem.Read(0, uint32(1+2*level))
	newPSW := c.Mem.Read(0, uint32(2*level)).Data()

	c.C[1] = 0
	c.setDirectPage(uint32(directPageTemplate))
	c.setPrevIRQL(cur)
	c.setCurIRQL(level)

	c.C[0] = newPSW

	c.doEdit = false
	c.doEdsk = false
	c.doInc = false
}

// leaveIntr implements RFI: restore PSW and CW from the save slot
// indexed by the previous IRQ field of the current CW.
func (c *CPU) leaveIntr() {
	prev := c.prevIRQL()
	psw := c.Mem.Read(0, uint32(32+2*prev))
	cw := c.Mem.Read(0, uint32(33+2*prev))
	c.C[0] = psw.Data()
	c.C[1] = cw.Data()
}

// Start runs the CPU's fetch/dispatch loop on its own goroutine. If
// step is true, exit begins true so the loop runs exactly one turn
// before stopping.
func (c *CPU) Start(step bool) {
	c.step = step
	c.Intr.SetRunning(true)
	if step {
		c.Intr.RequestExit()
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.runLoop()
	}()
}

// WaitHalted blocks until the CPU has stopped running, whether by its
// own HLT or an external Stop, without forcing the run loop to exit
// (used by the front panel's "run until halt" command).
func (c *CPU) WaitHalted() {
	c.Intr.WaitNotRunning()
}

// Stop requests the run loop terminate and waits for it to exit.
func (c *CPU) Stop() {
	c.Intr.SetRunning(true) // wake a halted loop so it can observe exit
	c.Intr.RequestExit()
	c.wg.Wait()
	slog.Info("/CPU-I-STOPPED")
}

// runLoop drives fetch/dispatch until the loop is asked to exit. While
// the interrupt controller is not running, each turn waits for an
// interrupt instead, and requests exit itself on a permanent stop.
func (c *CPU) runLoop() {
	for {
		doneEdit := false
		if c.doEdit {
			c.executeStaged()
			doneEdit = true
		}

		minPending := c.Intr.MinPending()
		if minPending < c.curIRQL() {
			c.vector(minPending)
		}

		if c.Intr.Running() {
			if !doneEdit {
				c.fetchAndDispatch()
			}
		} else {
			woken := c.Intr.Wait(c.curIRQL())
			if !woken {
				c.Intr.RequestExit()
			}
		}

		if c.doInc {
			c.commitIndirectWriteback()
		}

		if c.Intr.ShouldExit() && !c.doEdit {
			return
		}
	}
}

// executeStaged runs the instruction synthesised by EDT/ESK, clearing
// do_edit/do_edsk as it goes.
func (c *CPU) executeStaged() {
	inst := c.xeqInst
	c.doEdit = false
	edsk := c.doEdsk
	c.doEdsk = false
	c.dispatch(inst)
	if edsk {
		c.setPC(c.pc() + 1)
	}
}

// commitIndirectWriteback commits the staged auto-modify writeback
// from effective-address computation, after the host instruction
// completed without faulting.
func (c *CPU) commitIndirectWriteback() {
	c.doInc = false
	res := c.Mem.Write(c.key(), c.incAddr, c.incData)
	if res.IsMemFault() {
		c.except(intr.XMemX)
	} else if res.IsKeyFault() {
		c.except(intr.XPPFW)
	}
}

// fetchAndDispatch fetches the instruction at PC (checking MEMX/PPFR)
// and dispatches it, advancing PC per the instruction's own rules.
func (c *CPU) fetchAndDispatch() {
	pc := c.pc()
	word := c.Mem.Read(c.key(), pc)
	if word.IsMemFault() {
		c.except(intr.XMemX)
		return
	}
	if word.IsKeyFault() {
		c.except(intr.XPPFR)
		return
	}
	c.dispatch(word)
}
