/*
 * IST-66 - IOCPU satellite processor.
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

// Package iocpu implements the optional satellite I/O processor: an
// 18-bit, 3-accumulator engine modelled on the PDP-8, sharing the
// host's memory through a windowed address space. Its instruction
// format is a structural placeholder -- the memory window and
// host-IRQ signalling path are real, the opcode table is a minimal
// stub.
package iocpu

import (
	"sync"
	"time"

	"github.com/rdc700/ist66/internal/memory"
)

// Word18 is an 18-bit IOCPU word carried in a 32-bit container.
type Word18 uint32

const wordMask Word18 = 0x3ffff // 18 bits

// privAddrs is the size of the IOCPU's own private address space:
// [0, privAddrs) maps to private memory, [privAddrs, 2*privAddrs) maps
// through to host memory at the corresponding offset. The combined
// window needs 19 bits, one more than an 18-bit data word holds, so
// addressing below uses a plain uint32 register distinct from the
// 18-bit AC/IL/IH data width.
const privAddrs = 1 << 18

// addrSpaceMask covers the full two-window address space.
const addrSpaceMask = 2*privAddrs - 1

// HostMemory is the narrow capability the IOCPU needs from the host's
// memory unit: key-checked reads/writes at key 0, mapping to host
// memory through the host's key check with key=0.
type HostMemory interface {
	Read(reqKey uint8, addr uint32) memory.Word
	Write(reqKey uint8, addr uint32, data memory.Word) memory.Word
}

// HostIRQ is the narrow capability the IOCPU needs from the host CPU's
// interrupt controller.
type HostIRQ interface {
	Assert(irq int)
}

// Opcode is the top bits of an 18-bit IOCPU instruction. Only a
// minimal subset is dispatched; the rest of the PDP-8-style opcode
// space is a documented placeholder.
type Opcode int

const (
	opHalt Opcode = 0 // host-visible equivalent of HLT: stop the run loop
	opMove Opcode = 1 // AC <- mem[addr]; mem[addr] <- AC (a minimal load/store)
)

const (
	opShift    = 15 // top 3 bits of the 18-bit word select the opcode
	addrMask   = 0x7fff
	indirectBt = 1 << 12 // bit 12: indirect through addr before use
)

// IOCPU is the satellite processor's state. It shares no registers
// with the host CPU; HostMem and HostIRQ are its only coupling to
// the host.
type IOCPU struct {
	mu sync.Mutex

	AC   Word18 // accumulator
	IL   Word18 // index-low
	IH   Word18 // index-high
	PC   uint32 // C_IOPC; spans the full two-window address space
	ION  bool   // C_ION: interrupt-enable
	API  bool   // C_API: API-pending flag
	IRQ  int    // C_IRQ: host interrupt line asserted on privileged IOT
	halt bool

	priv []memory.Word // private memory, two 18-bit words packed per host word

	HostMem HostMemory
	HostIRQ HostIRQ
}

// New allocates an IOCPU with privAddrs/2 words of private storage
// (each host word packs two IOCPU words).
func New(hostMem HostMemory, hostIRQ HostIRQ, irq int) *IOCPU {
	return &IOCPU{
		priv:    make([]memory.Word, privAddrs/2),
		HostMem: hostMem,
		HostIRQ: hostIRQ,
		IRQ:     irq,
	}
}

// readMem fetches the 18-bit word at the IOCPU's addr, routing
// through private storage or the host memory window depending on
// which side of the privilege boundary addr falls.
func (c *IOCPU) readMem(addr uint32) Word18 {
	a := addr & addrSpaceMask
	if a < privAddrs {
		return c.readPriv(a)
	}
	w := c.HostMem.Read(0, a-privAddrs)
	return Word18(w.Data()) & wordMask
}

func (c *IOCPU) writeMem(addr uint32, v Word18) {
	a := addr & addrSpaceMask
	if a < privAddrs {
		c.writePriv(a, v)
		return
	}
	c.HostMem.Write(0, a-privAddrs, memory.Word(v&wordMask))
}

func (c *IOCPU) readPriv(addr uint32) Word18 {
	host := c.priv[addr/2]
	if addr%2 == 0 {
		return Word18(host>>18) & wordMask
	}
	return Word18(host) & wordMask
}

func (c *IOCPU) writePriv(addr uint32, v Word18) {
	idx := addr / 2
	host := c.priv[idx]
	if addr%2 == 0 {
		c.priv[idx] = (memory.Word(v&wordMask) << 18) | (host & memory.Word(wordMask))
	} else {
		c.priv[idx] = (host &^ memory.Word(wordMask)) | memory.Word(v&wordMask)
	}
}

// effectiveAddr resolves the 15-bit address field of an instruction
// within the current window, following one level of indirection if
// the indirect bit is set.
func (c *IOCPU) effectiveAddr(w Word18, window uint32) uint32 {
	addr := window + uint32(w&addrMask)
	if w&indirectBt != 0 {
		addr = window + uint32(c.readMem(addr)&addrMask)
	}
	return addr
}

// Step executes a single instruction cycle. It returns false once the
// processor has halted (via opHalt or Stop).
func (c *IOCPU) Step() bool {
	c.mu.Lock()
	if c.halt {
		c.mu.Unlock()
		return false
	}
	window := uint32(0)
	if c.PC >= privAddrs {
		window = privAddrs
	}
	w := c.readMem(c.PC)
	c.PC = window + ((c.PC - window + 1) & (privAddrs - 1))
	op := Opcode((w >> opShift) & 0x7)
	c.mu.Unlock()

	switch op {
	case opHalt:
		c.mu.Lock()
		c.halt = true
		c.mu.Unlock()
		return false

	case opMove:
		addr := c.effectiveAddr(w, window)
		c.mu.Lock()
		mem := c.readMem(addr)
		c.AC = mem
		c.writeMem(addr, c.AC)
		c.mu.Unlock()

	default:
		// Structural placeholder: the rest of the PDP-8-style opcode
		// table is out of scope, so unimplemented opcodes are a
		// documented no-op rather than a panic.
	}
	return true
}

// Run drives Step in a loop on the caller's goroutine until it halts,
// pausing briefly between instructions; intended to be launched with
// `go c.Run()` as the IOCPU's own thread.
func (c *IOCPU) Run() {
	for c.Step() {
		time.Sleep(time.Microsecond)
	}
}

// Stop halts the processor before its next instruction fetch.
func (c *IOCPU) Stop() {
	c.mu.Lock()
	c.halt = true
	c.mu.Unlock()
}

// AssertHostIRQ raises the host interrupt line and marks an API
// request pending, the effect of a privileged IOT.
func (c *IOCPU) AssertHostIRQ() {
	c.mu.Lock()
	c.API = true
	c.mu.Unlock()
	c.HostIRQ.Assert(c.IRQ)
}
