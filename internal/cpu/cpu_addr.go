/*
 * IST-66 - Effective-address computation (comp_mr).
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

package cpu

import (
	"github.com/rdc700/ist66/internal/intr"
	"github.com/rdc700/ist66/internal/memory"
)

// faulted is set by compMR (and other helpers sharing its fault
// convention) when a fault was raised and the instruction must abort
// without further effect.
type addrResult struct {
	addr    uint32
	faulted bool
}

func signExtend18(v uint32) int32 {
	if v&mrDispSign != 0 {
		return int32(v) - (1 << 18)
	}
	return int32(v)
}

func signExtend6(v uint32) int32 {
	if v&indIncSign != 0 {
		return int32(v) - (1 << 6)
	}
	return int32(v)
}

// compMR computes the effective address of a memory-reference word.
// On any fault it raises the exception and returns faulted=true;
// callers must abandon the instruction immediately.
func (c *CPU) compMR(word uint64) addrResult {
	indirect := word&mrIndirect != 0
	index := int((word & mrIndexMask) >> mrIndexShift)
	disp := signExtend18(uint32(word & mrDispMask))

	var ea uint32
	switch {
	case index == 0:
		ea = uint32(disp) & 0xffffffff
	case index == 1:
		ea = (c.directPage() << 9) + uint32(disp)
	case index == 2:
		ea = c.pc() + uint32(disp)
	case index >= 3 && index <= 13:
		ea = uint32(int64(c.A[index].Data()) + int64(disp))
	case index == 14: // post-increment
		ea = uint32(c.A[RegStack].Data())
		c.A[RegStack] = (c.A[RegStack] + memory.Word(int64(disp))).Data()
	case index == 15: // pre-decrement
		c.A[RegStack] = (c.A[RegStack] - memory.Word(int64(disp))).Data()
		ea = uint32(c.A[RegStack].Data())
	}
	ea &= indBaseMask // 27-bit address space

	if !indirect {
		return addrResult{addr: ea}
	}

	fetched := c.Mem.Read(c.key(), ea)
	if fetched.IsMemFault() {
		c.except(intr.XMemX)
		return addrResult{faulted: true}
	}
	if fetched.IsKeyFault() {
		c.except(intr.XPPFR)
		return addrResult{faulted: true}
	}
	fw := uint64(fetched.Data())

	if fw&(1<<35) == 0 {
		// Simple address: bit 35 clear.
		return addrResult{addr: uint32(fw) & indBaseMask}
	}

	mode := int((fw & indModeMask) >> indModeShift)
	if mode == 2 || mode == 3 {
		c.except(intr.XMemX)
		return addrResult{faulted: true}
	}
	inc := signExtend6(uint32((fw & indIncMask) >> indIncShift))
	base := uint32(fw & indBaseMask)

	var addr uint32
	switch mode {
	case 0: // post-increment
		addr = base
		c.incAddr = ea
		c.incData = memory.Word(uint64(int64(base)+int64(inc)) & uint64(indBaseMask))
		c.doInc = true
	case 1: // pre-decrement
		addr = uint32(uint64(int64(base) + int64(inc)))
		c.incAddr = ea
		c.incData = memory.Word(uint64(addr) & uint64(indBaseMask))
		c.doInc = true
	}
	return addrResult{addr: addr}
}
