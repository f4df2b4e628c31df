/*
 * IST-66 - Memory-reference instruction class.
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

func (c *CPU) execMR(w uint64) {
	fn := int((w & mrFuncMask) >> mrFuncShift)

	ar := c.compMR(w)
	if ar.faulted {
		return
	}
	ea := ar.addr

	switch fn {
	case mrJMP:
		c.setPC(ea)

	case mrJSR:
		c.A[RegLink] = memory.Word(c.pc() + 1).Data()
		c.setPC(ea)

	case mrISZ:
		v := c.Mem.Read(c.key(), ea)
		if v.Fault() {
			c.vectorReadFault(v)
			return
		}
		nv := (v.Data() + 1).Data()
		res := c.Mem.Write(c.key(), ea, nv)
		if res.Fault() {
			c.vectorWriteFault(res)
			return
		}
		if nv == 0 {
			c.advance(2)
		} else {
			c.advance(1)
		}

	case mrDSZ:
		v := c.Mem.Read(c.key(), ea)
		if v.Fault() {
			c.vectorReadFault(v)
			return
		}
		nv := (v.Data() - 1).Data()
		res := c.Mem.Write(c.key(), ea, nv)
		if res.Fault() {
			c.vectorWriteFault(res)
			return
		}
		if nv == 0 {
			c.advance(2)
		} else {
			c.advance(1)
		}

	default:
		c.except(intr.XUser)
	}
}

// vectorReadFault raises the matching exception for a memory.Word
// fault sentinel returned by a Read call: MEMX for an out-of-range
// address, PPFR for a key violation.
func (c *CPU) vectorReadFault(w memory.Word) {
	if w.IsMemFault() {
		c.except(intr.XMemX)
		return
	}
	c.except(intr.XPPFR)
}

// vectorWriteFault raises the matching exception for a memory.Word
// fault sentinel returned by a Write call: MEMX for an out-of-range
// address, PPFW for a key violation.
func (c *CPU) vectorWriteFault(w memory.Word) {
	if w.IsMemFault() {
		c.except(intr.XMemX)
		return
	}
	c.except(intr.XPPFW)
}
