/*
 * IST-66 - Call and return with mask.
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

// execCallMask executes CLM (function 0) or RTM (function 1).
func (c *CPU) execCallMask(w uint64) {
	fn := int((w & crFuncMask) >> crFuncShift)

	ar := c.compMR(w)
	if ar.faulted {
		return
	}
	ea := ar.addr

	switch fn {
	case crCLM:
		c.doCLM(ea)
	case crRTM:
		c.doRTM()
	default:
		c.except(intr.XInst)
	}
}

type stackWrite struct {
	addr uint32
	val  memory.Word
}

// doCLM saves the mask's selected accumulators, the mask, and the
// return PC onto the A13 stack. Every write is staged; on any fault
// A13 is left untouched and the staged writes remain as dead memory:
// rollback-on-fail is an explicit contract.
func (c *CPU) doCLM(ea uint32) {
	maskWord := c.Mem.Read(c.key(), ea)
	if maskWord.Fault() {
		c.vectorReadFault(maskWord)
		return
	}
	mask := uint16(maskWord.Data())

	temp := uint32(c.A[RegStack].Data())
	var writes []stackWrite
	for n := 15; n >= 0; n-- {
		if mask&(1<<uint(n)) != 0 {
			temp--
			writes = append(writes, stackWrite{temp, c.A[n]})
		}
	}
	temp--
	writes = append(writes, stackWrite{temp, memory.Word(mask)})
	temp--
	writes = append(writes, stackWrite{temp, memory.Word(c.pc() + 1)})

	for _, s := range writes {
		res := c.Mem.Write(c.key(), s.addr, s.val)
		if res.Fault() {
			c.vectorWriteFault(res)
			return
		}
	}

	c.A[RegStack] = memory.Word(temp)
	c.setPC(ea + 1)
}

// doRTM pops the return PC, the mask, and the mask's selected
// accumulators from the A13 stack, restoring A13 itself from the
// popped value (not the advanced stack pointer) if the mask includes it.
func (c *CPU) doRTM() {
	sp := uint32(c.A[RegStack].Data())

	retWord := c.Mem.Read(c.key(), sp)
	if retWord.Fault() {
		c.vectorReadFault(retWord)
		return
	}
	sp++

	maskWord := c.Mem.Read(c.key(), sp)
	if maskWord.Fault() {
		c.vectorReadFault(maskWord)
		return
	}
	sp++
	mask := uint16(maskWord.Data())

	type popVal struct {
		reg int
		val memory.Word
	}
	var pops []popVal
	for n := 0; n <= 15; n++ {
		if mask&(1<<uint(n)) != 0 {
			v := c.Mem.Read(c.key(), sp)
			if v.Fault() {
				c.vectorReadFault(v)
				return
			}
			pops = append(pops, popVal{n, v.Data()})
			sp++
		}
	}

	restoredSP := false
	for _, p := range pops {
		if p.reg == RegStack {
			restoredSP = true
			continue
		}
		c.A[p.reg] = p.val
	}
	if restoredSP {
		for _, p := range pops {
			if p.reg == RegStack {
				c.A[RegStack] = p.val
			}
		}
	} else {
		c.A[RegStack] = memory.Word(sp)
	}

	c.setPC(uint32(retWord.Data()))
}
