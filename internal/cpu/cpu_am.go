/*
 * IST-66 - Accumulator/memory instruction class.
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
	"github.com/rdc700/ist66/internal/alu"
	"github.com/rdc700/ist66/internal/intr"
	"github.com/rdc700/ist66/internal/memory"
)

// execAM executes one accumulator/memory instruction (the 9-bit top
// field in 001..027). reg names the accumulator operand; ea is
// computed the same way as a memory-reference word, bits 0..22 being
// shared ground between the two classes.
func (c *CPU) execAM(w uint64, op9 int) {
	reg := int((w & amRegMask) >> amRegShift)

	ar := c.compMR(w)
	if ar.faulted {
		return
	}
	ea := ar.addr

	switch op9 {
	case amEDT, amESK:
		var word memory.Word
		if reg == 0 {
			v := c.Mem.Read(c.key(), ea)
			if v.Fault() {
				c.vectorReadFault(v)
				return
			}
			word = v
		} else {
			word = c.A[reg]
		}
		c.xeqInst = word
		c.doEdit = true
		c.doEdsk = op9 == amESK
		return // PC does not move for EDT/ESK themselves

	case amLAD:
		c.A[reg] = memory.Word(ea)
		c.advance(1)

	case amLAS:
		c.A[reg] = memory.Word(uint64(ea) << 17).Data()
		c.advance(1)

	case amLCO:
		mem, ok := c.readOperand(ea)
		if !ok {
			return
		}
		res := alu.Compute(alu.Args{A: alu.Word36(mem), Op: alu.OpCom})
		c.A[reg] = res.Value
		c.setCarry(res.Carry)
		c.advance(1)

	case amLNG:
		mem, ok := c.readOperand(ea)
		if !ok {
			return
		}
		res := alu.Compute(alu.Args{A: alu.Word36(mem), Op: alu.OpNeg})
		c.A[reg] = res.Value
		c.setCarry(res.Carry)
		c.advance(1)

	case amLAC:
		mem, ok := c.readOperand(ea)
		if !ok {
			return
		}
		res := alu.Compute(alu.Args{A: alu.Word36(mem), Op: alu.OpMov})
		c.A[reg] = res.Value
		c.setCarry(res.Carry)
		c.advance(1)

	case amDAC:
		result := c.Mem.Write(c.key(), ea, c.A[reg])
		if result.Fault() {
			c.vectorWriteFault(result)
			return
		}
		c.advance(1)

	case amADC, amADD:
		mem, ok := c.readOperand(ea)
		if !ok {
			return
		}
		ci := alu.CarryKeep
		if op9 == amADD {
			ci = alu.CarryClr
		}
		res := alu.Compute(alu.Args{A: alu.Word36(c.A[reg].Data()), B: alu.Word36(mem), Op: alu.OpAdd, CI: ci, Carry: c.carry()})
		c.A[reg] = res.Value
		c.setCarry(res.Carry)
		c.advance(1)

	case amSUB:
		mem, ok := c.readOperand(ea)
		if !ok {
			return
		}
		res := alu.Compute(alu.Args{A: alu.Word36(mem), B: alu.Word36(c.A[reg].Data()), Op: alu.OpSubR, Carry: c.carry()})
		c.A[reg] = res.Value
		c.setCarry(res.Carry)
		c.advance(1)

	case amAND:
		mem, ok := c.readOperand(ea)
		if !ok {
			return
		}
		res := alu.Compute(alu.Args{A: alu.Word36(c.A[reg].Data()), B: alu.Word36(mem), Op: alu.OpAnd, Carry: c.carry()})
		c.A[reg] = res.Value
		c.setCarry(res.Carry)
		c.advance(1)

	case amIOR:
		mem, ok := c.readOperand(ea)
		if !ok {
			return
		}
		res := alu.Compute(alu.Args{A: alu.Word36(c.A[reg].Data()), B: alu.Word36(mem), Op: alu.OpOr, Carry: c.carry()})
		c.A[reg] = res.Value
		c.setCarry(res.Carry)
		c.advance(1)

	case amXOR:
		mem, ok := c.readOperand(ea)
		if !ok {
			return
		}
		res := alu.Compute(alu.Args{A: alu.Word36(c.A[reg].Data()), B: alu.Word36(mem), Op: alu.OpXor, Carry: c.carry()})
		c.A[reg] = res.Value
		c.setCarry(res.Carry)
		c.advance(1)

	case amISE:
		c.incDecCompareSkip(ea, reg, 1)

	case amDSE:
		c.incDecCompareSkip(ea, reg, ^uint64(0))

	default:
		c.except(intr.XInst)
	}
}

// readOperand reads the memory operand at ea, vectoring on fault and
// reporting ok=false so the caller abandons the instruction.
func (c *CPU) readOperand(ea uint32) (uint64, bool) {
	v := c.Mem.Read(c.key(), ea)
	if v.Fault() {
		c.vectorReadFault(v)
		return 0, false
	}
	return uint64(v.Data()), true
}

// incDecCompareSkip implements ISE/DSE: add delta to mem[ea], write it
// back, and skip the next word if the new value equals A[reg].
func (c *CPU) incDecCompareSkip(ea uint32, reg int, delta uint64) {
	v := c.Mem.Read(c.key(), ea)
	if v.Fault() {
		c.vectorReadFault(v)
		return
	}
	nv := (v.Data() + memory.Word(delta)).Data()
	res := c.Mem.Write(c.key(), ea, nv)
	if res.Fault() {
		c.vectorWriteFault(res)
		return
	}
	if nv == c.A[reg].Data() {
		c.advance(2)
	} else {
		c.advance(1)
	}
}
