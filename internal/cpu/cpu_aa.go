/*
 * IST-66 - Accumulator-to-accumulator instruction class.
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

import "github.com/rdc700/ist66/internal/alu"

func signExtend7(v int) int {
	if v&0x40 != 0 {
		return v - 128
	}
	return v
}

// execAA executes one accumulator-to-accumulator instruction.
func (c *CPU) execAA(w uint64) {
	opcode := int((w & aaOpMask) >> aaOpShift)
	rc := w&aaRCBit != 0
	src := int((w & aaSrcMask) >> aaSrcShift)
	dst := int((w & aaDstMask) >> aaDstShift)
	fn := int((w & aaFuncMask) >> aaFuncShift)
	ci := int((w & aaCIMask) >> aaCIShift)
	cond := int((w & aaCondMask) >> aaCondShift)
	nl := w&aaNLBit != 0
	maskRaw := int((w & aaMaskMask) >> aaMaskShift)
	rotRaw := int(w & aaRotMask)
	rot := signExtend7(rotRaw)

	// The top 3 bits of opcode are already pinned to 0b111 by the
	// class dispatch that routed here; only the low bit varies,
	// giving op the 0..15 range the ALU table expects.
	op := ((opcode & 1) << 3) | fn

	destReg := dst
	mask := signExtend7(maskRaw)
	if alu.IsADREncoding(maskRaw) {
		destReg = maskRaw & 0xf
		mask = rot
	}

	res := alu.Compute(alu.Args{
		A:     alu.Word36(c.A[src].Data()),
		B:     alu.Word36(c.A[dst].Data()),
		Carry: c.carry(),
		Op:    op,
		CI:    ci,
		Cond:  cond,
		NL:    nl,
		RC:    rc,
		Mask:  mask,
		Rot:   rot,
	})

	c.A[destReg] = res.Value
	c.setCarry(res.Carry)
	if res.Skip {
		c.advance(2)
	} else {
		c.advance(1)
	}
}
