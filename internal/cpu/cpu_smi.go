/*
 * IST-66 - Supervisor/misc instruction class.
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

// execSMI executes HLT/INT/RFI-family/LDK/STK/LCT/STCTL. All are
// privileged; a problem-state caller raises PPFS.
func (c *CPU) execSMI(w uint64) {
	if !c.Supervisor() {
		c.except(intr.XPPFS)
		return
	}

	subop := int((w & smiSubopMask) >> smiSubopShift)

	ar := c.compMR(w)
	if ar.faulted {
		return
	}
	ea := ar.addr

	switch subop {
	case smiHLT:
		reg := int((w & amRegMask) >> amRegShift)
		c.stopCode = c.A[reg].Data()
		c.setPC(ea)
		c.Intr.TryHalt(c.curIRQL()) // no-op if a higher-priority IRQ is pending

	case smiINT:
		level := int(ea) & 0xf
		c.Intr.Assert(level)
		c.advance(1)

	case smiRFI:
		c.execRFIFamily(w, ea)

	case smiLDK:
		c.A[int((w&amRegMask)>>amRegShift)] = memory.Word(c.Mem.Key(ea))
		c.advance(1)

	case smiSTK:
		c.Mem.SetKey(ea, uint8(c.A[int((w&amRegMask)>>amRegShift)].Data()))
		c.advance(1)

	case smiLCT:
		reg := int((w & amRegMask) >> amRegShift)
		idx := ea & 0x7
		c.C[idx] = c.A[reg].Data()
		c.advance(1)

	case smiSTCTL:
		reg := int((w & amRegMask) >> amRegShift)
		idx := ea & 0x7
		c.A[reg] = c.C[idx]
		c.advance(1)

	default:
		c.except(intr.XUser)
	}
}

func (c *CPU) execRFIFamily(w uint64, ea uint32) {
	code := int((w & smiRFICodeMask) >> smiRFICodeShift)

	switch code {
	case smiRFIReturn:
		c.leaveIntr()

	case smiRFIRMask:
		c.Intr.SetMask(uint16(ea))
		c.leaveIntr()

	case smiRFILdMask:
		c.Intr.SetMask(uint16(ea))
		c.advance(1)

	case smiRFIStMask:
		reg := int((w & amRegMask) >> amRegShift)
		c.A[reg] = memory.Word(c.Intr.Mask())
		c.advance(1)

	default:
		c.except(intr.XUser)
	}
}
