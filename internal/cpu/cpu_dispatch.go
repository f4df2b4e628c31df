/*
 * IST-66 - Instruction class dispatch.
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

func (c *CPU) advance(n uint32) {
	c.setPC(c.pc() + n)
}

// dispatch decodes the top bits of word and routes to the matching
// instruction-class handler.
func (c *CPU) dispatch(word memory.Word) {
	w := uint64(word.Data())
	top3 := (w >> 33) & 0x7
	top9 := (w >> 27) & 0x1ff
	top6 := (w >> 30) & 0x3f

	switch {
	case top3 == 0x7:
		c.execAA(w)
	case top9 == classMR:
		c.execMR(w)
	case top9 >= classAMLo && top9 <= classAMHi:
		c.execAM(w, int(top9))
	case top9 == classMulDiv:
		c.execMulDiv(w)
	case top9 == classCallMsk:
		c.execCallMask(w)
	case top9 == classIO:
		c.execIO(w)
	case top6 == 06:
		c.execSMI(w)
	default:
		c.except(intr.XInst)
	}
}
