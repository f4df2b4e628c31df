/*
 * IST-66 - Multiply/divide instruction class.
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
	"math/big"

	"github.com/rdc700/ist66/internal/intr"
	"github.com/rdc700/ist66/internal/memory"
)

// signed36 sign-extends the low 36 bits of w to a Go int64.
func signed36(w memory.Word) int64 {
	v := int64(w.Data())
	if v&(1<<35) != 0 {
		v -= 1 << 36
	}
	return v
}

var mod72 = new(big.Int).Lsh(big.NewInt(1), 72)
var mask36Big = new(big.Int).SetUint64(uint64(memory.WordMask))

// combine72 reassembles the unsigned 72-bit value held across A2:A0
// (hi:lo), for use as an addend — addition modulo 2^72 is insensitive
// to whether the operands are read as signed or unsigned.
func combine72(hi, lo memory.Word) *big.Int {
	v := new(big.Int).Lsh(new(big.Int).SetUint64(uint64(hi.Data())), 36)
	v.Or(v, new(big.Int).SetUint64(uint64(lo.Data())))
	return v
}

// split72 reduces v modulo 2^72 and splits it into hi:lo 36-bit halves,
// reporting whether the reduction actually discarded bits (overflow).
func split72(v *big.Int) (hi, lo memory.Word, overflow bool) {
	t := new(big.Int).Mod(v, mod72)
	if t.Sign() < 0 {
		t.Add(t, mod72)
	}
	overflow = t.Cmp(v) != 0
	loBig := new(big.Int).And(t, mask36Big)
	hiBig := new(big.Int).Rsh(t, 36)
	hiBig.And(hiBig, mask36Big)
	return memory.Word(hiBig.Uint64()), memory.Word(loBig.Uint64()), overflow
}

// execMulDiv executes MPY/MPA/MNA/DIV.
func (c *CPU) execMulDiv(w uint64) {
	fn := int((w & mdFuncMask) >> mdFuncShift)

	ar := c.compMR(w)
	if ar.faulted {
		return
	}
	ea := ar.addr

	memV, ok := c.readOperand(ea)
	if !ok {
		return
	}

	switch fn {
	case mdMPY, mdMPA, mdMNA:
		multiplicand := big.NewInt(signed36(c.A[1]))
		multiplier := signed36(memory.Word(memV))
		if fn == mdMNA {
			multiplier = -multiplier
		}
		product := new(big.Int).Mul(multiplicand, big.NewInt(multiplier))

		overflow := false
		if fn == mdMPA || fn == mdMNA {
			acc := combine72(c.A[2], c.A[0])
			sum := new(big.Int).Add(product, acc)
			var hi, lo memory.Word
			hi, lo, overflow = split72(sum)
			c.A[2], c.A[0] = hi, lo
		} else {
			hi, lo, _ := split72(product)
			c.A[2], c.A[0] = hi, lo
		}
		if overflow {
			c.setCarry(!c.carry())
		}
		c.advance(1)

	case mdDIV:
		if memV == 0 {
			c.except(intr.XDivz)
			return
		}
		dividend := signed36(c.A[0])
		divisor := signed36(memory.Word(memV))
		q := dividend / divisor
		r := dividend % divisor
		c.A[1] = memory.Word(uint64(q) & uint64(memory.WordMask))
		c.A[2] = memory.Word(uint64(r) & uint64(memory.WordMask))
		c.advance(1)

	default:
		c.except(intr.XInst)
	}
}
