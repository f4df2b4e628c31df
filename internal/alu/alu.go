/*
 * IST-66 - Single composable arithmetic/logic primitive.
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

// Package alu implements the single compute primitive shared by every
// arithmetic/logic instruction class: memory-reference, accumulator/
// memory, and accumulator-to-accumulator.
package alu

import "github.com/rdc700/ist66/internal/memory"

// Carry-init modes.
const (
	CarryKeep = 0
	CarryClr  = 1
	CarrySet  = 2
	CarryCpl  = 3
)

// Opcodes understood by Compute. Values not listed (8, 9, 11..13, 14)
// are reserved and yield 0.
const (
	OpCom  = 0  // ~a
	OpNeg  = 1  // -a
	OpMov  = 2  // a
	OpInc  = 3  // a+1
	OpSubR = 4  // ~a + b
	OpSubN = 5  // (-a) + b
	OpAdd  = 6  // a + b
	OpAnd  = 7  // a AND b
	OpOr   = 10 // a OR b
	OpXor  = 15 // a XOR b
)

// Skip conditions.
const (
	SkipNever = 0
	SkipAlway = 1
	SkipCY0   = 2
	SkipCY1   = 3
	SkipEQ0   = 4
	SkipNE0   = 5
	SkipCY0EQ = 6
	SkipCY1NE = 7
)

const bits36 = 36

// Args bundles Compute's ten coordinates. Named fields read better
// than ten positional booleans/ints at every call site.
type Args struct {
	A, B Word36 // 36-bit operands
	Carry bool  // incoming carry
	Op    int   // opcode, see Op* constants
	CI    int   // carry-init mode, see Carry* constants
	Cond  int   // skip condition, see Skip* constants
	NL    bool  // no-load: result low bits replaced by B
	RC    bool  // rotate-through-carry (37-bit rotate)
	Mask  int   // signed mask width; +N = high N bits, -N = low N bits
	Rot   int   // signed rotate distance; +N = left, -N = right
}

// Word36 is a plain 36-bit unsigned value, distinct from memory.Word
// so call sites can't accidentally pass a fault sentinel into Compute.
type Word36 uint64

func (w Word36) mask() Word36 { return w & Word36(memory.WordMask) }

// Result is what Compute returns: the 36-bit result plus the carry and
// skip flags, packaged the way memory.Word packages them (bit 36 carry,
// bit 37 skip) so callers can fold it straight into a memory write.
type Result struct {
	Value memory.Word
	Carry bool
	Skip  bool
}

// Compute performs, in order: carry init, the arithmetic/logic op,
// rotate, mask, skip-condition evaluation, and no-load substitution.
// It is pure and deterministic: the same Args always yield the same
// Result.
func Compute(a Args) Result {
	carry := initCarry(a.CI, a.Carry)

	result, carry := arith(a.Op, a.A.mask(), a.B.mask(), carry)

	result, carry = rotate(result, carry, a.RC, a.Rot)

	result = applyMask(result, carry, a.Mask)

	skip := evalSkip(a.Cond, carry, result)

	if a.NL {
		result = a.B.mask()
	}

	v := memory.Word(result & Word36(memory.WordMask))
	if carry {
		v |= memory.CarryBit
	}
	if skip {
		v |= memory.SkipBit
	}
	return Result{Value: v, Carry: carry, Skip: skip}
}

func initCarry(ci int, c bool) bool {
	switch ci {
	case CarryClr:
		return false
	case CarrySet:
		return true
	case CarryCpl:
		return !c
	default: // CarryKeep
		return c
	}
}

const maxWord36 = Word36(1)<<bits36 - 1

func arith(op int, a, b Word36, carry bool) (Word36, bool) {
	switch op {
	case OpCom:
		return (^a).mask(), carry
	case OpNeg:
		return (^a + 1).mask(), carry
	case OpMov:
		return a, carry
	case OpInc:
		if a == maxWord36 {
			carry = !carry
		}
		return (a + 1).mask(), carry
	case OpSubR:
		if a < b {
			carry = !carry
		}
		return ((^a).mask() + b).mask(), carry
	case OpSubN:
		if a <= b {
			carry = !carry
		}
		return ((^a).mask() + 1 + b).mask(), carry
	case OpAdd:
		sum := uint64(a) + uint64(b)
		if sum > uint64(maxWord36) {
			carry = !carry
		}
		return Word36(sum).mask(), carry
	case OpAnd:
		return a & b, carry
	case OpOr:
		return a | b, carry
	case OpXor:
		return a ^ b, carry
	default:
		return 0, carry
	}
}

// rotate rotates result left (positive rot) or right (negative rot).
// With rc set, the rotate includes the carry bit as bit 36 of a
// 37-bit field, and the post-rotate bit 36 becomes the new carry;
// otherwise the 36-bit result rotates alone and carry passes through
// unaffected by the rotate step.
func rotate(v Word36, carry bool, rc bool, rot int) (Word36, bool) {
	if rot == 0 {
		return v, carry
	}
	if rc {
		width := bits36 + 1
		field := uint64(v)
		if carry {
			field |= 1 << bits36
		}
		field = rotl(field, rot, width)
		newCarry := field&(1<<bits36) != 0
		return Word36(field & uint64(maxWord36)), newCarry
	}
	return Word36(rotl(uint64(v), rot, bits36)).mask(), carry
}

func rotl(field uint64, rot int, width int) uint64 {
	n := ((rot % width) + width) % width
	if n == 0 {
		return field
	}
	m := uint64(1)<<width - 1
	field &= m
	return ((field << n) | (field >> (width - n))) & m
}

// applyMask replaces the |mk| most- (mk>0) or least- (mk<0) significant
// bits of v with the carry bit, repeated across that field.
func applyMask(v Word36, carry bool, mk int) Word36 {
	if mk == 0 {
		return v
	}
	n := mk
	high := true
	if n < 0 {
		n = -n
		high = false
	}
	if n > bits36 {
		n = bits36
	}
	var fill Word36
	if carry {
		fill = (Word36(1) << n) - 1
	}
	if high {
		shift := bits36 - n
		keepMask := (Word36(1) << shift) - 1
		return (v & keepMask) | (fill << shift)
	}
	keepMask := ^((Word36(1) << n) - 1) & maxWord36
	return (v & keepMask) | fill
}

func evalSkip(cond int, carry bool, v Word36) bool {
	switch cond {
	case SkipNever:
		return false
	case SkipAlway:
		return true
	case SkipCY0:
		return !carry
	case SkipCY1:
		return carry
	case SkipEQ0:
		return v == 0
	case SkipNE0:
		return v != 0
	case SkipCY0EQ:
		return !carry || v == 0
	case SkipCY1NE:
		return carry && v != 0
	default:
		return false
	}
}

// IsADREncoding reports whether a mask field, as read out of an AA
// instruction word, carries the ADR signal: top three bits of the
// (unsigned, 7-bit) mask field equal 0b100. Callers are responsible
// for redirecting the destination register and mask width before
// calling Compute; Compute itself never inspects this.
func IsADREncoding(mk int) bool {
	return mk&0x70 == 0x40
}
