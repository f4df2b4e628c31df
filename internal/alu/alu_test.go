package alu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rdc700/ist66/internal/memory"
)

func TestTwosComplementRoundTrip(t *testing.T) {
	x := Word36(0x123456789)
	r1 := Compute(Args{A: x, Op: OpNeg})
	r2 := Compute(Args{A: Word36(r1.Value.Data()), Op: OpNeg})
	assert.Equal(t, x, Word36(r2.Value.Data()))
}

func TestAddCarryOut(t *testing.T) {
	r := Compute(Args{A: Word36(0xfffffffff), B: 1, Op: OpAdd})
	assert.Equal(t, memory.Word(0), r.Value.Data())
	assert.True(t, r.Carry)
}

func TestRotateIdentities(t *testing.T) {
	x := Word36(0x0f0f0f0f0)
	r := Compute(Args{A: x, Op: OpMov, Rot: 0})
	assert.Equal(t, memory.Word(x), r.Value.Data())

	r = Compute(Args{A: x, Op: OpMov, Rot: 36})
	assert.Equal(t, memory.Word(x), r.Value.Data())

	r = Compute(Args{A: x, Op: OpMov, Rot: 37, RC: true})
	assert.Equal(t, memory.Word(x), r.Value.Data())
}

func TestMaskIdentityAndFull(t *testing.T) {
	x := Word36(0x123456789)
	r := Compute(Args{A: x, Op: OpMov, Mask: 0})
	assert.Equal(t, memory.Word(x), r.Value.Data())

	r = Compute(Args{A: x, Op: OpMov, Mask: 36, Carry: true})
	assert.Equal(t, memory.Word(0xfffffffff), r.Value.Data())

	r = Compute(Args{A: x, Op: OpMov, Mask: 36, Carry: false})
	assert.Equal(t, memory.Word(0), r.Value.Data())
}

func TestSkipConditions(t *testing.T) {
	r := Compute(Args{A: 0, Op: OpMov, Cond: SkipAlway})
	assert.True(t, r.Skip)

	r = Compute(Args{A: 0, Op: OpMov, Cond: SkipEQ0})
	assert.True(t, r.Skip)

	r = Compute(Args{A: 1, Op: OpMov, Cond: SkipEQ0})
	assert.False(t, r.Skip)
}

func TestNoLoadKeepsCarryAndSkip(t *testing.T) {
	r := Compute(Args{A: 5, B: 9, Op: OpAdd, NL: true, Cond: SkipAlway})
	assert.Equal(t, memory.Word(9), r.Value.Data())
	assert.True(t, r.Skip)
}

func TestADREncodingDetection(t *testing.T) {
	assert.True(t, IsADREncoding(0x40))
	assert.True(t, IsADREncoding(0x4f))
	assert.False(t, IsADREncoding(0x3f))
	assert.False(t, IsADREncoding(0x50))
}

func TestSubROneComplementVsSubNTwoComplement(t *testing.T) {
	// OpSubR is ~a+b (one's-complement subtract); OpSubN is (-a)+b
	// (two's-complement subtract). For a=5, b=9 these diverge: ~5+9
	// wraps to 3, while (-5)+9 is 4.
	r := Compute(Args{A: 5, B: 9, Op: OpSubR})
	assert.Equal(t, memory.Word(3), r.Value.Data())

	r = Compute(Args{A: 5, B: 9, Op: OpSubN})
	assert.Equal(t, memory.Word(4), r.Value.Data())
}

func TestSubRAndSubNCarryOnEqualOperands(t *testing.T) {
	// a == b: SubR's carry test is a<b (false, carry unchanged), SubN's
	// is a<=b (true, carry complemented) -- another point of divergence.
	r := Compute(Args{A: 7, B: 7, Op: OpSubR, Carry: false})
	assert.False(t, r.Carry)

	r = Compute(Args{A: 7, B: 7, Op: OpSubN, Carry: false})
	assert.True(t, r.Carry)
}

func TestReservedOpcodesYieldZero(t *testing.T) {
	for _, op := range []int{8, 9, 11, 12, 13, 14} {
		r := Compute(Args{A: 0x1ff, B: 0x2ff, Op: op})
		assert.Equal(t, memory.Word(0), r.Value.Data())
	}
}
