package intr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinPendingAnalytic(t *testing.T) {
	c := New()
	c.SetMask(0xffff)
	c.Assert(3)
	c.Assert(7)
	assert.Equal(t, 3, c.MinPending())

	c.SetMask(0xfff7) // clear bit 3
	assert.Equal(t, 7, c.MinPending())
}

func TestReleaseRecomputesUpward(t *testing.T) {
	c := New()
	c.SetMask(0xffff)
	c.Assert(2)
	c.Assert(5)
	assert.Equal(t, 2, c.MinPending())

	c.Release(2)
	assert.Equal(t, 5, c.MinPending())
}

func TestSetMaskIdempotentOnMinPending(t *testing.T) {
	a := New()
	a.Assert(4)
	a.SetMask(0x1234)
	want := a.MinPending()

	b := New()
	b.Assert(4)
	b.SetMask(0xffff)
	b.SetMask(0x1234)
	assert.Equal(t, want, b.MinPending())
}

func TestNoPendingIsFifteen(t *testing.T) {
	c := New()
	c.SetMask(0xffff)
	assert.Equal(t, NumLevels, c.MinPending())
}

func TestCanHaltNewerSemantics(t *testing.T) {
	c := New()
	c.SetMask(0xffff)
	c.Assert(3)
	// current IRQ level 5: a higher-priority (lower number) IRQ is
	// pending, so halt must be refused.
	assert.False(t, c.CanHalt(5))
	// current IRQ level 2: nothing higher priority pending, halt ok.
	assert.True(t, c.CanHalt(2))
}

func TestRefcountedAssertRelease(t *testing.T) {
	c := New()
	c.SetMask(0xffff)
	c.Assert(9)
	c.Assert(9)
	assert.Equal(t, 2, c.Pending(9))
	c.Release(9)
	assert.Equal(t, 1, c.Pending(9))
	assert.Equal(t, 9, c.MinPending())
	c.Release(9)
	assert.Equal(t, 0, c.Pending(9))
	assert.Equal(t, NumLevels, c.MinPending())
}
