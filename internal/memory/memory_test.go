package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadWriteRoundTrip(t *testing.T) {
	m := New(4096)
	assert.Equal(t, Word(0), m.Write(0, 100, 0o1234567))
	assert.Equal(t, Word(0o1234567), m.Read(0, 100))
}

func TestMemFaultAtSizeBoundary(t *testing.T) {
	m := New(4096)
	assert.True(t, m.Read(0, 4096).IsMemFault())
	assert.True(t, m.Read(0, 0xffffffff).IsMemFault())
	assert.False(t, m.Read(0, 4095).Fault())
}

func TestKeyFaultBoundaries(t *testing.T) {
	m := New(8192)
	m.SetKey(0x1000, 0x42)

	// requester key 0 always allowed.
	assert.False(t, m.Read(0, 0x1000).Fault())
	assert.False(t, m.Write(0, 0x1000, 1).Fault())

	// matching key allowed.
	assert.False(t, m.Read(0x42, 0x1000).Fault())

	// mismatched key faults.
	assert.True(t, m.Read(0x43, 0x1000).IsKeyFault())
	assert.True(t, m.Write(0x43, 0x1000, 1).IsKeyFault())

	// 0xFE is public read, supervisor write.
	m.SetKey(0x1000, KeyPublicRO)
	assert.False(t, m.Read(0x43, 0x1000).Fault())
	assert.True(t, m.Write(0x43, 0x1000, 1).IsKeyFault())

	// 0xFF is public read/write.
	m.SetKey(0x1000, KeyPublicRW)
	assert.False(t, m.Read(0x43, 0x1000).Fault())
	assert.False(t, m.Write(0x43, 0x1000, 1).Fault())
}

func TestDataMasksHighBits(t *testing.T) {
	m := New(16)
	_ = m.Write(0, 0, Word(0xfffffffff))
	got := m.Read(0, 0)
	assert.Equal(t, Word(0xfffffffff), got)
	assert.Equal(t, Word(0), got&^WordMask)
}
