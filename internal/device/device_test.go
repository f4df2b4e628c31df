package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubDevice struct {
	shutdown bool
}

func (d *stubDevice) IO(data uint64, ctl int, transfer int) uint64 { return data }
func (d *stubDevice) Shutdown()                                    { d.shutdown = true }

func TestAttachAndLookup(t *testing.T) {
	tbl := NewTable()
	_, ok := tbl.Lookup(5)
	assert.False(t, ok)

	dev := &stubDevice{}
	tbl.Attach(5, dev)
	got, ok := tbl.Lookup(5)
	assert.True(t, ok)
	assert.Same(t, dev, got)
}

func TestAttachReplacesPriorOccupant(t *testing.T) {
	tbl := NewTable()
	first := &stubDevice{}
	second := &stubDevice{}
	tbl.Attach(1, first)
	tbl.Attach(1, second)

	got, ok := tbl.Lookup(1)
	assert.True(t, ok)
	assert.Same(t, second, got)
}

func TestShutdownAllTearsDownEveryDevice(t *testing.T) {
	tbl := NewTable()
	a := &stubDevice{}
	b := &stubDevice{}
	tbl.Attach(1, a)
	tbl.Attach(2, b)

	tbl.ShutdownAll()

	assert.True(t, a.shutdown)
	assert.True(t, b.shutdown)
}
