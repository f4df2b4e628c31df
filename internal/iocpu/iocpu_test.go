package iocpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rdc700/ist66/internal/memory"
)

type fakeHostMem struct {
	words map[uint32]memory.Word
}

func newFakeHostMem() *fakeHostMem {
	return &fakeHostMem{words: make(map[uint32]memory.Word)}
}

func (f *fakeHostMem) Read(_ uint8, addr uint32) memory.Word {
	return f.words[addr]
}

func (f *fakeHostMem) Write(_ uint8, addr uint32, data memory.Word) memory.Word {
	f.words[addr] = data.Data()
	return 0
}

type fakeHostIRQ struct {
	asserted []int
}

func (f *fakeHostIRQ) Assert(irq int) { f.asserted = append(f.asserted, irq) }

func TestPrivateMemoryPacksTwoWordsPerHostWord(t *testing.T) {
	c := New(newFakeHostMem(), &fakeHostIRQ{}, 5)
	c.writePriv(10, 0x1234)
	c.writePriv(11, 0x0fed)

	assert.Equal(t, Word18(0x1234), c.readPriv(10))
	assert.Equal(t, Word18(0x0fed), c.readPriv(11))
}

func TestReadMemRoutesPrivateVsHostWindow(t *testing.T) {
	host := newFakeHostMem()
	c := New(host, &fakeHostIRQ{}, 5)

	c.writeMem(100, 0x2222)
	assert.Equal(t, Word18(0x2222), c.readMem(100))

	c.writeMem(privAddrs+7, 0x3333)
	assert.Equal(t, memory.Word(0x3333), host.words[7])
	assert.Equal(t, Word18(0x3333), c.readMem(privAddrs+7))
}

func TestStepOpMoveLoadsAccumulator(t *testing.T) {
	c := New(newFakeHostMem(), &fakeHostIRQ{}, 5)
	const target = 50
	c.writePriv(target, 0x0155)

	// opMove (1) at top 3 bits, address field = target.
	instr := Word18(uint32(opMove)<<opShift | target)
	c.writePriv(0, instr)
	c.PC = 0

	assert.True(t, c.Step())
	assert.Equal(t, Word18(0x0155), c.AC)
}

func TestStepOpHaltStopsProcessor(t *testing.T) {
	c := New(newFakeHostMem(), &fakeHostIRQ{}, 5)
	c.writePriv(0, Word18(uint32(opHalt)<<opShift))
	c.PC = 0

	assert.False(t, c.Step())
	assert.False(t, c.Step()) // already halted, stays halted
}

func TestAssertHostIRQSetsAPIAndSignalsHost(t *testing.T) {
	irq := &fakeHostIRQ{}
	c := New(newFakeHostMem(), irq, 5)

	c.AssertHostIRQ()

	assert.True(t, c.API)
	assert.Equal(t, []int{5}, irq.asserted)
}
