package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rdc700/ist66/internal/device"
	"github.com/rdc700/ist66/internal/intr"
	"github.com/rdc700/ist66/internal/memory"
)

func TestArithmeticAndSkip(t *testing.T) {
	c := New(16)
	c.Mem.Write(0, 0, 0xF08E00000) // XOR 1,1
	c.Mem.Write(0, 1, 0xF11608000) // XOR 2,2,SKP -- always skips
	c.Mem.Write(0, 2, 0x00000000C) // DW 12, skipped over

	c.fetchAndDispatch()
	c.fetchAndDispatch()

	assert.Equal(t, memory.Word(0), c.A[2].Data())
	assert.False(t, c.carry())
	assert.Equal(t, uint32(3), c.pc())
}

// pollDevice is a synchronous stand-in for a worker-backed device: it
// completes a Start immediately instead of on its own goroutine, so
// the polling loop scenario resolves in one pass.
type pollDevice struct {
	done bool
	data uint64
}

func (d *pollDevice) IO(_ uint64, ctl int, transfer int) uint64 {
	switch transfer {
	case device.XferWriteCtl:
		if ctl == device.CtlStart {
			d.done = true
		}
		return 0
	case device.XferStatus:
		if d.done {
			return device.StatusDone
		}
		return 0
	case device.XferReadLow:
		return d.data
	}
	return 0
}

func (d *pollDevice) Shutdown() {}

func TestDevicePollingLoop(t *testing.T) {
	c := New(16)
	const devNum = 010
	c.Devices.Attach(devNum, &pollDevice{data: 0x48})

	ioWord := func(dst, ctl, xfer, dev int) uint64 {
		return uint64(classIO)<<27 | uint64(dst)<<ioDstShift | uint64(ctl)<<ioCtlShift | uint64(xfer)<<ioXferShift | uint64(dev)
	}

	// NTS 10: latch start control.
	c.Mem.Write(0, 0, memory.Word(ioWord(0, device.CtlStart, device.XferWriteCtl, devNum)))
	// SKPDN 10: skip if done.
	c.Mem.Write(0, 1, memory.Word(ioWord(0, ioSkipIfDone, device.XferStatus, devNum)))
	// JMP .-1, only reached if SKPDN doesn't skip.
	jmpBack := uint64(classMR)<<27 | uint64(2)<<mrIndexShift | uint64(mrDispMask)
	c.Mem.Write(0, 2, memory.Word(jmpBack))
	// INS 0,10,0: read lower data into A0.
	c.Mem.Write(0, 3, memory.Word(ioWord(0, device.CtlNop, device.XferReadLow, devNum)))

	c.fetchAndDispatch() // NTS
	c.fetchAndDispatch() // SKPDN, skips the JMP
	c.fetchAndDispatch() // INS

	assert.Equal(t, memory.Word(0x48), c.A[0].Data())
	assert.Equal(t, uint32(4), c.pc())
}

func TestISZSkipOnWrap(t *testing.T) {
	c := New(256)
	c.Mem.Write(0, 100, memory.WordMask) // all ones

	iszWord := uint64(mrISZ)<<mrFuncShift | 100
	c.Mem.Write(0, 0, memory.Word(iszWord))

	c.fetchAndDispatch()

	assert.Equal(t, memory.Word(0), c.Mem.Read(0, 100))
	assert.Equal(t, uint32(2), c.pc())
}

func TestKeyFaultVectorsPPFR(t *testing.T) {
	c := New(256)
	c.Mem.SetKey(200, 0x42)
	c.setKey(0x43)
	c.setPC(200)

	c.fetchAndDispatch()

	saveSlotCW := c.Mem.Read(0, uint32(33+2*0))
	code := int((saveSlotCW & cwExceptMask) >> cwExceptShift)
	assert.Equal(t, intr.XPPFR, code)
	assert.Equal(t, 0, c.curIRQL())
}

func TestAMOperandReadKeyFaultVectorsPPFR(t *testing.T) {
	c := New(256)
	c.Mem.SetKey(200, 0x42)
	c.setKey(0x43)

	// LAC 0,200: read-class AM op, mismatched key on the operand read.
	lacWord := uint64(amLAC)<<27 | uint64(0)<<amRegShift | 200
	c.setPC(0)
	c.dispatch(memory.Word(lacWord))

	saveSlotCW := c.Mem.Read(0, uint32(33+2*0))
	code := int((saveSlotCW & cwExceptMask) >> cwExceptShift)
	assert.Equal(t, intr.XPPFR, code)
}

func TestAMOperandWriteKeyFaultVectorsPPFW(t *testing.T) {
	c := New(256)
	c.Mem.SetKey(200, 0x42)
	c.setKey(0x43)

	// DAC 0,200: write-class AM op, mismatched key on the operand write.
	dacWord := uint64(amDAC)<<27 | uint64(0)<<amRegShift | 200
	c.setPC(0)
	c.dispatch(memory.Word(dacWord))

	saveSlotCW := c.Mem.Read(0, uint32(33+2*0))
	code := int((saveSlotCW & cwExceptMask) >> cwExceptShift)
	assert.Equal(t, intr.XPPFW, code)
}

func TestCallAndReturnWithMaskRoundTrip(t *testing.T) {
	c := New(0x2000)
	for i := 0; i < 16; i++ {
		c.A[i] = memory.Word(i)
	}
	c.A[RegStack] = 0x1000
	c.Mem.Write(0, 0x200, 0x000f) // mask: A0..A3

	clmWord := uint64(classCallMsk)<<27 | uint64(crCLM)<<crFuncShift | 0x200
	c.setPC(0)
	c.dispatch(memory.Word(clmWord))

	assert.Equal(t, memory.Word(0x1000-6), c.A[RegStack].Data())
	assert.Equal(t, uint32(0x201), c.pc())

	retPC := c.Mem.Read(0, uint32(c.A[RegStack].Data()))
	assert.Equal(t, memory.Word(1), retPC)

	rtmWord := uint64(classCallMsk)<<27 | uint64(crRTM)<<crFuncShift
	c.dispatch(memory.Word(rtmWord))

	for i := 0; i < 4; i++ {
		assert.Equal(t, memory.Word(i), c.A[i].Data())
	}
	assert.Equal(t, memory.Word(0x1000), c.A[RegStack].Data())
	assert.Equal(t, uint32(1), c.pc())
}

func TestInterruptPriorityMasking(t *testing.T) {
	c := New(16)
	c.Intr.SetMask(0xffff)
	c.Intr.Assert(3)
	c.Intr.Assert(7)
	assert.Equal(t, 3, c.Intr.MinPending())

	c.Intr.SetMask(0xfff7)
	assert.Equal(t, 7, c.Intr.MinPending())
}
