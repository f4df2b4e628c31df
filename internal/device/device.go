/*
 * IST-66 - Device Framework contract.
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

// Package device defines the uniform I/O device contract used by the
// CPU's I/O instruction: one transfer function, an opaque per-device
// context, and a shutdown hook, modeled as a capability-set interface
// rather than the teacher's three raw function pointers.
package device

// Ctl values for the 2-bit control field of the I/O instruction.
const (
	CtlNop       = 0
	CtlStart     = 1
	CtlClearDone = 2
	// CtlReserved = 3
)

// Transfer lane/status selectors for the 4-bit transfer field.
const (
	XferReadLow  = 0
	XferWriteLow = 1
	XferWriteCtl = 3
	XferStatus   = 14
)

// Status bits returned by a XferStatus query (low two bits of the
// return value).
const (
	StatusDone = 1 << 0
	StatusBusy = 1 << 1
)

// Device is the capability set every I/O backend implements. IO is
// called on the CPU thread and must not block; it only latches state
// and (for Start) wakes the backend's own worker. Shutdown tears the
// device down, used when the host CPU it is attached to is destroyed.
type Device interface {
	// IO performs one control/transfer cycle and returns the 36-bit
	// value to store back in the accumulator (ignored by the caller
	// unless the transfer lane calls for a writeback).
	IO(data uint64, ctl int, transfer int) uint64
	// Shutdown releases any worker goroutine, file handle, or
	// listener owned by the device.
	Shutdown()
}

// Table is a CPU-local device vector: each CPU instance owns its own,
// so multiple CPUs (and an attached IOCPU) can coexist in one process.
type Table struct {
	devices map[int]Device
}

// NewTable returns an empty device table.
func NewTable() *Table {
	return &Table{devices: make(map[int]Device)}
}

// Attach registers dev at the given device number, replacing any
// previous occupant (the caller is responsible for shutting that one
// down first if that matters).
func (t *Table) Attach(num int, dev Device) {
	t.devices[num] = dev
}

// Lookup returns the device at num, or nil, ok=false if unconfigured.
func (t *Table) Lookup(num int) (Device, bool) {
	d, ok := t.devices[num]
	return d, ok
}

// ShutdownAll tears down every attached device, in no particular
// order (devices don't depend on each other).
func (t *Table) ShutdownAll() {
	for _, d := range t.devices {
		d.Shutdown()
	}
}
