/*
 * IST-66 - I/O instruction class.
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
	"github.com/rdc700/ist66/internal/device"
	"github.com/rdc700/ist66/internal/intr"
	"github.com/rdc700/ist66/internal/memory"
)

// I/O status-skip control values (ctl field when transfer == StatusSkip).
const (
	ioSkipIfBusy    = 0
	ioSkipIfNotBusy = 1
	ioSkipIfDone    = 2
	ioSkipIfNotDone = 3
)

// execIO executes the I/O instruction: supervisor-only dispatch into
// the device table.
func (c *CPU) execIO(w uint64) {
	if !c.Supervisor() {
		c.except(intr.XPPFS)
		return
	}

	dst := int((w & ioDstMask) >> ioDstShift)
	ctl := int((w & ioCtlMask) >> ioCtlShift)
	xfer := int((w & ioXferMask) >> ioXferShift)
	devID := int(w & ioDevMask)

	dev, ok := c.Devices.Lookup(devID)
	if !ok {
		c.except(intr.XDevX)
		return
	}

	ret := dev.IO(uint64(c.A[dst].Data()), ctl, xfer)

	switch {
	case xfer == device.XferStatus:
		done := ret&device.StatusDone != 0
		busy := ret&device.StatusBusy != 0
		skip := false
		switch ctl {
		case ioSkipIfBusy:
			skip = busy
		case ioSkipIfNotBusy:
			skip = !busy
		case ioSkipIfDone:
			skip = done
		case ioSkipIfNotDone:
			skip = !done
		}
		if skip {
			c.advance(2)
		} else {
			c.advance(1)
		}
		return

	case xfer < device.XferStatus && xfer%2 == 0:
		c.A[dst] = memory.Word(ret).Data()
	}

	c.advance(1)
}
