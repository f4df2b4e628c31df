/*
 * IST-66 - Console teletype backend.
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

// Package tty implements the console teletype backend: a telnet
// client's input feeds a 256-byte ring buffer, with a configurable
// interrupt policy (any character, ESC, CR, or fill threshold) and
// optional local echo, one concurrent client at a time via the
// internal/telnet listener.
package tty

import (
	"log/slog"
	"net"
	"sync"

	"github.com/rdc700/ist66/internal/device"
	"github.com/rdc700/ist66/internal/devices/common"
	"github.com/rdc700/ist66/internal/telnet"
)

// InterruptMode selects when an input character raises the device's
// interrupt, configured per instance from the config file.
type InterruptMode int

const (
	// IntrAny interrupts on every received character.
	IntrAny InterruptMode = iota
	// IntrESC interrupts only when the character is ESC (0x1b).
	IntrESC
	// IntrCR interrupts only when the character is CR (0x0d).
	IntrCR
	// IntrThreshold interrupts once the ring buffer holds Threshold
	// unread bytes.
	IntrThreshold
)

const ringSize = 256

// Echo selects local echo behavior for received characters.
type Echo int

const (
	// EchoNone never echoes locally; the remote client's own terminal
	// (or the host program) is responsible for any echo.
	EchoNone Echo = iota
	// EchoLocal echoes every received character back to the client.
	EchoLocal
)

// TTY is a telnet-backed console device.
type TTY struct {
	host common.IRQHost
	irq  int

	mode      InterruptMode
	threshold int
	echo      Echo

	ln *telnet.Listener

	mu    sync.Mutex
	ring  [ringSize]byte
	head  int // next byte to read
	tail  int // next free slot
	count int
	conn  net.Conn
	scan  telnet.Scanner

	outMu sync.Mutex
}

// Config bundles TTY's construction-time options.
type Config struct {
	Addr      string
	Mode      InterruptMode
	Threshold int
	Echo      Echo
}

// New starts a telnet listener on cfg.Addr and returns the device.
func New(cfg Config, host common.IRQHost, irq int) (*TTY, error) {
	ln, err := telnet.Listen(cfg.Addr)
	if err != nil {
		return nil, err
	}
	t := &TTY{
		host:      host,
		irq:       irq,
		mode:      cfg.Mode,
		threshold: cfg.Threshold,
		echo:      cfg.Echo,
		ln:        ln,
	}
	ln.Serve(t.handle)
	return t, nil
}

// handle runs on its own goroutine for the lifetime of one client
// connection (internal/telnet guarantees only one at a time).
func (t *TTY) handle(conn net.Conn) {
	t.mu.Lock()
	t.conn = conn
	t.scan = telnet.Scanner{}
	t.mu.Unlock()

	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			t.ingest(t.scan.Feed(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}

func (t *TTY) ingest(data []byte) {
	if len(data) == 0 {
		return
	}
	t.mu.Lock()
	raise := false
	for _, b := range data {
		if t.count < ringSize {
			t.ring[t.tail] = b
			t.tail = (t.tail + 1) % ringSize
			t.count++
		} else {
			slog.Warn("/TTY-W-OVERRUN")
		}
		switch t.mode {
		case IntrAny:
			raise = true
		case IntrESC:
			raise = raise || b == 0x1b
		case IntrCR:
			raise = raise || b == 0x0d
		case IntrThreshold:
			raise = raise || t.count >= t.threshold
		}
	}
	t.mu.Unlock()

	if t.echo == EchoLocal {
		t.writeRaw(data)
	}
	if raise {
		t.host.Assert(t.irq)
	}
}

func (t *TTY) writeRaw(data []byte) {
	t.outMu.Lock()
	defer t.outMu.Unlock()
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn != nil {
		conn.Write(data)
	}
}

// IO implements device.Device. TTY has no worker thread of its own:
// reads drain the ring buffer directly and writes go straight to the
// client connection, since neither blocks for a meaningful duration.
func (t *TTY) IO(data uint64, ctl int, transfer int) uint64 {
	switch transfer {
	case device.XferReadLow:
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.count == 0 {
			return 0
		}
		b := t.ring[t.head]
		t.head = (t.head + 1) % ringSize
		t.count--
		return uint64(b)

	case device.XferWriteLow:
		t.writeRaw([]byte{byte(data)})
		return 0

	case device.XferWriteCtl:
		if ctl == device.CtlClearDone {
			t.host.Release(t.irq)
		}
		return 0

	case device.XferStatus:
		t.mu.Lock()
		defer t.mu.Unlock()
		var v uint64
		if t.count > 0 {
			v |= device.StatusDone
		}
		return v

	default:
		return 0
	}
}

// Shutdown closes the telnet listener and any active client.
func (t *TTY) Shutdown() {
	t.ln.Stop()
}
