/*
 * IST-66 - Minimal telnet negotiation and single-client listener.
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

// Package telnet implements the minimal negotiation a TTY device
// needs: one concurrent client, IAC WILL ECHO / IAC WILL SUPPRESS-GO-
// AHEAD on connect, IAC IAC as literal 0xFF, IAC SB...IAC SE discarded
// whole, and any other two-byte IAC <cmd> discarded. No further option
// negotiation is attempted or honored.
package telnet

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
)

const (
	iac  byte = 255
	will byte = 251
	sb   byte = 250
	se   byte = 240

	optEcho byte = 1
	optSGA  byte = 3
)

// greeting is emitted on accept: IAC WILL ECHO, IAC WILL SGA.
var greeting = []byte{iac, will, optEcho, iac, will, optSGA}

// scanState steps through the minimal subset of the telnet protocol
// this server understands.
type scanState int

const (
	scanData scanState = iota
	scanIAC
	scanCmd // a 2-byte IAC <cmd> to discard
	scanSB  // inside a subnegotiation, discarding until IAC SE
	scanSBIAC
)

// Scanner strips telnet control sequences out of a byte stream,
// carrying state across Feed calls so a sequence split across two
// reads still decodes correctly.
type Scanner struct {
	state scanState
}

// Feed processes in and returns the plain data bytes it contains.
func (s *Scanner) Feed(in []byte) []byte {
	out := make([]byte, 0, len(in))
	for _, b := range in {
		switch s.state {
		case scanData:
			if b == iac {
				s.state = scanIAC
			} else {
				out = append(out, b)
			}
		case scanIAC:
			switch b {
			case iac:
				out = append(out, iac)
				s.state = scanData
			case sb:
				s.state = scanSB
			default:
				s.state = scanCmd
			}
		case scanCmd:
			s.state = scanData
		case scanSB:
			if b == iac {
				s.state = scanSBIAC
			}
		case scanSBIAC:
			if b == se {
				s.state = scanData
			} else {
				s.state = scanSB
			}
		}
	}
	return out
}

// Listener accepts at most one concurrent client on a TCP port,
// rejecting any additional connection attempt with a BUSY line.
type Listener struct {
	ln       net.Listener
	shutdown chan struct{}
	wg       sync.WaitGroup

	mu     sync.Mutex
	client net.Conn
}

// Listen opens a TCP listener on addr (host:port or :port).
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("telnet: listen %s: %w", addr, err)
	}
	return &Listener{ln: ln, shutdown: make(chan struct{})}, nil
}

// Serve accepts connections until Stop is called, invoking handle
// for each accepted (and greeted) client on its own goroutine. handle
// owns conn until it returns, at which point the listener becomes
// available for a new client.
func (l *Listener) Serve(handle func(conn net.Conn)) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			conn, err := l.ln.Accept()
			if err != nil {
				select {
				case <-l.shutdown:
					return
				default:
					continue
				}
			}

			l.mu.Lock()
			if l.client != nil {
				l.mu.Unlock()
				fmt.Fprintf(conn, "BUSY\r\n")
				conn.Close()
				continue
			}
			l.client = conn
			l.mu.Unlock()

			if _, err := conn.Write(greeting); err != nil {
				slog.Error("/TEL-E-GREETING " + err.Error())
			}

			l.wg.Add(1)
			go func() {
				defer l.wg.Done()
				defer l.release(conn)
				handle(conn)
			}()
		}
	}()
}

func (l *Listener) release(conn net.Conn) {
	l.mu.Lock()
	if l.client == conn {
		l.client = nil
	}
	l.mu.Unlock()
	conn.Close()
}

// Stop closes the listener and any active client connection and
// waits for the accept loop and active handler to return.
func (l *Listener) Stop() {
	close(l.shutdown)
	l.ln.Close()
	l.mu.Lock()
	if l.client != nil {
		l.client.Close()
	}
	l.mu.Unlock()
	l.wg.Wait()
}
