/*
 * IST-66 - Front panel command parser.
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

// Package parser implements the front panel's line-oriented command
// grammar: set/print pointer, dump, deposit, run/start/pause, and set
// PC and go. All numbers are octal; error lines begin with "? ".
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rdc700/ist66/internal/cpu"
	"github.com/rdc700/ist66/internal/memory"
)

// Machine is the narrow capability the parser needs from a CPU.
type Machine struct {
	CPU *cpu.CPU
}

// Parser holds the front panel's address pointer and I/O streams.
type Parser struct {
	m       Machine
	in      *bufio.Reader
	out     io.Writer
	pointer uint32
}

// New returns a parser reading commands from in and writing output
// (including "? " error lines) to out.
func New(m Machine, in io.Reader, out io.Writer) *Parser {
	return &Parser{m: m, in: bufio.NewReader(in), out: out}
}

// Run processes lines from in until an X command or EOF.
func (p *Parser) Run() {
	for {
		line, err := p.in.ReadString('\n')
		if line == "" && err != nil {
			return
		}
		if p.dispatch(strings.TrimRight(line, "\r\n")) {
			return
		}
	}
}

// dispatch handles one command line, returning true when the parser
// should stop (the X command).
func (p *Parser) dispatch(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	switch line[0] {
	case '/':
		p.setPointer(line[1:])
	case '?':
		fmt.Fprintf(p.out, "%011o\n", p.pointer)
	case '.':
		p.dump(strings.TrimSpace(line[1:]))
	case '=':
		p.deposit(strings.TrimSpace(line[1:]))
	case 'W':
		p.m.CPU.Start(false)
		p.m.CPU.WaitHalted()
		p.in.ReadString('\n')
	case 'S':
		p.m.CPU.Start(false)
	case 'P':
		p.m.CPU.Stop()
		p.pointer = p.m.CPU.PC()
	case 'G':
		p.goCmd(line)
	case 'X':
		return true
	default:
		fmt.Fprintf(p.out, "? unrecognized command\n")
	}
	return false
}

func (p *Parser) goCmd(line string) {
	p.m.CPU.SetPC(p.pointer)
	switch strings.TrimSpace(line) {
	case "GW":
		p.m.CPU.Start(false)
		p.m.CPU.WaitHalted()
	case "GS", "G":
		p.m.CPU.Start(false)
	default:
		fmt.Fprintf(p.out, "? unrecognized command\n")
	}
}

func (p *Parser) setPointer(arg string) {
	v, err := strconv.ParseUint(strings.TrimSpace(arg), 8, 32)
	if err != nil {
		fmt.Fprintf(p.out, "? bad address %q\n", arg)
		return
	}
	p.pointer = uint32(v)
}

func (p *Parser) dump(arg string) {
	count := uint32(1)
	if arg != "" {
		v, err := strconv.ParseUint(arg, 8, 32)
		if err != nil {
			fmt.Fprintf(p.out, "? bad count %q\n", arg)
			return
		}
		count = uint32(v)
	}

	const perLine = 4
	for i := uint32(0); i < count; i++ {
		if i%perLine == 0 {
			if i > 0 {
				fmt.Fprintln(p.out)
			}
			fmt.Fprintf(p.out, "%011o:", p.pointer+i)
		}
		w := p.m.CPU.Mem.Read(0, p.pointer+i)
		fmt.Fprintf(p.out, " %012o", uint64(w.Data()))
	}
	fmt.Fprintln(p.out)
	p.pointer += count
}

func (p *Parser) deposit(arg string) {
	for _, field := range strings.Fields(arg) {
		v, err := strconv.ParseUint(field, 8, 64)
		if err != nil {
			fmt.Fprintf(p.out, "? bad word %q\n", field)
			return
		}
		res := p.m.CPU.Mem.Write(0, p.pointer, memory.Word(v))
		if res.Fault() {
			fmt.Fprintf(p.out, "? fault depositing at %011o\n", p.pointer)
			return
		}
		p.pointer++
	}
}
