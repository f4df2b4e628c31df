package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rdc700/ist66/internal/cpu"
)

func newTestParser(script string) (*Parser, *bytes.Buffer, *cpu.CPU) {
	c := cpu.New(256)
	out := &bytes.Buffer{}
	p := New(Machine{CPU: c}, strings.NewReader(script), out)
	return p, out, c
}

func TestSetAndPrintPointer(t *testing.T) {
	p, out, _ := newTestParser("/144\n?\nX\n")
	p.Run()
	assert.Contains(t, out.String(), "00000000144\n")
}

func TestDepositThenDump(t *testing.T) {
	p, out, c := newTestParser("/10\n=12 34\nX\n")
	p.Run()

	assert.Equal(t, uint64(012), uint64(c.Mem.Read(0, 010).Data()))
	assert.Equal(t, uint64(034), uint64(c.Mem.Read(0, 011).Data()))

	p2, out2, c2 := newTestParser("")
	c2.Mem.Write(0, 010, 012)
	c2.Mem.Write(0, 011, 034)
	p2.pointer = 010
	p2.dump("2")
	assert.Contains(t, out2.String(), "000000000012")
	assert.Contains(t, out2.String(), "000000000034")
	_ = out
}

func TestUnrecognizedCommandReportsError(t *testing.T) {
	p, out, _ := newTestParser("Q\nX\n")
	p.Run()
	assert.Contains(t, out.String(), "? unrecognized command")
}

func TestExitStopsRun(t *testing.T) {
	p, _, _ := newTestParser("X\n")
	done := make(chan struct{})
	go func() {
		p.Run()
		close(done)
	}()
	<-done
}

func TestBadOctalReportsError(t *testing.T) {
	p, out, _ := newTestParser("/xyz\nX\n")
	p.Run()
	assert.Contains(t, out.String(), "? bad address")
}
