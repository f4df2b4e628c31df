/*
 * IST-66 - Main storage and protection key unit.
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

// Package memory implements the 36-bit word store and its per-page
// 8-bit storage-key protection, as described by the Memory & Key Unit.
package memory

const (
	// WordMask covers the 36 data bits of a machine word.
	WordMask Word = 0xfffffffff

	// CarryBit is bit 36, set on a memory-unit fault (MEM_FAULT) and
	// reused by the ALU/CPU as the carry-out flag of a compute result.
	CarryBit Word = 1 << 36

	// SkipBit is bit 37, set on a memory-unit key fault (KEY_FAULT) and
	// reused by the ALU/CPU as the skip flag of a compute result.
	SkipBit Word = 1 << 37

	// MemFault is the sentinel returned when an address is out of range.
	MemFault Word = CarryBit

	// KeyFault is the sentinel returned when the requester's key does
	// not satisfy the accessed page's protection key.
	KeyFault Word = SkipBit

	// PageWords is the number of 36-bit words per protection-key page.
	PageWords = 512
)

// Word is a 36-bit machine word carried in a 64-bit container. Bit 36
// carries carry/overflow or MEM_FAULT, bit 37 carries skip or
// KEY_FAULT.
type Word uint64

// Fault reports whether w is a fault sentinel rather than a data word.
func (w Word) Fault() bool {
	return w&(CarryBit|SkipBit) != 0
}

// IsMemFault reports whether w is specifically a MEM_FAULT sentinel.
func (w Word) IsMemFault() bool {
	return w&CarryBit != 0
}

// IsKeyFault reports whether w is specifically a KEY_FAULT sentinel.
func (w Word) IsKeyFault() bool {
	return w&SkipBit != 0
}

// Data masks w down to its 36 low-order data bits. Every observable
// word value read from memory has bits 36..63 cleared this way.
func (w Word) Data() Word {
	return w & WordMask
}

// Reserved storage-key values.
const (
	KeySupervisor uint8 = 0x00 // requires requester key == 0
	KeyPublicRO   uint8 = 0xfe // public read, supervisor write
	KeyPublicRW   uint8 = 0xff // public read/write
)

// Memory is a fixed-size array of 36-bit words with an 8-bit
// protection key per 512-word page. It has no internal locking: the
// CPU (and, for its memory window, the IOCPU) own all writes, and
// reads from other goroutines are only well-defined while the owning
// CPU is halted.
type Memory struct {
	words []Word
	keys  []uint8
}

// New allocates a memory unit of size words, each initialized to 0,
// with every page's key initialized to KeyPublicRW so a freshly booted
// machine with no STK calls yet can still read/write its own bootstrap.
func New(size uint32) *Memory {
	m := &Memory{
		words: make([]Word, size),
		keys:  make([]uint8, (size+PageWords-1)/PageWords+1),
	}
	for i := range m.keys {
		m.keys[i] = KeyPublicRW
	}
	return m
}

// Size returns the number of addressable words.
func (m *Memory) Size() uint32 {
	return uint32(len(m.words))
}

func (m *Memory) page(addr uint32) uint8 {
	p := addr / PageWords
	if int(p) >= len(m.keys) {
		return KeyPublicRW
	}
	return m.keys[p]
}

// keyOK reports whether a requester holding reqKey may access a page
// whose protection key is pageKey.
func keyOK(reqKey, pageKey uint8, write bool) bool {
	if reqKey == 0 {
		return true
	}
	if reqKey == pageKey {
		return true
	}
	if pageKey == KeyPublicRW {
		return true
	}
	if pageKey == KeyPublicRO && !write {
		return true
	}
	return false
}

// Read fetches the word at addr on behalf of a requester holding
// reqKey. It returns MemFault if addr is out of range, KeyFault if the
// requester's key does not satisfy the page's key, or the 36-bit data
// word (with bits 36..63 clear) otherwise.
func (m *Memory) Read(reqKey uint8, addr uint32) Word {
	if addr >= m.Size() {
		return MemFault
	}
	if !keyOK(reqKey, m.page(addr), false) {
		return KeyFault
	}
	return m.words[addr].Data()
}

// Write stores data (low 36 bits only) at addr on behalf of a
// requester holding reqKey. It returns MemFault or KeyFault as Read
// does, or 0 on success.
func (m *Memory) Write(reqKey uint8, addr uint32, data Word) Word {
	if addr >= m.Size() {
		return MemFault
	}
	if !keyOK(reqKey, m.page(addr), true) {
		return KeyFault
	}
	m.words[addr] = data.Data()
	return 0
}

// SetKey stores the 8-bit protection key for the page containing addr.
// Caller discipline: the CPU only invokes this with requester key 0,
// enforced by the STK opcode's supervisor gate, not by this function.
func (m *Memory) SetKey(addr uint32, key uint8) {
	p := addr / PageWords
	if int(p) < len(m.keys) {
		m.keys[p] = key
	}
}

// Key returns the protection key of the page containing addr.
func (m *Memory) Key(addr uint32) uint8 {
	return m.page(addr)
}
