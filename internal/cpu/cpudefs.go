/*
 * IST-66 - CPU register layout and instruction field constants.
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

// Conventional accumulator roles.
const (
	RegLink  = 12 // A12: link register for JSR
	RegStack = 13 // A13: stack pointer for auto-inc/dec and call/ret
)

// PSW (C0) field layout.
const (
	pswPCMask   = 0x7ffffff // bits 0..26
	pswCarryBit = 1 << 27
	pswKeyShift = 28
	pswKeyMask  = 0xff << pswKeyShift // bits 28..35
)

// CW (C1) field layout.
const (
	cwDirectPageMask = 0x3ffff // bits 0..17
	cwExceptShift    = 24
	cwExceptMask     = 0xf << cwExceptShift // bits 24..27
	cwPrevIRQLShift  = 28
	cwPrevIRQLMask   = 0xf << cwPrevIRQLShift // bits 28..31
	cwCurIRQLShift   = 32
	cwCurIRQLMask    = 0xf << cwCurIRQLShift // bits 32..35
)

// Memory-reference word field layout.
const (
	mrFuncShift  = 23
	mrFuncMask   = 0xf << mrFuncShift
	mrIndirect   = 1 << 22
	mrIndexShift = 18
	mrIndexMask  = 0xf << mrIndexShift
	mrDispMask   = 0x3ffff // bits 0..17, signed 18-bit
	mrDispSign   = 1 << 17
)

// Two-level indirect word layout.
const (
	indModeShift = 33
	indModeMask  = 0x3 << indModeShift
	indIncShift  = 27
	indIncMask   = 0x3f << indIncShift // signed 6-bit
	indIncSign   = 1 << 5
	indBaseMask  = 0x7ffffff // bits 0..26
)

// MR function subfields.
const (
	mrJMP = 0
	mrJSR = 1
	mrISZ = 2
	mrDSZ = 3
)

// AM instruction word shares comp_mr's indirect/index/disp fields
// (bits 0..22) with the MR class; bits 23..26 carry the accumulator
// register selector in place of MR's function field.
const (
	amRegShift = mrFuncShift
	amRegMask  = mrFuncMask
)

// AM opcodes, as the 9-bit top-field value.
const (
	amEDT = 001
	amESK = 002
	amLAD = 003
	amISE = 005
	amDSE = 006
	amLAS = 007
	amLCO = 010
	amLNG = 011
	amLAC = 012
	amDAC = 013
	amADC = 014
	amSUB = 015
	amADD = 016
	amAND = 017
	amIOR = 022
	amXOR = 026
)

// Top-9-bit class boundaries.
const (
	classMR      = 0000
	classAMLo    = 001
	classAMHi    = 027
	classMulDiv  = 030
	classCallMsk = 0100
	classIO      = 0670
)

// AA instruction field layout, from the MSB side of
// the 36-bit word.
const (
	aaOpShift   = 32
	aaOpMask    = 0xf << aaOpShift
	aaRCBit     = 1 << 31
	aaSrcShift  = 27
	aaSrcMask   = 0xf << aaSrcShift
	aaDstShift  = 23
	aaDstMask   = 0xf << aaDstShift
	aaFuncShift = 20
	aaFuncMask  = 0x7 << aaFuncShift
	aaCIShift   = 18
	aaCIMask    = 0x3 << aaCIShift
	aaCondShift = 15
	aaCondMask  = 0x7 << aaCondShift
	aaNLBit     = 1 << 14
	aaMaskShift = 7
	aaMaskMask  = 0x7f << aaMaskShift // signed 7-bit
	aaMaskSign  = 1 << 6
	aaRotMask   = 0x7f // signed 7-bit
	aaRotSign   = 1 << 6
)

// Multiply/divide functions, sharing the same
// function-field position as MR and AM.
const (
	mdFuncShift = mrFuncShift
	mdFuncMask  = 0x3 << mdFuncShift

	mdMPY = 0
	mdMPA = 1
	mdMNA = 2
	mdDIV = 3
)

// Call/return-with-mask function, sharing the same
// function-field position as MR and AM.
const (
	crFuncShift = mrFuncShift
	crFuncMask  = 0x1 << crFuncShift

	crCLM = 0
	crRTM = 1
)

// I/O instruction field layout. These live in bits
// 0..21, below the 9-bit class field (bits 27..35) that selects 0670;
// bits 22..26 are unused.
const (
	ioDstShift  = 18
	ioDstMask   = 0xf << ioDstShift
	ioCtlShift  = 16
	ioCtlMask   = 0x3 << ioCtlShift
	ioXferShift = 12
	ioXferMask  = 0xf << ioXferShift
	ioDevMask   = 0xfff
)

// Supervisor/misc subopcodes: top 6 bits = 06
// (checked by the caller), next 6 bits (word bits 24..29) select the
// suboperation: 0600 HLT, 0601 INT, 0602 RFI family, 0603 LDK, 0604
// STK, 0605 LCT, 0606 STCTL.
const (
	smiSubopShift = 24
	smiSubopMask  = 0x3f << smiSubopShift

	smiHLT   = 0
	smiINT   = 1
	smiRFI   = 2 // subcode (bits 22..23) selects RFI/RMSK/LDMSK/STMSK
	smiLDK   = 3
	smiSTK   = 4
	smiLCT   = 5
	smiSTCTL = 6
)

const (
	smiRFICodeShift = 22
	smiRFICodeMask  = 0x3 << smiRFICodeShift

	smiRFIReturn = 0
	smiRFIRMask  = 1
	smiRFILdMask = 2
	smiRFIStMask = 3
)

const wordBits = 36
const wordMask36 = (uint64(1) << wordBits) - 1
