/*
 * IST-66 - Bitmask-gated debug logging to a file.
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

package debug

import (
	"fmt"
	"os"
	"strconv"
)

// Mask bits, one per subsystem, ORed together into the mask argument
// of Debugf/DebugDevf.
const (
	CPU = 1 << iota
	Memory
	Intr
	Device
	Telnet
	IOCPU
)

var logFile *os.File

// SetFile directs all Debugf/DebugDevf output at file, replacing any
// previous target.
func SetFile(file *os.File) {
	logFile = file
}

// Debugf writes a module-tagged line if mask&level is nonzero.
func Debugf(module string, mask int, level int, format string, a ...interface{}) {
	if logFile == nil || mask&level == 0 {
		return
	}
	fmt.Fprintf(logFile, module+": "+format+"\n", a...)
}

// DebugDevf writes a device-tagged line, device number in octal to
// match the front-panel REPL's number base.
func DebugDevf(devNum int, mask int, level int, format string, a ...interface{}) {
	if logFile == nil || mask&level == 0 {
		return
	}
	dev := strconv.FormatInt(int64(devNum), 8)
	fmt.Fprintf(logFile, "DEV "+dev+": "+format+"\n", a...)
}
