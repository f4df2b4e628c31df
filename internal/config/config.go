/*
 * IST-66 - Configuration file parser.
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

// Package config parses the machine's configuration file: one device
// model per line, keyed by a registry that models are registered into
// before the file is loaded, in the shape of the front panel's own
// number base (octal device addresses rather than hex).
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// NoDev marks an option with no device-number prefix.
const NoDev = -1

// Option is one comma-separated option attached to a model line,
// optionally carrying an "=value".
type Option struct {
	Name     string
	EqualOpt string
	Value    []string
}

type modelDef struct {
	create func(devNum int, value string, opts []Option) error
}

var models = map[string]modelDef{}

// RegisterModel registers a device model keyword (e.g. "PPT", "TTY",
// "IOCPU"); main.go's registerModels calls it for each built-in
// device before Load.
func RegisterModel(name string, create func(devNum int, value string, opts []Option) error) {
	models[strings.ToUpper(name)] = modelDef{create: create}
}

type optionLine struct {
	line string
	pos  int
	num  int
}

// Load reads and applies every model line in the named file.
func Load(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	lineNum := 0
	for {
		raw, err := reader.ReadString('\n')
		lineNum++
		if len(raw) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line := &optionLine{line: raw, num: lineNum}
		if parseErr := line.parse(); parseErr != nil {
			return parseErr
		}
	}
}

func (l *optionLine) parse() error {
	l.skipSpace()
	if l.isEOL() {
		return nil
	}

	name := l.word()
	if name == "" {
		return fmt.Errorf("config line %d: expected model name", l.num)
	}
	name = strings.ToUpper(name)

	model, ok := models[name]
	if !ok {
		return fmt.Errorf("config line %d: unknown model %s", l.num, name)
	}

	devNum := NoDev
	l.skipSpace()
	if !l.isEOL() && !isOptStart(l.line[l.pos]) {
		addrWord := l.word()
		n, err := strconv.ParseInt(addrWord, 8, 32)
		if err != nil {
			return fmt.Errorf("config line %d: bad device address %q", l.num, addrWord)
		}
		devNum = int(n)
	}

	opts, err := l.options()
	if err != nil {
		return err
	}

	return model.create(devNum, "", opts)
}

func isOptStart(b byte) bool {
	return unicode.IsLetter(rune(b))
}

func (l *optionLine) options() ([]Option, error) {
	var opts []Option
	for {
		l.skipSpace()
		if l.isEOL() {
			return opts, nil
		}
		name := l.word()
		if name == "" {
			return opts, nil
		}
		opt := Option{Name: name}
		if !l.isEOL() && l.line[l.pos] == '=' {
			l.pos++
			opt.EqualOpt = l.quotedOrBare()
		}
		l.skipSpace()
		for !l.isEOL() && l.line[l.pos] == ',' {
			l.pos++
			l.skipSpace()
			opt.Value = append(opt.Value, l.word())
			l.skipSpace()
		}
		opts = append(opts, opt)
	}
}

func (l *optionLine) quotedOrBare() string {
	if !l.isEOL() && l.line[l.pos] == '"' {
		l.pos++
		start := l.pos
		for !l.isEOL() && l.line[l.pos] != '"' {
			l.pos++
		}
		s := l.line[start:l.pos]
		if !l.isEOL() {
			l.pos++
		}
		return s
	}
	return l.word()
}

func (l *optionLine) word() string {
	start := l.pos
	for !l.isEOL() && !unicode.IsSpace(rune(l.line[l.pos])) && l.line[l.pos] != ',' && l.line[l.pos] != '=' {
		l.pos++
	}
	return l.line[start:l.pos]
}

func (l *optionLine) skipSpace() {
	for !l.isEOL() && unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
}

func (l *optionLine) isEOL() bool {
	if l.pos >= len(l.line) {
		return true
	}
	return l.line[l.pos] == '#'
}
