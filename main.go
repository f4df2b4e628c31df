/*
 * IST-66 - Main process.
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

package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"log/slog"

	"github.com/rdc700/ist66/command/parser"
	"github.com/rdc700/ist66/internal/config"
	"github.com/rdc700/ist66/internal/cpu"
	"github.com/rdc700/ist66/internal/debug"
	"github.com/rdc700/ist66/internal/devices/lpt"
	"github.com/rdc700/ist66/internal/devices/pch"
	"github.com/rdc700/ist66/internal/devices/ppt"
	"github.com/rdc700/ist66/internal/devices/tty"
	"github.com/rdc700/ist66/internal/iocpu"
	"github.com/rdc700/ist66/internal/logger"
)

// defaultMemWords is the memory size, in words, of the machine main
// creates; no config keyword changes it.
const defaultMemWords = 1 << 16

// Conventional interrupt levels for the built-in device models.
const (
	irqPPT = 1
	irqPCH = 2
	irqLPT = 3
	irqTTY = 4
	irqIOC = 5
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "ist66.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logFile *os.File
	if *optLogFile != "" {
		var err error
		logFile, err = os.Create(*optLogFile)
		if err != nil {
			slog.Error("/MAIN-E-LOGOPEN " + err.Error())
			os.Exit(1)
		}
		debug.SetFile(logFile)
	}
	slog.SetDefault(slog.New(logger.New(os.Stdout)))

	slog.Info("/MAIN-I-STARTED")

	if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
		slog.Error("/MAIN-E-NOCONFIG " + *optConfig)
		os.Exit(1)
	}

	c := cpu.New(defaultMemWords)
	io := iocpu.New(c.Mem, c.Intr, irqIOC)

	registerModels(c, io)

	if err := config.Load(*optConfig); err != nil {
		slog.Error("/MAIN-E-CONFIG " + err.Error())
		os.Exit(1)
	}

	c.Start(false)
	go io.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("/MAIN-I-QUITSIG")
		c.Stop()
		io.Stop()
		c.Devices.ShutdownAll()
		os.Exit(0)
	}()

	p := parser.New(parser.Machine{CPU: c}, os.Stdin, os.Stdout)
	p.Run()

	slog.Info("/MAIN-I-SHUTDOWN")
	c.Stop()
	io.Stop()
	c.Devices.ShutdownAll()
}

// registerModels wires the built-in device keywords into the config
// parser, closing over this process's single CPU/IOCPU instances (a
// multi-CPU configuration would call this once per CPU with distinct
// closures instead).
func registerModels(c *cpu.CPU, io *iocpu.IOCPU) {
	config.RegisterModel("PPT", func(devNum int, _ string, opts []config.Option) error {
		path := optValue(opts, "file")
		dev, err := ppt.New(path, c.Intr, irqPPT)
		if err != nil {
			return err
		}
		c.Devices.Attach(devNum, dev)
		return nil
	})

	config.RegisterModel("PCH", func(devNum int, _ string, opts []config.Option) error {
		path := optValue(opts, "file")
		dev, err := pch.New(path, c.Intr, irqPCH)
		if err != nil {
			return err
		}
		c.Devices.Attach(devNum, dev)
		return nil
	})

	config.RegisterModel("LPT", func(devNum int, _ string, opts []config.Option) error {
		path := optValue(opts, "file")
		dev, err := lpt.New(path, c.Intr, irqLPT)
		if err != nil {
			return err
		}
		c.Devices.Attach(devNum, dev)
		return nil
	})

	config.RegisterModel("TTY", func(devNum int, _ string, opts []config.Option) error {
		cfg := tty.Config{
			Addr: optValue(opts, "addr"),
			Mode: parseMode(optValue(opts, "mode")),
			Echo: tty.EchoNone,
		}
		if cfg.Addr == "" {
			cfg.Addr = ":2323"
		}
		if th := optValue(opts, "threshold"); th != "" {
			if v, err := strconv.Atoi(th); err == nil {
				cfg.Threshold = v
			}
		}
		if optValue(opts, "echo") == "local" {
			cfg.Echo = tty.EchoLocal
		}
		dev, err := tty.New(cfg, c.Intr, irqTTY)
		if err != nil {
			return err
		}
		c.Devices.Attach(devNum, dev)
		return nil
	})

	config.RegisterModel("IOCPU", func(_ int, _ string, _ []config.Option) error {
		_ = io // the IOCPU instance already exists; this keyword only
		// acknowledges its presence in the config file.
		return nil
	})
}

func parseMode(s string) tty.InterruptMode {
	switch s {
	case "esc":
		return tty.IntrESC
	case "cr":
		return tty.IntrCR
	case "threshold":
		return tty.IntrThreshold
	default:
		return tty.IntrAny
	}
}

func optValue(opts []config.Option, name string) string {
	for _, o := range opts {
		if o.Name == name {
			return o.EqualOpt
		}
	}
	return ""
}
