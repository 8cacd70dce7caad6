/*
 * RV64 - Main process.
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
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"
	reader "github.com/rcornwell/rv64emu/command/reader"
	config "github.com/rcornwell/rv64emu/config/configparser"
	core "github.com/rcornwell/rv64emu/emu/core"
	master "github.com/rcornwell/rv64emu/emu/master"
	telnet "github.com/rcornwell/rv64emu/telnet"
	logger "github.com/rcornwell/rv64emu/util/logger"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "rv64.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if optLogFile != nil {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, new(bool)))
	slog.SetDefault(Logger)

	Logger.Info("RV64 emulator started")
	if optConfig == nil {
		Logger.Error("Please specify a configuration file")
		os.Exit(0)
	}

	_, err := os.Stat(*optConfig)
	if os.IsNotExist(err) {
		Logger.Error("Configuration file ", *optConfig, " can't be found")
		os.Exit(0)
	}

	err = config.LoadConfigFile(*optConfig)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(0)
	}

	masterChannel := make(chan master.Packet)

	// Create new routine to run CPU.
	cpu := core.NewCPU(masterChannel)

	// Start telnet servers.
	err = telnet.Start(masterChannel)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	// Start main emulator.
	go cpu.Start()

	// Wait for a SIGINT or SIGTERM signal to gracefully shut down the server
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	quit := make(chan struct{})
	go func() {
		reader.ConsoleReader(masterChannel)
		close(quit)
	}()

	select {
	case <-sigChan:
		fmt.Println("Got quit signal")
	case <-quit:
		fmt.Println("Monitor exited")
	}

	Logger.Info("Shutting down CPU")
	cpu.Stop()
	Logger.Info("Shutting down server...")
	telnet.Stop()
	Logger.Info("Servers stopped.")
}
