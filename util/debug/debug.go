/*
 * RV64 - Log debug data to a file
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
	"log/slog"
	"os"

	config "github.com/rcornwell/rv64emu/config/configparser"
	"github.com/rcornwell/rv64emu/util/logger"
)

// traceLogger sinks trace output through the same slog.Handler main.go
// builds for the run's primary log, instead of a bare *os.File: the
// trace file gets timestamped, leveled lines for free, and the
// formatting lives in one place.
var traceLogger *slog.Logger

var traceFileName string

// mirrorToStderr is always false: the trace stream is high-volume and
// belongs in the trace file only, never duplicated to the console.
var mirrorToStderr bool

// Debugf writes a trace line tagged with module when level is set in
// mask, e.g. debug.Debugf("CPU", cpu.debugMsk, debugTrap, "...").
func Debugf(module string, mask int, level int, format string, a ...interface{}) {
	if (mask&level) != 0 && traceLogger != nil {
		traceLogger.Debug(fmt.Sprintf(format, a...), "module", module)
	}
}

// register a device on initialize.
func init() {
	config.RegisterFile("DEBUGFILE", create)
}

// create opens the named file as the debug trace sink.
func create(_ uint16, fileName string, _ []config.Option) error {
	if traceLogger != nil {
		return fmt.Errorf("Can't have more then one debug file, previous: %s", traceFileName)
	}

	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("unable to create debug file: %s", fileName)
	}

	traceFileName = fileName
	traceLogger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}, &mirrorToStderr))
	return nil
}
