/*
   CPU: debug trace options.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package cpu

import (
	"errors"
	"strings"

	config "github.com/rcornwell/rv64emu/config/configparser"
	"github.com/rcornwell/rv64emu/util/debug"
)

const (
	// Debug options.
	debugTrap   = 1 << iota // Log trap/interrupt delivery.
	debugDecode             // Log illegal/unimplemented decode.
	debugMMU                // Log Sv39 page walks.
)

var debugOption = map[string]int{
	"TRAP":   debugTrap,
	"DECODE": debugDecode,
	"MMU":    debugMMU,
}

var debugMsk int

func init() {
	config.RegisterOption("DEBUG", setDebug)
}

// setDebug parses a comma separated list of debug options, e.g.
// "DEBUG TRAP,MMU", and ORs the matching flags into debugMsk.
func setDebug(_ uint16, value string, _ []config.Option) error {
	for _, opt := range strings.Split(strings.ToUpper(value), ",") {
		flag, ok := debugOption[opt]
		if !ok {
			return errors.New("cpu debug option invalid: " + opt)
		}
		debugMsk |= flag
	}
	return nil
}

func debugf(level int, format string, a ...interface{}) {
	debug.Debugf("CPU", debugMsk, level, format, a...)
}
