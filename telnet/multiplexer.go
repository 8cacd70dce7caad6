/*
 * RV64 - telnet server, console registration and routing.
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

package telnet

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	config "github.com/rcornwell/rv64emu/config/configparser"
	"github.com/rcornwell/rv64emu/emu/master"
)

// The teacher's per-device terminal registry matched an incoming telnet
// session against one of many S/370 unit-record/3270 devices by device
// number, model and group. This emulator exposes exactly one console
// (the UART), so there is nothing to match against: a connection either
// finds the console free or doesn't.
var (
	consoleLock sync.Mutex
	consoleBusy bool
)

// ports holds every port the configuration asked the server to listen
// on; listener.go starts one Server per entry.
var ports = map[string]bool{}

var defaultPort string

// SendConnect claims the console for this session, returning false if
// another client already holds it.
func (state *tnState) SendConnect() bool {
	consoleLock.Lock()
	if consoleBusy {
		consoleLock.Unlock()
		return false
	}
	consoleBusy = true
	consoleLock.Unlock()

	state.master <- master.Packet{Msg: master.TelConnect, Conn: state.conn}
	return true
}

// SendDisconnect releases the console and tells the core it's gone.
func (state *tnState) SendDisconnect() {
	state.master <- master.Packet{Msg: master.TelDisconnect}
	consoleLock.Lock()
	consoleBusy = false
	consoleLock.Unlock()
	fmt.Println("Console disconnected")
}

// SendReceiveChar forwards bytes typed at the console to the core.
func (state *tnState) SendReceiveChar(data []byte) {
	state.master <- master.Packet{Msg: master.TelReceive, Data: data}
}

// registerPort records a listening port, ignoring duplicates.
func registerPort(port string) {
	if !ports[port] {
		fmt.Printf("Registering port: %s\n", port)
		ports[port] = true
	}
}

// register the PORT configuration directive on initialize.
func init() {
	config.RegisterModel("PORT", config.TypeOptions, setPort)
}

// setPort handles "PORT nnnn" in the configuration file.
func setPort(_ uint16, port string, options []config.Option) error {
	_, err := strconv.ParseUint(port, 10, 32)
	if err != nil {
		return fmt.Errorf("port requires number: %s", port)
	}
	if len(options) != 0 {
		return errors.New("port does not take options")
	}
	registerPort(port)
	if defaultPort != "" {
		return errors.New("can't have more than one default port")
	}
	defaultPort = port
	return nil
}
