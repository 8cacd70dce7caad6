/*
   RV64 - 16550-subset UART, console device.

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

package bus

import (
	"io"
	"net"
	"os"

	"golang.org/x/term"
)

// UART register offsets (16550 subset: no FIFO/baud-divisor support,
// just the data and line-status registers a boot loader console
// needs).
const (
	uartRHR = 0 // receiver holding register (read)
	uartTHR = 0 // transmitter holding register (write)
	uartLSR = 5 // line status register (read)

	lsrRxReady uint64 = 1 << 0
	lsrTxIdle  uint64 = 1 << 5
)

// UART is the guest console. When stdin is a terminal it is put into
// raw mode so the guest sees keystrokes byte-for-byte; otherwise input
// falls back to buffered reads, and an EOF is simply never-ready
// rather than an error.
type UART struct {
	in       io.Reader
	out      io.Writer
	raw      bool
	rawFD    int
	conn     net.Conn
	rxPend   []byte
	irqLevel bool
}

// NewUART wires the guest console to the host's stdin/stdout, raw if
// stdin is an interactive terminal.
func NewUART() *UART {
	u := &UART{in: os.Stdin, out: os.Stdout}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		if _, err := term.MakeRaw(fd); err == nil {
			u.raw = true
			u.rawFD = fd
		}
	}
	return u
}

// Restore puts the host terminal back to cooked mode. Called at
// shutdown, mirroring the raw-mode teardown the terminal examples in
// the pack perform.
func (u *UART) Restore() {
	if u.raw {
		state, err := term.GetState(u.rawFD)
		if err == nil {
			_ = term.Restore(u.rawFD, state)
		}
	}
}

func (u *UART) poll() {
	if u.conn != nil {
		return
	}
	if len(u.rxPend) > 0 {
		return
	}
	buf := make([]byte, 1)
	n, err := u.in.Read(buf)
	if err == nil && n == 1 {
		u.rxPend = buf
		u.irqLevel = true
	}
}

// Attach switches the console from the host terminal to a telnet
// connection: output goes to conn instead of stdout, and input only
// arrives via Feed (the telnet reader owns conn's read side).
func (u *UART) Attach(conn net.Conn) {
	u.conn = conn
	u.out = conn
}

// Detach reverts the console to the host terminal after a telnet
// client disconnects.
func (u *UART) Detach() {
	u.conn = nil
	u.out = os.Stdout
	u.rxPend = nil
	u.irqLevel = false
}

// Feed queues bytes received over an attached telnet connection for
// the guest to read out of RHR.
func (u *UART) Feed(data []byte) {
	if len(data) == 0 {
		return
	}
	u.rxPend = append(u.rxPend, data...)
	u.irqLevel = true
}

func (u *UART) Load(addr uint64, size int) (uint64, bool) {
	if size != 8 {
		return 0, false
	}
	u.poll()
	switch addr {
	case uartRHR:
		if len(u.rxPend) == 0 {
			return 0, true
		}
		b := u.rxPend[0]
		u.rxPend = u.rxPend[1:]
		u.irqLevel = len(u.rxPend) > 0
		return uint64(b), true
	case uartLSR:
		status := lsrTxIdle
		if len(u.rxPend) > 0 {
			status |= lsrRxReady
		}
		return status, true
	default:
		return 0, true
	}
}

func (u *UART) Store(addr uint64, size int, value uint64) bool {
	if size != 8 {
		return false
	}
	switch addr {
	case uartTHR:
		_, _ = u.out.Write([]byte{byte(value)})
		return true
	default:
		return true
	}
}

// Tick polls for available input so a guest spinning on LSR sees new
// bytes without an explicit read forcing it.
func (u *UART) Tick() {
	u.poll()
}

// IRQPending reports the receiver-ready interrupt level for the PLIC.
func (u *UART) IRQPending() bool {
	return u.irqLevel
}
