/*
   RV64 - Master control channel packet.

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

// Package master defines the control-plane message passed between the
// telnet/monitor front ends and the running core goroutine. Nothing in
// this package touches hart state directly; it only carries requests.
package master

import "net"

// Msg identifies the kind of request carried by a Packet.
type Msg int

const (
	TelConnect Msg = iota
	TelDisconnect
	TelReceive
	TimeClock
	IPLdevice
	Start
	Stop
)

// Packet is sent over the master channel owned by emu/core.core.
type Packet struct {
	DevNum uint16
	Msg    Msg
	Conn   net.Conn
	Data   []byte
}
