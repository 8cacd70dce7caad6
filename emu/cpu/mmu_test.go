/*
   RV64 CPU test cases: Sv39 translation.

   Copyright 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a copy
   of this software and associated documentation files (the "Software"), to deal
   in the Software without restriction, including without limitation the rights
   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
   copies of the Software, and to permit persons to whom the Software is
   furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
   SOFTWARE.

*/

package cpu

import (
	"testing"

	"github.com/rcornwell/rv64emu/emu/csr"
)

const sv39Mode uint64 = 8 << 60

// enableSv39 points satp at root (a page-table page already zeroed by
// DRAM's allocation) and switches to Supervisor so translate stops
// short-circuiting on Machine mode.
func enableSv39(root uint64) {
	sysCPU.mode = Supervisor
	sysCPU.csr.Write(csr.Satp, sv39Mode|(root>>12))
}

// TestMMUIdentityRoundTrip covers the gigapage (i=2) case: a leaf
// found at the root level, identity-mapped, translates va to itself.
func TestMMUIdentityRoundTrip(t *testing.T) {
	setup()
	const root = dramBase
	enableSv39(root)

	va := uint64(dramBase + 0x2000)
	vpn2 := (va >> 30) & 0x1ff
	ptePPN := (va >> 30) << 18 // identity: frame base aligned to this gigapage
	pte := ptePPN<<10 | pteV | pteR | pteW | pteX | pteA | pteD
	sysCPU.bus.Store(root+vpn2*8, 64, pte)

	pa, ok := sysCPU.translate(va, accessLoad)
	if !ok {
		t.Fatalf("translate faulted unexpectedly, exc.kind=%#x", sysCPU.exc.kind)
	}
	if pa != va {
		t.Errorf("identity translate got %#x wanted %#x", pa, va)
	}
}

// TestMMUMegapageMisalignedPageFault covers a two-level walk ending in
// a megapage (i=1) leaf whose pte.ppn[0] is nonzero: a misaligned
// superpage, which must fault rather than silently truncate the
// address.
func TestMMUMegapageMisalignedPageFault(t *testing.T) {
	setup()
	const root = dramBase
	const table1 = dramBase + 0x1000
	enableSv39(root)

	va := uint64(dramBase + 0x200000)
	vpn2 := (va >> 30) & 0x1ff
	vpn1 := (va >> 21) & 0x1ff

	rootPTE := (table1>>12)<<10 | pteV // non-leaf: points at table1
	sysCPU.bus.Store(root+vpn2*8, 64, rootPTE)

	const misalignedPPN = uint64(1) // ppn[0] nonzero is the defect under test
	leafPTE := misalignedPPN<<10 | pteV | pteR | pteW | pteX | pteA | pteD
	sysCPU.bus.Store(table1+vpn1*8, 64, leafPTE)

	_, ok := sysCPU.translate(va, accessLoad)
	if ok {
		t.Fatal("misaligned megapage translated successfully, wanted LoadPageFault")
	}
	if got, want := sysCPU.exc.kind, LoadPageFault; got != want {
		t.Errorf("misaligned megapage exc.kind got %#x wanted %#x", got, want)
	}
	if got, want := sysCPU.exc.value, va; got != want {
		t.Errorf("misaligned megapage stval got %#x wanted %#x", got, want)
	}
}
