package f439

import (
	"github.com/gokrazy/mkf439/blockstore"
)

// Allocator hands out blocks from the free list threaded through the FAT.
// The list head lives in the super block's avail field, so the Allocator
// keeps no state of its own besides the geometry.
type Allocator struct {
	store *blockstore.Store
	geo   Geometry
}

func newAllocator(store *blockstore.Store, geo Geometry) *Allocator {
	return &Allocator{store: store, geo: geo}
}

// init links every block in [LastAvail, NBlocks-1] into a descending free
// list and points avail at its highest block.
func (a *Allocator) init() {
	avail := a.geo.NBlocks - 1
	if a.geo.NBlocks == 0 || avail < a.geo.LastAvail {
		// Nothing but metadata fits; the first Allocate must fail rather
		// than hand out a FAT block.
		a.setAvail(0)
		return
	}
	a.setAvail(avail)
	for i := avail; i > a.geo.LastAvail; i-- {
		a.setNext(i, i-1)
	}
	a.setNext(a.geo.LastAvail, 0)
}

// Avail returns the current head of the free list, 0 if it is empty.
func (a *Allocator) Avail() uint32 {
	return a.store.Uint32(superAvailOffset)
}

func (a *Allocator) setAvail(idx uint32) {
	a.store.PutUint32(superAvailOffset, idx)
}

// Next returns the FAT entry of block idx: the next free block if idx is
// free, the next block of its chain if idx is allocated.
func (a *Allocator) Next(idx uint32) uint32 {
	return a.store.Uint32(fatOffset(idx))
}

func (a *Allocator) setNext(idx, next uint32) {
	a.store.PutUint32(fatOffset(idx), next)
}

// Allocate removes the head of the free list and returns it. The returned
// block's FAT entry is EndOfChain.
func (a *Allocator) Allocate() (uint32, error) {
	idx := a.Avail()
	if idx == 0 {
		return 0, newError(ErrDiskFull, "", nil)
	}
	a.setAvail(a.Next(idx))
	a.setNext(idx, EndOfChain)
	return idx, nil
}

// link appends block next to the chain ending in block cur.
func (a *Allocator) link(cur, next uint32) {
	a.setNext(cur, next)
}

// Free returns the number of blocks left on the free list.
func (a *Allocator) Free() uint32 {
	var n uint32
	for idx := a.Avail(); idx != 0; idx = a.Next(idx) {
		n++
	}
	return n
}
