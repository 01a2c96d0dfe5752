package f439

import (
	"bytes"
	"encoding/binary"

	"github.com/gokrazy/mkf439/blockstore"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

const (
	BlockSize = blockstore.BlockSize

	// fatEntrySize is the size of one FAT entry in bytes.
	fatEntrySize = 4

	// headerSize is the size of the tag/length header at the start of every
	// file and directory head block.
	headerSize = 8

	dirEntrySize = 16
	nameSize     = 12

	// MaxRootEntries is the number of directory entries which fit into the
	// single root directory block.
	MaxRootEntries = (BlockSize - headerSize) / dirEntrySize

	// EndOfChain is the FAT value of the last block of a chain. It is the
	// same value that terminates the free list.
	EndOfChain = uint32(0)

	// superAvailOffset is the byte offset of Super.Avail within block 0.
	superAvailOffset = 8
	// superRootOffset is the byte offset of Super.Root within block 0.
	superRootOffset = 12
)

// Header tags.
const (
	TagFile = uint32(1)
	TagRoot = uint32(2)
)

// Magic identifies an F439 image.
var Magic = [4]byte{'F', '4', '3', '9'}

var structOptions = &struc.Options{Order: binary.LittleEndian}

// Super is the super block stored at the start of block 0.
type Super struct {
	Magic   [4]byte `struc:"[4]byte"`
	NBlocks uint32  `struc:"uint32"`
	Avail   uint32  `struc:"uint32"`
	Root    uint32  `struc:"uint32"`
}

// Header starts every file and root directory head block.
type Header struct {
	Tag    uint32 `struc:"uint32"`
	Length uint32 `struc:"uint32"`
}

// DirEntry is one record in the root directory. Name is not
// NUL-terminated when it uses all 12 bytes.
type DirEntry struct {
	Name  [nameSize]byte `struc:"[12]byte"`
	Start uint32         `struc:"uint32"`
}

// Geometry describes where the metadata of an image of NBlocks blocks
// ends.
type Geometry struct {
	NBlocks   uint32
	FATBlocks uint32

	// LastAvail is the lowest block which can be allocated. Blocks below it
	// hold the super block and FAT.
	LastAvail uint32
}

// NewGeometry computes the geometry of an image with nBlocks blocks.
func NewGeometry(nBlocks uint32) Geometry {
	fatBlocks := uint32((uint64(nBlocks)*fatEntrySize + BlockSize - 1) / BlockSize)
	return Geometry{
		NBlocks:   nBlocks,
		FATBlocks: fatBlocks,
		LastAvail: 1 + fatBlocks,
	}
}

// DataBlocks returns the number of blocks available for the root directory
// and file contents.
func (g Geometry) DataBlocks() uint32 {
	if g.NBlocks <= g.LastAvail {
		return 0
	}
	return g.NBlocks - g.LastAvail
}

// fatOffset returns the absolute byte offset of FAT entry idx.
func fatOffset(idx uint32) int64 {
	return BlockSize + int64(idx)*fatEntrySize
}

func packRecord(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := struc.PackWithOptions(&buf, v, structOptions); err != nil {
		return nil, errors.Wrap(err, "packing record")
	}
	return buf.Bytes(), nil
}

// chainBlocks returns how many blocks a payload of length bytes occupies.
func chainBlocks(length uint64) uint64 {
	const headCapacity = BlockSize - headerSize
	if length <= headCapacity {
		return 1
	}
	return 1 + (length-headCapacity+BlockSize-1)/BlockSize
}
