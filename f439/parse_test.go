package f439

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/lunixbochs/struc"
)

// parsedImage is a decoded F439 image. The builder never reads images
// back, so the decoder only exists for the tests.
type parsedImage struct {
	raw     []byte
	super   Super
	root    Header
	entries []DirEntry
}

func unpackAt(t *testing.T, raw []byte, off int, v interface{}) {
	t.Helper()
	if err := struc.UnpackWithOptions(bytes.NewReader(raw[off:]), v, structOptions); err != nil {
		t.Fatalf("unpacking %T at offset %d: %v", v, off, err)
	}
}

func parseImage(t *testing.T, raw []byte) *parsedImage {
	t.Helper()
	p := &parsedImage{raw: raw}
	unpackAt(t, raw, 0, &p.super)
	if p.super.Magic != Magic {
		t.Fatalf("magic = %q, want %q", p.super.Magic[:], Magic[:])
	}
	if got, want := len(raw), int(p.super.NBlocks)*BlockSize; got != want {
		t.Fatalf("image is %d bytes, super block says %d", got, want)
	}
	if p.super.Root == 0 {
		return p
	}
	unpackAt(t, raw, int(p.super.Root)*BlockSize, &p.root)
	if p.root.Tag != TagRoot {
		t.Fatalf("root block %d has tag %d, want %d", p.super.Root, p.root.Tag, TagRoot)
	}
	n := int(p.root.Length) / dirEntrySize
	p.entries = make([]DirEntry, n)
	for i := range p.entries {
		unpackAt(t, raw, int(p.super.Root)*BlockSize+headerSize+i*dirEntrySize, &p.entries[i])
	}
	return p
}

func (p *parsedImage) fat(idx uint32) uint32 {
	off := BlockSize + int(idx)*fatEntrySize
	return binary.LittleEndian.Uint32(p.raw[off : off+4])
}

// readFile follows the chain starting at head and returns the payload and
// the blocks it occupies.
func (p *parsedImage) readFile(t *testing.T, head uint32) ([]byte, []uint32) {
	t.Helper()
	var h Header
	unpackAt(t, p.raw, int(head)*BlockSize, &h)
	if h.Tag != TagFile {
		t.Fatalf("block %d has tag %d, want %d", head, h.Tag, TagFile)
	}
	var (
		data   []byte
		blocks = []uint32{head}
		cur    = head
		off    = headerSize
		left   = int(h.Length)
	)
	for {
		n := BlockSize - off
		if n > left {
			n = left
		}
		start := int(cur)*BlockSize + off
		data = append(data, p.raw[start:start+n]...)
		left -= n
		if left == 0 {
			break
		}
		next := p.fat(cur)
		if next == EndOfChain {
			t.Fatalf("chain of block %d ends after %d of %d bytes", head, len(data), h.Length)
		}
		blocks = append(blocks, next)
		cur = next
		off = 0
	}
	if next := p.fat(cur); next != EndOfChain {
		t.Fatalf("last block %d of chain %d links to %d, want end of chain", cur, head, next)
	}
	return data, blocks
}

func entryString(e DirEntry) string {
	return string(bytes.TrimRight(e.Name[:], "\x00"))
}
