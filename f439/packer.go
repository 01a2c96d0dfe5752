package f439

import (
	"bufio"
	"io"
	"math"

	"github.com/pkg/errors"
)

// File describes one packed input.
type File struct {
	Path   string // as given to Build, empty for PackFile
	Head   uint32 // first block of the chain
	Length uint32 // payload length in bytes
	Blocks uint32 // number of blocks in the chain
}

// PackFile copies r into a newly allocated block chain. The head block
// starts with a Header (TagFile, payload length) followed by up to 504
// bytes of payload; every further block holds 512 bytes.
//
// A new block is only allocated once more input is known to follow, so a
// payload ending exactly at a block boundary does not get an empty
// trailing block.
func (img *Image) PackFile(r io.Reader) (File, error) {
	head, err := img.alloc.Allocate()
	if err != nil {
		return File{}, err
	}
	// The length is only known at the end, write the tag now.
	if err := img.putHeader(head, Header{Tag: TagFile}); err != nil {
		return File{}, err
	}

	br := bufio.NewReaderSize(r, BlockSize)
	f := File{Head: head, Blocks: 1}
	cur := head
	off := uint32(headerSize)
	var total uint64
	for {
		if off == BlockSize {
			if _, err := br.Peek(1); err != nil {
				if err == io.EOF {
					break
				}
				return File{}, newError(ErrRead, "", err)
			}
			next, err := img.alloc.Allocate()
			if err != nil {
				return File{}, err
			}
			img.alloc.link(cur, next)
			cur = next
			off = 0
			f.Blocks++
		}

		n, err := br.Read(img.store.Block(cur)[off:])
		off += uint32(n)
		total += uint64(n)
		if total > math.MaxUint32 {
			return File{}, newError(ErrFileTooLarge, "", errors.Errorf("more than %d bytes", uint32(math.MaxUint32)))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return File{}, newError(ErrRead, "", err)
		}
	}

	f.Length = uint32(total)
	if err := img.putHeader(head, Header{Tag: TagFile, Length: f.Length}); err != nil {
		return File{}, err
	}
	return f, nil
}
