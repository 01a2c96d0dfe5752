// Package blockstore provides a fixed-size region of 512-byte blocks,
// either backed by a memory-mapped file or by an in-memory buffer.
package blockstore

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// BlockSize is the size of every block in bytes.
const BlockSize = 512

// Store is a block-addressable byte region. The zero value is not usable;
// obtain one from Create or New.
type Store struct {
	buf     []byte
	nBlocks uint32

	// f and mapped are only set for stores returned by Create.
	f      *os.File
	mapped bool
}

// New returns a heap-backed Store of nBlocks zeroed blocks.
func New(nBlocks uint32) *Store {
	return &Store{
		buf:     make([]byte, int64(nBlocks)*BlockSize),
		nBlocks: nBlocks,
	}
}

// Create opens (creating it if necessary) the file at path, resizes it to
// exactly nBlocks*BlockSize zero bytes and maps it shared for reading and
// writing. Existing contents are discarded. Errors are *os.PathError
// values whose Op names the failing step: "open", "truncate" or "mmap".
func Create(path string, nBlocks uint32) (*Store, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	size := int64(nBlocks) * BlockSize
	for _, n := range []int64{0, size} {
		if err := unix.Ftruncate(int(f.Fd()), n); err != nil {
			f.Close()
			return nil, errors.WithStack(&os.PathError{Op: "truncate", Path: path, Err: err})
		}
	}
	if size == 0 {
		// mmap(2) rejects zero-length mappings.
		return &Store{f: f}, nil
	}
	buf, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.WithStack(&os.PathError{Op: "mmap", Path: path, Err: err})
	}
	return &Store{
		buf:     buf,
		nBlocks: nBlocks,
		f:       f,
		mapped:  true,
	}, nil
}

// NumBlocks returns the number of blocks in the store.
func (s *Store) NumBlocks() uint32 { return s.nBlocks }

// Bytes returns the whole region. Writes to the returned slice go straight
// to the store.
func (s *Store) Bytes() []byte { return s.buf }

// Block returns block idx. It panics if idx is out of range, like a slice
// index would.
func (s *Store) Block(idx uint32) []byte {
	off := int64(idx) * BlockSize
	return s.buf[off : off+BlockSize : off+BlockSize]
}

// Slice returns n bytes of block idx starting at off.
func (s *Store) Slice(idx, off uint32, n int) ([]byte, error) {
	if idx >= s.nBlocks || n < 0 || int64(off)+int64(n) > BlockSize {
		return nil, errors.Errorf("block %d [%d, %d) out of range (%d blocks of %d bytes)",
			idx, off, int64(off)+int64(n), s.nBlocks, BlockSize)
	}
	start := int64(idx)*BlockSize + int64(off)
	end := start + int64(n)
	return s.buf[start:end:end], nil
}

// WriteAt copies p into block idx at byte offset off. p must not cross the
// end of the block.
func (s *Store) WriteAt(idx, off uint32, p []byte) error {
	dst, err := s.Slice(idx, off, len(p))
	if err != nil {
		return err
	}
	copy(dst, p)
	return nil
}

// Uint32 returns the little-endian word at absolute byte offset off.
func (s *Store) Uint32(off int64) uint32 {
	return binary.LittleEndian.Uint32(s.buf[off : off+4])
}

// PutUint32 stores v as a little-endian word at absolute byte offset off.
func (s *Store) PutUint32(off int64, v uint32) {
	binary.LittleEndian.PutUint32(s.buf[off:off+4], v)
}

// Sync flushes the mapped region to the backing file and waits for the
// write to complete. It is a no-op for heap-backed stores.
func (s *Store) Sync() error {
	if !s.mapped {
		return nil
	}
	if err := unix.Msync(s.buf, unix.MS_SYNC); err != nil {
		return errors.WithStack(&os.PathError{Op: "msync", Path: s.f.Name(), Err: err})
	}
	return nil
}

// Close unmaps the region and closes the backing file. The Store must not
// be used afterwards.
func (s *Store) Close() error {
	var firstErr error
	if s.mapped {
		if err := unix.Munmap(s.buf); err != nil {
			firstErr = errors.WithStack(&os.PathError{Op: "munmap", Path: s.f.Name(), Err: err})
		}
		s.mapped = false
	}
	s.buf = nil
	if s.f != nil {
		if err := s.f.Close(); err != nil && firstErr == nil {
			firstErr = errors.WithStack(err)
		}
		s.f = nil
	}
	return firstErr
}

func (s *Store) String() string {
	if s.f != nil {
		return fmt.Sprintf("%s (%d blocks)", s.f.Name(), s.nBlocks)
	}
	return fmt.Sprintf("memory (%d blocks)", s.nBlocks)
}
