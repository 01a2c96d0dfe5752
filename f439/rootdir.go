package f439

import (
	"path/filepath"

	"github.com/pkg/errors"
)

// Entry binds an input path to the head block of its chain.
type Entry struct {
	Path string
	Head uint32
}

// RootDir accumulates directory entries for the root directory block.
// Entries are written by Finalize, in the order they were added.
type RootDir struct {
	img     *Image
	block   uint32
	entries []DirEntry
}

// NewRootDir allocates the root directory block and writes its header
// with a zero length.
func (img *Image) NewRootDir() (*RootDir, error) {
	block, err := img.alloc.Allocate()
	if err != nil {
		return nil, err
	}
	if err := img.putHeader(block, Header{Tag: TagRoot}); err != nil {
		return nil, err
	}
	return &RootDir{img: img, block: block}, nil
}

// Block returns the index of the root directory block.
func (rd *RootDir) Block() uint32 { return rd.block }

// Len returns the number of entries added so far.
func (rd *RootDir) Len() int { return len(rd.entries) }

// entryName returns the name stored for path: its last element, truncated
// to 12 bytes.
func entryName(path string) [nameSize]byte {
	var name [nameSize]byte
	copy(name[:], filepath.Base(path))
	return name
}

// Add appends an entry for path whose chain starts at head.
func (rd *RootDir) Add(path string, head uint32) error {
	if len(rd.entries) >= MaxRootEntries {
		return newError(ErrArgument, path, errors.Errorf("root directory holds at most %d entries", MaxRootEntries))
	}
	rd.entries = append(rd.entries, DirEntry{
		Name:  entryName(path),
		Start: head,
	})
	return nil
}

// Finalize writes the header length and all entries into the root block.
func (rd *RootDir) Finalize() error {
	for i := range rd.entries {
		b, err := packRecord(&rd.entries[i])
		if err != nil {
			return newError(ErrWrite, "", err)
		}
		if err := rd.img.store.WriteAt(rd.block, uint32(headerSize+i*dirEntrySize), b); err != nil {
			return newError(ErrWrite, "", err)
		}
	}
	return rd.img.putHeader(rd.block, Header{
		Tag:    TagRoot,
		Length: uint32(len(rd.entries) * dirEntrySize),
	})
}

// BuildRoot allocates a root directory block holding entries and returns
// its index.
func (img *Image) BuildRoot(entries []Entry) (uint32, error) {
	if len(entries) > MaxRootEntries {
		return 0, newError(ErrArgument, "", errors.Errorf("%d entries exceed the root directory capacity of %d", len(entries), MaxRootEntries))
	}
	rd, err := img.NewRootDir()
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := rd.Add(e.Path, e.Head); err != nil {
			return 0, err
		}
	}
	if err := rd.Finalize(); err != nil {
		return 0, err
	}
	return rd.block, nil
}
