package f439

import (
	"io"
	"os"

	"github.com/gokrazy/mkf439/blockstore"
	"github.com/gokrazy/mkf439/humanize"
	"github.com/gokrazy/mkf439/progress"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Image binds the super block, FAT and data block views onto a Store.
type Image struct {
	store *blockstore.Store
	geo   Geometry
	alloc *Allocator
}

// Format writes an empty F439 file system (super block and free list) to
// store, which must be zeroed, and returns an Image for populating it.
func Format(store *blockstore.Store) (*Image, error) {
	geo := NewGeometry(store.NumBlocks())
	img := &Image{
		store: store,
		geo:   geo,
		alloc: newAllocator(store, geo),
	}
	b, err := packRecord(&Super{
		Magic:   Magic,
		NBlocks: geo.NBlocks,
	})
	if err != nil {
		return nil, newError(ErrWrite, "", err)
	}
	if err := store.WriteAt(0, 0, b); err != nil {
		return nil, newError(ErrWrite, "", err)
	}
	img.alloc.init()
	return img, nil
}

// Geometry returns the layout of the image.
func (img *Image) Geometry() Geometry { return img.geo }

// Allocator returns the image's block allocator.
func (img *Image) Allocator() *Allocator { return img.alloc }

// SetRoot records the root directory block in the super block.
func (img *Image) SetRoot(block uint32) {
	img.store.PutUint32(superRootOffset, block)
}

func (img *Image) putHeader(block uint32, h Header) error {
	b, err := packRecord(&h)
	if err != nil {
		return newError(ErrWrite, "", err)
	}
	if err := img.store.WriteAt(block, 0, b); err != nil {
		return newError(ErrWrite, "", err)
	}
	return nil
}

// Options control Build.
type Options struct {
	// Logger receives progress messages. Nil disables logging.
	Logger *zap.SugaredLogger

	// Progress, if non-nil, is updated and reported after every file.
	Progress *progress.Reporter

	// KeepPartial leaves the image file on disk when Build fails. By
	// default it is removed.
	KeepPartial bool
}

// Result summarizes a successful Build.
type Result struct {
	Geometry Geometry
	Root     uint32
	Files    []File

	// FreeBlocks is the number of blocks left unallocated.
	FreeBlocks uint32
}

func validate(nBlocks uint32, files []string) error {
	if nBlocks == 0 {
		return newError(ErrArgument, "", errors.New("block count must be positive"))
	}
	if len(files) == 0 {
		return newError(ErrArgument, "", errors.New("no input files"))
	}
	if len(files) > MaxRootEntries {
		return newError(ErrArgument, "", errors.Errorf("%d input files exceed the root directory capacity of %d", len(files), MaxRootEntries))
	}
	return nil
}

// Build writes an image of nBlocks blocks to path containing files, in
// order. The image is synced to stable storage before Build returns.
//
// Build stops at the first error.
func Build(path string, nBlocks uint32, files []string, opts Options) (_ *Result, err error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := validate(nBlocks, files); err != nil {
		return nil, err
	}

	if opts.Progress != nil {
		var total uint64
		for _, fn := range files {
			st, err := os.Stat(fn)
			if err != nil {
				return nil, newError(ErrSourceOpen, fn, err)
			}
			total += uint64(st.Size())
		}
		opts.Progress.SetTotal(total)
	}

	store, err := blockstore.Create(path, nBlocks)
	if err != nil {
		return nil, newError(setupKind(err), path, err)
	}
	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			store.Close()
		}
		if opts.KeepPartial {
			log.Warnf("leaving partial image %s", path)
			return
		}
		if rerr := os.Remove(path); rerr != nil {
			log.Warnf("removing partial image: %v", rerr)
		}
	}()

	img, err := Format(store)
	if err != nil {
		return nil, err
	}
	geo := img.Geometry()
	log.Debugw("formatted image",
		"path", path,
		"size", humanize.Blocks(geo.NBlocks),
		"fatBlocks", geo.FATBlocks,
		"lastAvail", geo.LastAvail)

	root, err := img.NewRootDir()
	if err != nil {
		return nil, errors.Wrap(err, "allocating root directory")
	}

	res := &Result{Geometry: geo, Root: root.Block()}
	for _, fn := range files {
		f, err := packPath(img, fn, opts.Progress)
		if err != nil {
			return nil, err
		}
		if err := root.Add(fn, f.Head); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, f)
		log.Debugw("packed file",
			"path", fn,
			"head", f.Head,
			"length", humanize.Bytes(uint64(f.Length)),
			"blocks", f.Blocks)
		if opts.Progress != nil {
			opts.Progress.SetStatus(fn)
			opts.Progress.Report()
		}
	}
	if err := root.Finalize(); err != nil {
		return nil, err
	}
	img.SetRoot(root.Block())
	res.FreeBlocks = img.alloc.Free()

	if err := store.Sync(); err != nil {
		return nil, newError(ErrWrite, path, err)
	}
	closed = true
	if err := store.Close(); err != nil {
		return nil, newError(ErrWrite, path, err)
	}
	log.Infof("wrote %s: %d files, %s free", path, len(res.Files), humanize.Blocks(res.FreeBlocks))
	return res, nil
}

func packPath(img *Image, fn string, p *progress.Reporter) (File, error) {
	in, err := os.Open(fn)
	if err != nil {
		return File{}, newError(ErrSourceOpen, fn, err)
	}
	defer in.Close()
	var r io.Reader = in
	if p != nil {
		r = io.TeeReader(in, p.Writer())
	}
	f, err := img.PackFile(r)
	if err != nil {
		return File{}, errors.Wrapf(err, "packing %s", fn)
	}
	f.Path = fn
	return f, nil
}
