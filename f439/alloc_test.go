package f439

import (
	"errors"
	"testing"

	"github.com/gokrazy/mkf439/blockstore"
	"github.com/google/go-cmp/cmp"
)

func mustFormat(t *testing.T, nBlocks uint32) *Image {
	t.Helper()
	img, err := Format(blockstore.New(nBlocks))
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestNewGeometry(t *testing.T) {
	for _, tt := range []struct {
		nBlocks uint32
		want    Geometry
	}{
		{1, Geometry{NBlocks: 1, FATBlocks: 1, LastAvail: 2}},
		{8, Geometry{NBlocks: 8, FATBlocks: 1, LastAvail: 2}},
		{128, Geometry{NBlocks: 128, FATBlocks: 1, LastAvail: 2}},
		{129, Geometry{NBlocks: 129, FATBlocks: 2, LastAvail: 3}},
		{256, Geometry{NBlocks: 256, FATBlocks: 2, LastAvail: 3}},
		{1 << 31, Geometry{NBlocks: 1 << 31, FATBlocks: 1 << 24, LastAvail: 1<<24 + 1}},
	} {
		if diff := cmp.Diff(tt.want, NewGeometry(tt.nBlocks)); diff != "" {
			t.Errorf("NewGeometry(%d): diff (-want +got):\n%s", tt.nBlocks, diff)
		}
	}
}

func TestFreeChain(t *testing.T) {
	for _, nBlocks := range []uint32{3, 8, 16, 128, 129, 300} {
		img := mustFormat(t, nBlocks)
		geo := img.Geometry()
		a := img.Allocator()

		var got []uint32
		for idx := a.Avail(); idx != 0; idx = a.Next(idx) {
			if len(got) > int(nBlocks) {
				t.Fatalf("nBlocks=%d: free chain does not terminate", nBlocks)
			}
			got = append(got, idx)
		}
		var want []uint32
		for idx := nBlocks - 1; idx >= geo.LastAvail; idx-- {
			want = append(want, idx)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("nBlocks=%d: unexpected free chain: diff (-want +got):\n%s", nBlocks, diff)
		}
		if got, want := a.Free(), geo.DataBlocks(); got != want {
			t.Errorf("nBlocks=%d: Free() = %d, want %d", nBlocks, got, want)
		}
	}
}

func TestAllocateUntilDiskFull(t *testing.T) {
	const nBlocks = 8
	img := mustFormat(t, nBlocks)
	geo := img.Geometry()
	a := img.Allocator()

	seen := make(map[uint32]bool)
	last := uint32(nBlocks)
	var count uint32
	for {
		idx, err := a.Allocate()
		if err != nil {
			if !errors.Is(err, ErrDiskFull) {
				t.Fatalf("Allocate() = %v, want ErrDiskFull", err)
			}
			break
		}
		count++
		if idx < geo.LastAvail {
			t.Errorf("Allocate() = %d, which is a metadata block (LastAvail = %d)", idx, geo.LastAvail)
		}
		if seen[idx] {
			t.Errorf("Allocate() returned %d twice", idx)
		}
		seen[idx] = true
		if idx >= last {
			t.Errorf("Allocate() = %d after %d, want strictly decreasing", idx, last)
		}
		last = idx
		if got := a.Next(idx); got != EndOfChain {
			t.Errorf("FAT entry of freshly allocated block %d = %d, want %d", idx, got, EndOfChain)
		}
	}
	if got, want := count, uint32(nBlocks)-geo.LastAvail; got != want {
		t.Errorf("%d successful allocations, want %d", got, want)
	}
	if _, err := a.Allocate(); !errors.Is(err, ErrDiskFull) {
		t.Errorf("Allocate() on exhausted image = %v, want ErrDiskFull", err)
	}
	if got := a.Avail(); got != 0 {
		t.Errorf("Avail() = %d, want 0", got)
	}
}

func TestAllocateTinyImage(t *testing.T) {
	for _, nBlocks := range []uint32{1, 2} {
		img := mustFormat(t, nBlocks)
		if _, err := img.Allocator().Allocate(); !errors.Is(err, ErrDiskFull) {
			t.Errorf("nBlocks=%d: Allocate() = %v, want ErrDiskFull", nBlocks, err)
		}
	}
}

func TestAllocateSmallestImage(t *testing.T) {
	img := mustFormat(t, 3)
	a := img.Allocator()
	idx, err := a.Allocate()
	if err != nil {
		t.Fatal(err)
	}
	if idx != 2 {
		t.Errorf("Allocate() = %d, want 2", idx)
	}
	if _, err := a.Allocate(); !errors.Is(err, ErrDiskFull) {
		t.Errorf("second Allocate() = %v, want ErrDiskFull", err)
	}
}
