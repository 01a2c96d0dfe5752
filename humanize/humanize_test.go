package humanize

import "testing"

func TestBlocks(t *testing.T) {
	for _, tt := range []struct {
		n    uint32
		want string
	}{
		{1, "1 block (512 B)"},
		{16, "16 blocks (8.0 KiB)"},
		{4096, "4096 blocks (2.0 MiB)"},
	} {
		if got := Blocks(tt.n); got != tt.want {
			t.Errorf("Blocks(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
