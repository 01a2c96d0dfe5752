package humanize

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const blockSize = 512

func Bytes(bytes uint64) string {
	return humanize.IBytes(bytes)
}

// Blocks formats a count of 512-byte blocks together with the size they
// cover, e.g. "16 blocks (8.0 KiB)".
func Blocks(n uint32) string {
	unit := "blocks"
	if n == 1 {
		unit = "block"
	}
	return fmt.Sprintf("%d %s (%s)", n, unit, Bytes(uint64(n)*blockSize))
}
