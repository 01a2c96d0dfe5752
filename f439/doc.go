// Package f439 builds F439 file system images: a super block, a file
// allocation table and a flat root directory followed by the packed file
// contents, all in 512-byte blocks.
//
// Layout:
//
//	block 0                super block: magic "F439", nBlocks, avail, root
//	blocks 1..fatBlocks    FAT, one little-endian uint32 per block
//	remaining blocks       root directory and file data
//
// The FAT doubles as the free list: a free block's entry holds the next
// lower free block, an allocated block's entry holds the next block of its
// chain. Both lists end in 0.
//
// Images are write-only. There is no support for reading, mounting or
// modifying an existing image.
package f439
