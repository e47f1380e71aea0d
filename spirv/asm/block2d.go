package asm

import "fmt"

// Block2D describes a 2D block load/store of a rectangular tile
// between global memory and the register file, addressed by a base
// pointer plus pitch/width/height and an in-tile x/y offset — the
// addressing mode Xe's block-2D message uses to avoid per-row
// gather/scatter when staging DPAS operands (§4.8), grounded on the
// 8-DWord block-2D payload header described in src/spv/block2d_diy.*.
type Block2D struct {
	Store        bool
	ElementBytes int
	TileWidth    int
	TileHeight   int
	ArrayLen     int // number of tiles loaded per message, for batched A/B staging
}

var _ Instr = Block2D{}

// Text renders the vISA lsc_load_block2d / lsc_store_block2d mnemonic.
func (bl Block2D) Text() string {
	op := "lsc_load_block2d"
	if bl.Store {
		op = "lsc_store_block2d"
	}
	return fmt.Sprintf("%s.ugm (%dx%d)%s $0 $1 %d", op, bl.TileWidth, bl.TileHeight, arraySuffix(bl.ArrayLen), bl.ElementBytes)
}

func arraySuffix(n int) string {
	if n <= 1 {
		return ""
	}
	return fmt.Sprintf(".a%d", n)
}

// Constraints returns the operand-constraint string for a block-2D
// call: the surface/base-address operands are read-only, and the
// destination register (load) or source register (store) takes the
// opposite read/write role.
func (bl Block2D) Constraints() string {
	if bl.Store {
		return "rw,rw"
	}
	return "=rw,rw"
}
