// Package patch freezes and unfreezes the ghost input streams of a running
// game so that inputs can be written straight into the ghost controller.
//
// Each input stream has a readFrame routine. Patching replaces its first two
// instructions with
//
//	lbz r3, 0x12(r3)
//	blr
//
// so the routine returns the byte already in the controller instead of
// reading the next tuple. Restoring writes back the original prologue
//
//	stwu sp, -0x20(sp)
//	mflr r0
package patch

import (
	"errors"
	"fmt"
)

// Region is one of the patchable stream readers.
type Region int

const (
	RegionDirection Region = iota
	RegionFace
	RegionTrick
)

// Regions lists every region in patch order.
var Regions = []Region{RegionDirection, RegionFace, RegionTrick}

func (r Region) String() string {
	switch r {
	case RegionDirection:
		return "direction"
	case RegionFace:
		return "face"
	case RegionTrick:
		return "trick"
	default:
		return fmt.Sprintf("region(%d)", int(r))
	}
}

var (
	ErrUnknownGame   = errors.New("unknown game id")
	ErrUnknownRegion = errors.New("unknown patch region")
)

const patchSize = 8

var (
	patched  = [2]uint32{0x88630012, 0x4E800020}
	original = [2]uint32{0x9421FFE0, 0x7C0802A6}
)

// addresses holds the readFrame routine of every region per game release.
var addresses = map[string][3]uint32{
	"RMCE01": {0x8051C8D8, 0x8051EACC, 0x8051E7E8},
	"RMCP01": {0x80520D4C, 0x80522F40, 0x80522C5C},
	"RMCJ01": {0x805206CC, 0x805228C0, 0x805225DC},
	"RMCK01": {0x8050ED70, 0x80510F64, 0x80510C80},
}

// Memory is the host process memory.
type Memory interface {
	WriteU32(addr uint32, value uint32) error
	InvalidateICache(addr uint32, size uint32) error
}

// Patcher freezes and restores input stream readers.
type Patcher interface {
	Patch(region Region) error
	Restore(region Region) error
}

// MemoryPatcher patches a game through its Memory.
type MemoryPatcher struct {
	mem   Memory
	table [3]uint32
}

// NewMemoryPatcher returns a patcher for the game release gameID.
func NewMemoryPatcher(mem Memory, gameID string) (*MemoryPatcher, error) {
	table, ok := addresses[gameID]
	if !ok {
		return nil, fmt.Errorf("%q: %w", gameID, ErrUnknownGame)
	}
	return &MemoryPatcher{mem: mem, table: table}, nil
}

// Patch makes the region's reader return the controller's current byte.
func (p *MemoryPatcher) Patch(region Region) error {
	return p.write(region, patched)
}

// Restore puts the region's original reader back.
func (p *MemoryPatcher) Restore(region Region) error {
	return p.write(region, original)
}

func (p *MemoryPatcher) write(region Region, words [2]uint32) error {
	if region < RegionDirection || region > RegionTrick {
		return fmt.Errorf("%s: %w", region, ErrUnknownRegion)
	}
	addr := p.table[region]
	for i, w := range words {
		if err := p.mem.WriteU32(addr+uint32(4*i), w); err != nil {
			return fmt.Errorf("patch %s at %#08x: %w", region, addr, err)
		}
	}
	if err := p.mem.InvalidateICache(addr, patchSize); err != nil {
		return fmt.Errorf("invalidate %s at %#08x: %w", region, addr, err)
	}
	return nil
}

// PatchAll patches every region. It stops at the first failure.
func PatchAll(p Patcher) error {
	for _, r := range Regions {
		if err := p.Patch(r); err != nil {
			return err
		}
	}
	return nil
}

// RestoreAll restores every region, returning every failure.
func RestoreAll(p Patcher) error {
	var errs []error
	for _, r := range Regions {
		if err := p.Restore(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
