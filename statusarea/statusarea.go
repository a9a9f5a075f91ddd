// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package statusarea implements the flat-offset accessor over the swap
// status partition.
//
// The status partition stores one fixed-size sub-region per tracked flash
// area (image slots and scratch). Callers address bytes of a sub-region by a
// flat offset; the accessor maps that onto the partition, independent of the
// sector geometry underneath. Sector geometry matters only for erasing, and
// is exposed for that purpose.
package statusarea

import (
	"errors"
	"fmt"
	"slices"

	"github.com/firmkit/go-swapstatus/flasharea"
)

// Sector describes one sector of a status sub-region: its offset from the
// sub-region start and its size. Sizes need not be uniform.
type Sector struct {
	Off  uint32
	Size uint32
}

// Accessor reads and writes byte ranges of the status region addressed by a
// flat offset, keyed by the id of the flash area the record belongs to.
type Accessor interface {
	// Retrieve reads len(p) bytes at the flat offset off of the sub-region
	// owned by area id.
	Retrieve(id flasharea.AreaID, off uint32, p []byte) error
	// Update writes len(p) bytes at the flat offset off of the sub-region
	// owned by area id. The target range must be in the erased state; this is
	// a caller guarantee, not enforced here.
	Update(id flasharea.AreaID, off uint32, p []byte) error

	// InitOffset returns the offset of the sub-region owned by area id within
	// the status partition.
	InitOffset(id flasharea.AreaID) (uint32, bool)
	// Sectors returns the sector geometry of one sub-region. The returned
	// slice is owned by the caller and may be modified freely.
	Sectors() []Sector
	// StatusSize returns the size of one sub-region in bytes.
	StatusSize() uint32
}

// Region is the Accessor implementation over an open status partition handle.
type Region struct {
	area flasharea.Area

	sectors []Sector
	index   map[flasharea.AreaID]uint32

	size uint32
}

// NewRegion creates a Region over the status partition area.
//
// sectorSizes is the (possibly non-uniform) sector geometry of one
// sub-region; the sizes must sum to exactly statusSize, since sub-regions are
// packed back to back and erasing covers whole sectors. tracked lists the
// areas owning a sub-region, in layout order.
func NewRegion(area flasharea.Area, sectorSizes []uint32, statusSize uint32, tracked []flasharea.AreaID) (*Region, error) {
	if statusSize == 0 {
		return nil, errors.New("status sub-region size must be positive")
	}

	if len(sectorSizes) == 0 {
		return nil, errors.New("no sector geometry given")
	}

	sectors := make([]Sector, 0, len(sectorSizes))

	var total uint32

	for _, sz := range sectorSizes {
		if sz == 0 {
			return nil, errors.New("zero-sized sector in geometry")
		}

		sectors = append(sectors, Sector{Off: total, Size: sz})
		total += sz
	}

	// sub-regions sit at statusSize strides and trailer erasing works on whole
	// sectors, so any slack between the two would make an erase of one
	// sub-region reach into the next
	if total != statusSize {
		return nil, fmt.Errorf("sector geometry covers %d bytes, sub-region is %d", total, statusSize)
	}

	if uint64(statusSize)*uint64(len(tracked)) > uint64(area.Size()) {
		return nil, fmt.Errorf("status partition too small: %d sub-regions of %d bytes in %d bytes", len(tracked), statusSize, area.Size())
	}

	index := make(map[flasharea.AreaID]uint32, len(tracked))

	for i, id := range tracked {
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("area %d tracked twice", id)
		}

		index[id] = uint32(i) * statusSize
	}

	return &Region{
		area:    area,
		sectors: sectors,
		index:   index,
		size:    statusSize,
	}, nil
}

// InitOffset implements Accessor.
func (r *Region) InitOffset(id flasharea.AreaID) (uint32, bool) {
	off, ok := r.index[id]

	return off, ok
}

// Sectors implements Accessor. The clone keeps the region's geometry
// immutable no matter what the caller does with the slice.
func (r *Region) Sectors() []Sector {
	return slices.Clone(r.sectors)
}

// StatusSize implements Accessor.
func (r *Region) StatusSize() uint32 {
	return r.size
}

func (r *Region) resolve(id flasharea.AreaID, off, size uint32) (uint32, error) {
	base, ok := r.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: area %d has no status sub-region", flasharea.ErrUnknownArea, id)
	}

	if uint64(off)+uint64(size) > uint64(r.size) {
		return 0, fmt.Errorf("status range [%d, %d) out of sub-region of %d bytes", off, off+size, r.size)
	}

	return base + off, nil
}

// Retrieve implements Accessor.
func (r *Region) Retrieve(id flasharea.AreaID, off uint32, p []byte) error {
	pos, err := r.resolve(id, off, uint32(len(p)))
	if err != nil {
		return err
	}

	return r.area.ReadAt(pos, p)
}

// Update implements Accessor.
func (r *Region) Update(id flasharea.AreaID, off uint32, p []byte) error {
	pos, err := r.resolve(id, off, uint32(len(p)))
	if err != nil {
		return err
	}

	return r.area.WriteAt(pos, p)
}
