// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package flasharea provides access to named flash areas.
//
// A flash area is a contiguous byte range of a flash device identified by a
// numeric id: an image slot, the scratch area, or the swap status partition.
// The package defines the interfaces the swap-status subsystem consumes, the
// role map translating area ids into slot roles, and memory- and file-backed
// implementations used by tests and tooling.
package flasharea

import (
	"errors"
	"fmt"
)

// AreaID identifies a flash area.
type AreaID uint8

// ErrUnknownArea is returned when an area id is not known to an Opener or Map.
var ErrUnknownArea = errors.New("unknown flash area")

// Area is an open handle to a flash area.
//
// Offsets are relative to the start of the area. Writes require the target
// range to be in the erased state; that is a caller guarantee, implementations
// do not enforce it. A single write is assumed atomic: it either completes
// fully or leaves the range in its pre-write state.
type Area interface {
	ID() AreaID
	Size() uint32
	ErasedValue() byte

	ReadAt(off uint32, p []byte) error
	WriteAt(off uint32, p []byte) error
	Erase(off, size uint32) error

	Close() error
}

// Opener opens flash areas by id.
//
// Every handle returned by Open must be released with Close on every exit
// path, including error paths.
type Opener interface {
	Open(id AreaID) (Area, error)
}

// IsErased reports whether every byte of p reads as the erased value of a.
func IsErased(a Area, p []byte) bool {
	erased := a.ErasedValue()

	for _, b := range p {
		if b != erased {
			return false
		}
	}

	return true
}

// ReadIsEmpty reads len(p) bytes at off into p and reports whether the range
// is fully in the erased state.
func ReadIsEmpty(a Area, off uint32, p []byte) (bool, error) {
	if err := a.ReadAt(off, p); err != nil {
		return false, fmt.Errorf("reading area %d at %d: %w", a.ID(), off, err)
	}

	return IsErased(a, p), nil
}
