// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package flasharea

import (
	"fmt"
)

// MemArea is an in-memory flash area.
//
// It is the primary backend for tests: contents start fully erased and
// individual bytes can be inspected or corrupted directly via Bytes.
type MemArea struct {
	id     AreaID
	erased byte
	data   []byte
}

// MemOption configures a MemArea.
type MemOption func(*MemArea)

// WithErasedValue sets the value flash reads as after an erase (0xFF by
// default, as on NOR flash).
func WithErasedValue(v byte) MemOption {
	return func(a *MemArea) {
		a.erased = v
	}
}

// NewMemArea creates a fully erased in-memory area of the given size.
func NewMemArea(id AreaID, size uint32, opts ...MemOption) *MemArea {
	a := &MemArea{
		id:     id,
		erased: 0xff,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.data = make([]byte, size)

	for i := range a.data {
		a.data[i] = a.erased
	}

	return a
}

// ID implements Area.
func (a *MemArea) ID() AreaID { return a.id }

// Size implements Area.
func (a *MemArea) Size() uint32 { return uint32(len(a.data)) }

// ErasedValue implements Area.
func (a *MemArea) ErasedValue() byte { return a.erased }

// Bytes exposes the backing storage for inspection.
func (a *MemArea) Bytes() []byte { return a.data }

func (a *MemArea) checkRange(op string, off, size uint32) error {
	if uint64(off)+uint64(size) > uint64(len(a.data)) {
		return fmt.Errorf("%s out of bounds: area %d size %d, range [%d, %d)", op, a.id, len(a.data), off, off+size)
	}

	return nil
}

// ReadAt implements Area.
func (a *MemArea) ReadAt(off uint32, p []byte) error {
	if err := a.checkRange("read", off, uint32(len(p))); err != nil {
		return err
	}

	copy(p, a.data[off:])

	return nil
}

// WriteAt implements Area.
func (a *MemArea) WriteAt(off uint32, p []byte) error {
	if err := a.checkRange("write", off, uint32(len(p))); err != nil {
		return err
	}

	copy(a.data[off:], p)

	return nil
}

// Erase implements Area.
func (a *MemArea) Erase(off, size uint32) error {
	if err := a.checkRange("erase", off, size); err != nil {
		return err
	}

	for i := off; i < off+size; i++ {
		a.data[i] = a.erased
	}

	return nil
}

// Close implements Area. Closing the area directly is a no-op; handles
// obtained through MemOpener additionally maintain the opener's leak counter.
func (a *MemArea) Close() error { return nil }

// MemOpener is an Opener over a set of MemAreas.
//
// It counts opens and closes so tests can assert that every handle taken by
// the subsystem was released.
type MemOpener struct {
	areas map[AreaID]*MemArea

	opens, closes int
}

// NewMemOpener creates an opener over the given areas.
func NewMemOpener(areas ...*MemArea) *MemOpener {
	o := &MemOpener{areas: map[AreaID]*MemArea{}}

	for _, a := range areas {
		o.areas[a.id] = a
	}

	return o
}

// Area returns the backing area for direct inspection.
func (o *MemOpener) Area(id AreaID) *MemArea {
	return o.areas[id]
}

// Open implements Opener.
func (o *MemOpener) Open(id AreaID) (Area, error) {
	a, ok := o.areas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownArea, id)
	}

	o.opens++

	return &memHandle{MemArea: a, opener: o}, nil
}

// ActiveHandles returns the number of handles opened but not yet closed.
func (o *MemOpener) ActiveHandles() int {
	return o.opens - o.closes
}

type memHandle struct {
	*MemArea

	opener *MemOpener
	closed bool
}

func (h *memHandle) Close() error {
	if !h.closed {
		h.closed = true
		h.opener.closes++
	}

	return nil
}
