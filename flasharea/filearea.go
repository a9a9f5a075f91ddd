// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package flasharea

import (
	"fmt"
	"io"
	"os"
)

// FileOpener maps flash areas onto windows of a raw flash image file.
//
// It backs the inspection tooling: areas are declared with their offset and
// size inside the image, and handles returned by Open read and write the
// corresponding file range. The image file is flock'ed exclusively on linux
// for the lifetime of the opener.
type FileOpener struct {
	f      *os.File
	areas  map[AreaID]fileWindow
	erased byte
}

type fileWindow struct {
	off  int64
	size uint32
}

// NewFileOpener opens a flash image file read-write and acquires an exclusive
// lock on it.
func NewFileOpener(path string, erased byte) (*FileOpener, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening flash image: %w", err)
	}

	if err = lockFile(f); err != nil {
		f.Close() //nolint:errcheck

		return nil, fmt.Errorf("locking flash image: %w", err)
	}

	return &FileOpener{
		f:      f,
		areas:  map[AreaID]fileWindow{},
		erased: erased,
	}, nil
}

// AddArea declares an area as a window of the image file.
func (o *FileOpener) AddArea(id AreaID, off int64, size uint32) error {
	if _, dup := o.areas[id]; dup {
		return fmt.Errorf("duplicate area id %d", id)
	}

	o.areas[id] = fileWindow{off: off, size: size}

	return nil
}

// Open implements Opener.
func (o *FileOpener) Open(id AreaID) (Area, error) {
	w, ok := o.areas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownArea, id)
	}

	return &fileArea{opener: o, id: id, window: w}, nil
}

// Close unlocks and closes the image file.
func (o *FileOpener) Close() error {
	if err := unlockFile(o.f); err != nil {
		o.f.Close() //nolint:errcheck

		return err
	}

	return o.f.Close()
}

type fileArea struct {
	opener *FileOpener
	id     AreaID
	window fileWindow
}

func (a *fileArea) ID() AreaID        { return a.id }
func (a *fileArea) Size() uint32      { return a.window.size }
func (a *fileArea) ErasedValue() byte { return a.opener.erased }

// Close implements Area. The file handle belongs to the opener, so closing an
// area releases nothing.
func (a *fileArea) Close() error { return nil }

func (a *fileArea) checkRange(op string, off, size uint32) error {
	if uint64(off)+uint64(size) > uint64(a.window.size) {
		return fmt.Errorf("%s out of bounds: area %d size %d, range [%d, %d)", op, a.id, a.window.size, off, off+size)
	}

	return nil
}

func (a *fileArea) ReadAt(off uint32, p []byte) error {
	if err := a.checkRange("read", off, uint32(len(p))); err != nil {
		return err
	}

	sr := io.NewSectionReader(a.opener.f, a.window.off+int64(off), int64(len(p)))

	if _, err := io.ReadFull(sr, p); err != nil {
		return fmt.Errorf("reading area %d: %w", a.id, err)
	}

	return nil
}

func (a *fileArea) WriteAt(off uint32, p []byte) error {
	if err := a.checkRange("write", off, uint32(len(p))); err != nil {
		return err
	}

	if _, err := a.opener.f.WriteAt(p, a.window.off+int64(off)); err != nil {
		return fmt.Errorf("writing area %d: %w", a.id, err)
	}

	return nil
}

func (a *fileArea) Erase(off, size uint32) error {
	if err := a.checkRange("erase", off, size); err != nil {
		return err
	}

	buf := make([]byte, size)
	for i := range buf {
		buf[i] = a.opener.erased
	}

	if _, err := a.opener.f.WriteAt(buf, a.window.off+int64(off)); err != nil {
		return fmt.Errorf("erasing area %d: %w", a.id, err)
	}

	return nil
}
