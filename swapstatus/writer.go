// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package swapstatus

import (
	"encoding/binary"
	"fmt"

	"github.com/firmkit/go-swapstatus/flasharea"
)

// statusStateCount is the number of per-step states the copy algorithm walks
// through; each occupies one progress byte.
const statusStateCount = 3

// WriteTrailer writes raw trailer bytes at the given flat offset of the
// record owned by fap.
func (s *Status) WriteTrailer(fap flasharea.Area, off uint32, p []byte) error {
	if err := s.acc.Update(fap.ID(), off, p); err != nil {
		return wrapFlash("writing trailer", err)
	}

	return nil
}

// WriteMagic commits the record owned by fap.
//
// It must be the last write of any field-group update: the magic's presence
// is the sole evidence that the preceding fields were durably written.
func (s *Status) WriteMagic(fap flasharea.Area) error {
	return s.WriteTrailer(fap, s.layout.MagicOff(), BootMagic[:])
}

// WriteSwapInfo records the swap type and image number.
func (s *Status) WriteSwapInfo(fap flasharea.Area, swapType SwapType, imageNum uint8) error {
	return s.WriteTrailer(fap, s.layout.SwapInfoOff(), []byte{byte(MakeSwapInfo(swapType, imageNum))})
}

// WriteCopyDone marks the image copy as completed.
func (s *Status) WriteCopyDone(fap flasharea.Area) error {
	return s.WriteTrailer(fap, s.layout.CopyDoneOff(), []byte{flagSetValue})
}

// WriteImageOK marks the image in the slot as accepted.
func (s *Status) WriteImageOK(fap flasharea.Area) error {
	return s.WriteTrailer(fap, s.layout.ImageOKOff(), []byte{flagSetValue})
}

// WriteSwapSize records the total size of the swap.
func (s *Status) WriteSwapSize(fap flasharea.Area, swapSize uint32) error {
	var buf [swapSizeLen]byte

	binary.LittleEndian.PutUint32(buf[:], swapSize)

	return s.WriteTrailer(fap, s.layout.SwapSizeOff(), buf[:])
}

// WriteEncKey stores the opaque encryption key blob of a slot.
func (s *Status) WriteEncKey(fap flasharea.Area, slot int, bs *BootStatus) error {
	if s.layout.KeySize == 0 {
		return fmt.Errorf("%w: layout reserves no encryption key space", ErrBadArea)
	}

	key := bs.EncKeys[slot]
	if uint32(len(key)) != s.layout.KeySize {
		return fmt.Errorf("%w: key blob for slot %d is %d bytes, layout expects %d", ErrBadArea, slot, len(key), s.layout.KeySize)
	}

	return s.WriteTrailer(fap, s.layout.EncKeyOff(slot), key)
}

// WriteStatus advances the persisted step counter.
//
// The progress byte lands on scratch while the swap still uses it, and on the
// primary slot once scratch has been retired: that selection tracks which
// copy is guaranteed durable, since the primary slot is erased partway
// through the swap.
func (s *Status) WriteStatus(bs *BootStatus) error {
	var (
		id flasharea.AreaID
		ok bool
	)

	if bs.UseScratch {
		id, ok = s.fmap.ScratchID()
	} else {
		id, ok = s.fmap.PrimaryID(bs.Image)
	}

	if !ok {
		return fmt.Errorf("%w: flash map has no area for step %d of image %d", ErrBadArea, bs.Idx, bs.Image)
	}

	fap, err := s.opener.Open(id)
	if err != nil {
		return wrapFlash("opening status target", err)
	}

	defer fap.Close() //nolint:errcheck

	off := s.layout.StatusOff() + statusInternalOff(bs)

	progress := bs.State
	if bs.Op != OpMove {
		progress++
	}

	if err = s.acc.Update(fap.ID(), off, []byte{progress}); err != nil {
		return wrapFlash("writing status byte", err)
	}

	return nil
}

// statusInternalOff is the offset of the current step's progress byte within
// the step-progress region.
func statusInternalOff(bs *BootStatus) uint32 {
	return bs.Idx*statusStateCount + uint32(bs.State)
}
