// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package swapstatus

import (
	"fmt"

	"github.com/firmkit/go-swapstatus/flasharea"
)

// Init seeds the status record for the slot about to receive status writes,
// once per swap.
//
// The secondary slot's current record is read first: if its image was already
// accepted as permanent, that is carried into the fresh record. The magic is
// written last, so a power loss anywhere in this sequence leaves no record
// that could be mistaken for a committed one.
func (s *Status) Init(fap flasharea.Area, bs *BootStatus) error {
	s.logger.Debug("initializing status", zapAreaID(fap.ID()))

	secID, ok := s.fmap.SecondaryID(bs.Image)
	if !ok {
		return fmt.Errorf("%w: no secondary slot for image %d", ErrBadArea, bs.Image)
	}

	swapState, err := s.ReadSwapStateByID(secID)
	if err != nil {
		return err
	}

	if bs.SwapType != SwapTypeNone {
		if err = s.WriteSwapInfo(fap, bs.SwapType, uint8(bs.Image)); err != nil {
			return err
		}
	}

	if swapState.ImageOK == FlagSet {
		if err = s.WriteImageOK(fap); err != nil {
			return err
		}
	}

	if err = s.WriteSwapSize(fap, bs.SwapSize); err != nil {
		return err
	}

	if s.layout.KeySize > 0 {
		for slot := 0; slot < 2; slot++ {
			if err = s.WriteEncKey(fap, slot, bs); err != nil {
				return err
			}
		}
	}

	return s.WriteMagic(fap)
}

// ReadStatus reconstructs where a prior swap left off.
//
// The source policy decides which area is authoritative; SourceNone means no
// swap was in progress and is not an error. Otherwise the step counter is
// rebuilt by the configured StepReader and the swap type is recovered from
// swap_info, an erased byte meaning none.
func (s *Status) ReadStatus(bs *BootStatus) error {
	bs.Source = s.source()

	switch bs.Source {
	case SourceNone:
		return nil
	case SourcePrimarySlot:
	default:
		return fmt.Errorf("%w: unknown status source %d", ErrBadArea, bs.Source)
	}

	if s.steps == nil {
		return ErrNoStepReader
	}

	id, ok := s.fmap.PrimaryID(bs.Image)
	if !ok {
		return fmt.Errorf("%w: no primary slot for image %d", ErrBadArea, bs.Image)
	}

	fap, err := s.opener.Open(id)
	if err != nil {
		return wrapFlash("opening primary slot", err)
	}

	defer fap.Close() //nolint:errcheck

	fapStat, err := s.openStatusArea()
	if err != nil {
		return err
	}

	defer fapStat.Close() //nolint:errcheck

	if err = s.steps.ReadStatusBytes(fap, bs); err != nil {
		return err
	}

	var swapInfo [1]byte

	if err = s.acc.Retrieve(id, s.layout.SwapInfoOff(), swapInfo[:]); err != nil {
		return wrapFlash("retrieving swap info", err)
	}

	if flasharea.IsErased(fapStat, swapInfo[:]) {
		bs.SwapType = SwapTypeNone
	} else {
		bs.SwapType, _ = SwapInfo(swapInfo[0]).Decode()
	}

	return nil
}
