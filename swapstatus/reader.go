// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package swapstatus

import (
	"fmt"

	"github.com/firmkit/go-swapstatus/flasharea"
)

// ReadSwapState decodes the full swap-state record for the slot behind fap.
//
// Erased fields decode to the unset sentinels. For upgrade-style slots (and,
// for image_ok, primary slots that already completed the copy) an erased
// status partition triggers a fallback to the legacy on-slot trailer; a value
// recovered there is self-healed into the status partition and the legacy
// bytes are erased once the read completes.
//
// On any flash error the record is not partially returned.
func (s *Status) ReadSwapState(fap flasharea.Area) (SwapState, error) {
	var state SwapState

	slot, ok := s.fmap.Lookup(fap.ID())
	if !ok {
		return SwapState{}, fmt.Errorf("%w: area %d is not in the flash map", ErrBadArea, fap.ID())
	}

	fapStat, err := s.openStatusArea()
	if err != nil {
		return SwapState{}, err
	}

	defer fapStat.Close() //nolint:errcheck

	var (
		eraseTrailer bool
		trailerOff   uint32
	)

	// magic

	magic := make([]byte, s.layout.MagicSize)

	if err = s.acc.Retrieve(fap.ID(), s.layout.MagicOff(), magic); err != nil {
		return SwapState{}, wrapFlash("retrieving magic", err)
	}

	if !flasharea.IsErased(fapStat, magic) {
		state.Magic = DecodeMagic(magic)
	} else {
		state.Magic = MagicUnset

		// the legacy trailer is consulted only for upgrade-style slots
		if slot.Role == flasharea.RoleSecondary {
			legacyOff := s.layout.LegacyMagicOff(fap.Size())

			empty, rerr := flasharea.ReadIsEmpty(fap, legacyOff, magic)
			if rerr != nil {
				return SwapState{}, wrapFlash("reading legacy magic", rerr)
			}

			if !empty {
				state.Magic = DecodeMagic(magic)

				if state.Magic == MagicGood {
					// self-heal: migrate the legacy magic into the status partition
					if err = s.acc.Update(fap.ID(), s.layout.MagicOff(), magic); err != nil {
						return SwapState{}, wrapFlash("migrating legacy magic", err)
					}
				}

				eraseTrailer, trailerOff = true, legacyOff
			}
		}
	}

	// swap_info

	var swapInfo [1]byte

	if err = s.acc.Retrieve(fap.ID(), s.layout.SwapInfoOff(), swapInfo[:]); err != nil {
		return SwapState{}, wrapFlash("retrieving swap info", err)
	}

	state.SwapType, state.ImageNum = SwapInfo(swapInfo[0]).Decode()

	if flasharea.IsErased(fapStat, swapInfo[:]) {
		state.SwapType, state.ImageNum = SwapTypeNone, 0
	}

	// copy_done

	var copyDone [1]byte

	if err = s.acc.Retrieve(fap.ID(), s.layout.CopyDoneOff(), copyDone[:]); err != nil {
		return SwapState{}, wrapFlash("retrieving copy_done", err)
	}

	if flasharea.IsErased(fapStat, copyDone[:]) {
		state.CopyDone = FlagUnset
	} else {
		state.CopyDone = DecodeFlag(copyDone[0])
	}

	// image_ok

	var imageOK [1]byte

	if err = s.acc.Retrieve(fap.ID(), s.layout.ImageOKOff(), imageOK[:]); err != nil {
		return SwapState{}, wrapFlash("retrieving image_ok", err)
	}

	if !flasharea.IsErased(fapStat, imageOK[:]) {
		state.ImageOK = DecodeFlag(imageOK[0])
	} else {
		state.ImageOK = FlagUnset

		// The legacy trailer holds image_ok when the image was signed for a
		// permanent swap. Upgrade-style slots always consult it; primary
		// slots only once the copy completed, since before that the slot
		// tail holds image data.
		var process bool

		switch slot.Role {
		case flasharea.RolePrimary:
			process = state.CopyDone == FlagSet
		case flasharea.RoleSecondary:
			process = true
		case flasharea.RoleScratch, flasharea.RoleStatus, flasharea.RoleUnknown:
			fallthrough
		default:
			return SwapState{}, fmt.Errorf("%w: area %d is neither a primary nor an upgrade slot", ErrBadArea, fap.ID())
		}

		if process {
			legacyOff := s.layout.LegacyImageOKOff(fap.Size())

			empty, rerr := flasharea.ReadIsEmpty(fap, legacyOff, imageOK[:])
			if rerr != nil {
				return SwapState{}, wrapFlash("reading legacy image_ok", rerr)
			}

			if !empty {
				state.ImageOK = DecodeFlag(imageOK[0])

				if state.ImageOK != FlagBad {
					if err = s.acc.Update(fap.ID(), s.layout.ImageOKOff(), imageOK[:]); err != nil {
						return SwapState{}, wrapFlash("migrating legacy image_ok", err)
					}
				}

				eraseTrailer, trailerOff = true, legacyOff
			}
		}
	}

	if eraseTrailer {
		s.logger.Debug("erasing migrated legacy trailer bytes",
			zapAreaID(fap.ID()), zapOff("off", trailerOff))

		if err = fap.Erase(trailerOff, s.layout.MagicSize); err != nil {
			return SwapState{}, wrapFlash("erasing legacy trailer bytes", err)
		}
	}

	return state, nil
}

// ReadSwapStateByID opens the area, decodes its swap-state record and closes
// the handle again.
func (s *Status) ReadSwapStateByID(id flasharea.AreaID) (SwapState, error) {
	fap, err := s.opener.Open(id)
	if err != nil {
		return SwapState{}, wrapFlash("opening area", err)
	}

	defer fap.Close() //nolint:errcheck

	return s.ReadSwapState(fap)
}
