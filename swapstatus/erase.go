// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package swapstatus

import (
	"fmt"

	"github.com/firmkit/go-swapstatus/flasharea"
)

// EraseTrailer reclaims the status sub-region of a slot once a swap is fully
// committed, and erases the legacy trailer at the tail of the slot itself.
//
// fap must be the primary or secondary slot of an image; anything else is a
// usage error, not a storage fault. Which image the slot belongs to is not
// checked: the area map already binds each slot id to its image, so any
// mapped slot is a valid erase target. The status sub-region is erased sector
// by sector walking from the last sector to the first, accumulating erased
// bytes until the whole sub-region size is covered; sector sizes need not be
// uniform. The legacy trailer is erased separately because the slot tail is
// a physically distinct region not reclaimed by the status-region erase.
func (s *Status) EraseTrailer(fap flasharea.Area) error {
	slot, ok := s.fmap.Lookup(fap.ID())
	if !ok || (slot.Role != flasharea.RolePrimary && slot.Role != flasharea.RoleSecondary) {
		return fmt.Errorf("%w: trailer erase requires a primary or secondary slot, got area %d", ErrBadArea, fap.ID())
	}

	s.logger.Info("erasing trailer", zapAreaID(fap.ID()))

	fapStat, err := s.openStatusArea()
	if err != nil {
		return err
	}

	defer fapStat.Close() //nolint:errcheck

	subOff, ok := s.acc.InitOffset(fap.ID())
	if !ok {
		return fmt.Errorf("%w: area %d owns no status sub-region", ErrBadArea, fap.ID())
	}

	sectors := s.acc.Sectors()
	trailerSz := s.acc.StatusSize()

	var totalSz uint32

	for i := len(sectors) - 1; i >= 0 && totalSz < trailerSz; i-- {
		sector := sectors[i]

		if err = fapStat.Erase(subOff+sector.Off, sector.Size); err != nil {
			return wrapFlash("erasing status sector", err)
		}

		totalSz += sector.Size
	}

	legacySz := s.layout.TrailerSize()

	if err = fap.Erase(fap.Size()-legacySz, legacySz); err != nil {
		return wrapFlash("erasing legacy slot trailer", err)
	}

	return nil
}
