// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package swapstatus

import (
	"encoding/binary"
	"fmt"
)

// FindStatus reports whether a committed status record exists for the image.
//
// It only checks the magic of the image's primary-slot record in the status
// partition: magic is written last, so a valid magic implies the rest of the
// record is valid too. Used after a reboot to decide whether the full reader
// is worth invoking at all.
func (s *Status) FindStatus(image int) (bool, error) {
	id, ok := s.fmap.PrimaryID(image)
	if !ok {
		return false, fmt.Errorf("%w: no primary slot for image %d", ErrBadArea, image)
	}

	fap, err := s.opener.Open(id)
	if err != nil {
		return false, wrapFlash("opening primary slot", err)
	}

	defer fap.Close() //nolint:errcheck

	magic := make([]byte, s.layout.MagicSize)

	if err = s.acc.Retrieve(id, s.layout.MagicOff(), magic); err != nil {
		return false, wrapFlash("retrieving magic", err)
	}

	return DecodeMagic(magic) == MagicGood, nil
}

// ReadSwapSize recovers the persisted swap size for the image after an
// unexpected reset. Returns ErrNoStatus when no committed record exists.
func (s *Status) ReadSwapSize(image int) (uint32, error) {
	found, err := s.FindStatus(image)
	if err != nil {
		return 0, err
	}

	if !found {
		return 0, fmt.Errorf("%w: image %d", ErrNoStatus, image)
	}

	id, _ := s.fmap.PrimaryID(image)

	var buf [swapSizeLen]byte

	if err = s.acc.Retrieve(id, s.layout.SwapSizeOff(), buf[:]); err != nil {
		return 0, wrapFlash("retrieving swap size", err)
	}

	return binary.LittleEndian.Uint32(buf[:]), nil
}
