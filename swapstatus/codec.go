// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package swapstatus

import "bytes"

// BootMagic is the canonical trailer magic. Its presence at the tail of a
// record commits the record: it is always the last field written in a group.
var BootMagic = [16]byte{
	0x77, 0xc2, 0x95, 0xf3,
	0x60, 0xd2, 0xef, 0x7f,
	0x35, 0x52, 0x50, 0x0f,
	0x2c, 0xb6, 0x79, 0x80,
}

// flagSetValue is the single byte meaning "flag granted".
const flagSetValue = 0x01

// DecodeMagic decodes magic bytes already known to be non-erased.
func DecodeMagic(p []byte) Magic {
	if bytes.Equal(p, BootMagic[:]) {
		return MagicGood
	}

	return MagicBad
}

// DecodeFlag decodes a flag byte already known to be non-erased.
func DecodeFlag(b byte) Flag {
	if b != flagSetValue {
		return FlagBad
	}

	return FlagSet
}

// SwapInfo is the packed swap_info byte: swap type in the low nibble, image
// number in the high nibble.
type SwapInfo byte

const (
	swapTypeMask  = 0x0f
	imageNumShift = 4
)

// MakeSwapInfo packs a swap type and image number into a swap_info byte.
func MakeSwapInfo(t SwapType, imageNum uint8) SwapInfo {
	return SwapInfo(byte(t)&swapTypeMask | imageNum<<imageNumShift)
}

// Decode unpacks the swap type and image number.
//
// An out-of-range swap type never surfaces: it degrades to SwapTypeNone with
// image number zero, so higher-level logic sees "swap not started".
func (si SwapInfo) Decode() (SwapType, uint8) {
	t := SwapType(byte(si) & swapTypeMask)

	if t < SwapTypeNone || t > SwapTypeRevert {
		return SwapTypeNone, 0
	}

	return t, byte(si) >> imageNumShift
}
