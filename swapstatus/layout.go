// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package swapstatus

// swapSizeLen is the width of the swap_size field.
const swapSizeLen = 4

// Layout captures the dimensions of one status sub-region and derives field
// offsets from them. All methods are pure arithmetic: no I/O, no failure
// modes, no dependence on sector boundaries (sector spanning is the
// accessor's job).
//
// Fields are packed backward from the end of the region:
//
//	[.. enc keys ..][swap_size: 4][swap_info: 1][copy_done: 1][image_ok: 1][magic: MagicSize] <- end
//
// The step-progress byte is the exception: it is addressed from the start of
// the region (StatusOff).
type Layout struct {
	// RawSize is the raw size of one status sub-region.
	RawSize uint32
	// MagicSize is the width of the magic field.
	MagicSize uint32
	// KeySize is the width of one encryption key blob; zero when images are
	// not encrypted.
	KeySize uint32
	// MaxAlign is the flash write alignment, used only for legacy trailer
	// geometry.
	MaxAlign uint32
}

// DefaultLayout returns a layout with the standard 16-byte magic, 8-byte
// alignment and no encryption key space.
func DefaultLayout(rawSize uint32) Layout {
	return Layout{
		RawSize:   rawSize,
		MagicSize: uint32(len(BootMagic)),
		MaxAlign:  8,
	}
}

// MagicOff is the offset of the magic field.
func (l Layout) MagicOff() uint32 {
	return l.RawSize - l.MagicSize
}

// ImageOKOff is the offset of the image_ok flag.
func (l Layout) ImageOKOff() uint32 {
	return l.MagicOff() - 1
}

// CopyDoneOff is the offset of the copy_done flag.
func (l Layout) CopyDoneOff() uint32 {
	return l.ImageOKOff() - 1
}

// SwapInfoOff is the offset of the packed swap_info byte.
func (l Layout) SwapInfoOff() uint32 {
	return l.CopyDoneOff() - 1
}

// SwapSizeOff is the offset of the swap_size field.
func (l Layout) SwapSizeOff() uint32 {
	return l.SwapInfoOff() - swapSizeLen
}

// EncKeyOff is the offset of the encryption key blob for a slot.
func (l Layout) EncKeyOff(slot int) uint32 {
	return l.SwapSizeOff() - uint32(slot+1)*l.KeySize
}

// StatusOff is the offset of the step-progress bytes. They count from the
// start of the region, unlike every other field.
func (l Layout) StatusOff() uint32 {
	return 0
}

// LegacyMagicOff is the offset of the magic field of the legacy on-slot
// trailer, for a slot of the given size.
func (l Layout) LegacyMagicOff(slotSize uint32) uint32 {
	return slotSize - l.MagicSize
}

// LegacyImageOKOff is the offset of the image_ok flag of the legacy on-slot
// trailer.
func (l Layout) LegacyImageOKOff(slotSize uint32) uint32 {
	return slotSize - l.MagicSize - l.MaxAlign
}

// TrailerSize is the width of the legacy trailer at the tail of a slot:
// magic plus one alignment-padded unit per flag plus swap_size, plus key
// blobs when encryption is in use.
func (l Layout) TrailerSize() uint32 {
	size := l.MagicSize + 3*l.MaxAlign + swapSizeLen

	if l.KeySize > 0 {
		size += 2 * l.KeySize
	}

	return size
}
