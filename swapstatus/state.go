// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package swapstatus

// Magic is the tri-state decoded from the trailer magic field.
type Magic uint8

// Magic states.
const (
	// MagicGood means the full canonical pattern is present: every field of
	// the record's update group was durably written.
	MagicGood Magic = 1
	// MagicBad means the field holds something other than the pattern.
	MagicBad Magic = 2
	// MagicUnset means the field is still fully erased.
	MagicUnset Magic = 3
)

// String implements fmt.Stringer.
func (m Magic) String() string {
	switch m {
	case MagicGood:
		return "good"
	case MagicBad:
		return "bad"
	case MagicUnset:
		return "unset"
	default:
		return "invalid"
	}
}

// Flag is the tri-state decoded from a one-byte trailer flag.
type Flag uint8

// Flag states.
const (
	FlagSet   Flag = 1
	FlagBad   Flag = 2
	FlagUnset Flag = 3
)

// String implements fmt.Stringer.
func (f Flag) String() string {
	switch f {
	case FlagSet:
		return "set"
	case FlagBad:
		return "bad"
	case FlagUnset:
		return "unset"
	default:
		return "invalid"
	}
}

// SwapType is the kind of swap recorded for a slot.
type SwapType uint8

// Swap types.
const (
	// SwapTypeNone means no swap is in progress.
	SwapTypeNone SwapType = 1
	// SwapTypeTest swaps in the new image for one boot.
	SwapTypeTest SwapType = 2
	// SwapTypePerm swaps in the new image permanently.
	SwapTypePerm SwapType = 3
	// SwapTypeRevert swaps the original image back in.
	SwapTypeRevert SwapType = 4
)

// String implements fmt.Stringer.
func (t SwapType) String() string {
	switch t {
	case SwapTypeNone:
		return "none"
	case SwapTypeTest:
		return "test"
	case SwapTypePerm:
		return "perm"
	case SwapTypeRevert:
		return "revert"
	default:
		return "invalid"
	}
}

// SwapState is the decoded view of the persisted trailer fields for one
// image slot. It is recomputed fresh on every read; no copy survives across
// boots.
type SwapState struct {
	Magic    Magic
	SwapType SwapType
	ImageNum uint8
	CopyDone Flag
	ImageOK  Flag
}

// Op is the kind of copy operation the swap algorithm is performing.
type Op uint8

// Operations.
const (
	OpCopy Op = iota
	OpMove
)

// Source identifies which area holds the authoritative in-progress status.
type Source uint8

// Status sources.
const (
	SourceNone Source = iota
	SourcePrimarySlot
)

// BootStatus is the swap algorithm's transient progress record.
//
// The subsystem persists and restores only the step counter, swap type, swap
// size and encryption key blobs; the remaining fields are owned by the
// caller.
type BootStatus struct {
	Op    Op
	Idx   uint32
	State uint8

	Image int

	SwapType SwapType
	SwapSize uint32

	UseScratch bool

	// EncKeys holds one opaque key blob per slot; used only when the layout
	// reserves encryption key space.
	EncKeys [2][]byte

	Source Source
}
