// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package swapstatus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/firmkit/go-swapstatus/swapstatus"
)

func TestDecodeMagic(t *testing.T) {
	assert.Equal(t, swapstatus.MagicGood, swapstatus.DecodeMagic(swapstatus.BootMagic[:]))

	corrupted := swapstatus.BootMagic
	corrupted[7] ^= 0xff

	assert.Equal(t, swapstatus.MagicBad, swapstatus.DecodeMagic(corrupted[:]))
	assert.Equal(t, swapstatus.MagicBad, swapstatus.DecodeMagic(swapstatus.BootMagic[:8]))
}

func TestDecodeFlag(t *testing.T) {
	assert.Equal(t, swapstatus.FlagSet, swapstatus.DecodeFlag(0x01))
	assert.Equal(t, swapstatus.FlagBad, swapstatus.DecodeFlag(0x02))
	assert.Equal(t, swapstatus.FlagBad, swapstatus.DecodeFlag(0xff))
}

func TestSwapInfo(t *testing.T) {
	for _, test := range []struct { //nolint:govet
		name string

		swapType swapstatus.SwapType
		imageNum uint8

		expectedType  swapstatus.SwapType
		expectedImage uint8
	}{
		{"test image 0", swapstatus.SwapTypeTest, 0, swapstatus.SwapTypeTest, 0},
		{"perm image 1", swapstatus.SwapTypePerm, 1, swapstatus.SwapTypePerm, 1},
		{"revert image 3", swapstatus.SwapTypeRevert, 3, swapstatus.SwapTypeRevert, 3},
		{"none image 2", swapstatus.SwapTypeNone, 2, swapstatus.SwapTypeNone, 2},
	} {
		t.Run(test.name, func(t *testing.T) {
			si := swapstatus.MakeSwapInfo(test.swapType, test.imageNum)

			swapType, imageNum := si.Decode()
			assert.Equal(t, test.expectedType, swapType)
			assert.Equal(t, test.expectedImage, imageNum)
		})
	}
}

func TestSwapInfoOutOfRange(t *testing.T) {
	// anything past revert in the low nibble must degrade to none/0,
	// whatever the image bits say
	for _, raw := range []byte{0x05, 0x0f, 0x35, 0xf0} {
		swapType, imageNum := swapstatus.SwapInfo(raw).Decode()

		assert.Equal(t, swapstatus.SwapTypeNone, swapType, "raw=%#x", raw)
		assert.Equal(t, uint8(0), imageNum, "raw=%#x", raw)
	}
}
