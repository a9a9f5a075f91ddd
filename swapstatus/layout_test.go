// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package swapstatus_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/firmkit/go-swapstatus/swapstatus"
)

func TestLayoutOffsets(t *testing.T) {
	for _, rawSize := range []uint32{23, 64, 128, 1024, 4096} {
		t.Run(fmt.Sprintf("rawSize=%d", rawSize), func(t *testing.T) {
			l := swapstatus.DefaultLayout(rawSize)

			assert.Equal(t, rawSize-16, l.MagicOff())
			assert.Equal(t, rawSize-17, l.ImageOKOff())
			assert.Equal(t, rawSize-18, l.CopyDoneOff())
			assert.Equal(t, rawSize-19, l.SwapInfoOff())
			assert.Equal(t, rawSize-23, l.SwapSizeOff())
			assert.Equal(t, uint32(0), l.StatusOff())
		})
	}
}

func TestLayoutEncKeyOffsets(t *testing.T) {
	l := swapstatus.Layout{RawSize: 128, MagicSize: 16, KeySize: 16, MaxAlign: 8}

	assert.Equal(t, l.SwapSizeOff()-16, l.EncKeyOff(0))
	assert.Equal(t, l.SwapSizeOff()-32, l.EncKeyOff(1))
}

func TestLayoutLegacyGeometry(t *testing.T) {
	l := swapstatus.DefaultLayout(64)

	const slotSize = 4096

	assert.Equal(t, uint32(slotSize-16), l.LegacyMagicOff(slotSize))
	assert.Equal(t, uint32(slotSize-16-8), l.LegacyImageOKOff(slotSize))

	// magic + three aligned flag units + swap_size
	assert.Equal(t, uint32(16+3*8+4), l.TrailerSize())

	withKeys := swapstatus.Layout{RawSize: 128, MagicSize: 16, KeySize: 16, MaxAlign: 8}
	assert.Equal(t, uint32(16+3*8+4+2*16), withKeys.TrailerSize())
}
