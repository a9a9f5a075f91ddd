// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package statusarea_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firmkit/go-swapstatus/flasharea"
	"github.com/firmkit/go-swapstatus/statusarea"
)

func newRegion(t *testing.T) (*statusarea.Region, *flasharea.MemArea) {
	t.Helper()

	area := flasharea.NewMemArea(7, 256)

	region, err := statusarea.NewRegion(area, []uint32{40, 24}, 64, []flasharea.AreaID{1, 2, 3})
	require.NoError(t, err)

	return region, area
}

func TestRegionGeometry(t *testing.T) {
	region, _ := newRegion(t)

	assert.Equal(t, uint32(64), region.StatusSize())
	assert.Equal(t, []statusarea.Sector{{Off: 0, Size: 40}, {Off: 40, Size: 24}}, region.Sectors())

	off, ok := region.InitOffset(1)
	assert.True(t, ok)
	assert.Zero(t, off)

	off, ok = region.InitOffset(3)
	assert.True(t, ok)
	assert.Equal(t, uint32(128), off)

	_, ok = region.InitOffset(9)
	assert.False(t, ok)
}

func TestRegionRoundTrip(t *testing.T) {
	region, area := newRegion(t)

	// a write spanning the 40/24 sector boundary of area 2's sub-region
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, region.Update(2, 36, payload))

	buf := make([]byte, len(payload))
	require.NoError(t, region.Retrieve(2, 36, buf))
	assert.Equal(t, payload, buf)

	// lands at its sub-region's position inside the partition
	assert.Equal(t, payload, area.Bytes()[64+36:64+44])

	// neighbours untouched
	require.NoError(t, region.Retrieve(1, 36, buf))
	assert.True(t, flasharea.IsErased(area, buf))
	require.NoError(t, region.Retrieve(3, 36, buf))
	assert.True(t, flasharea.IsErased(area, buf))
}

func TestRegionBounds(t *testing.T) {
	region, _ := newRegion(t)

	buf := make([]byte, 8)

	require.Error(t, region.Retrieve(1, 60, buf))
	require.Error(t, region.Update(1, 64, buf[:1]))
	require.ErrorIs(t, region.Retrieve(9, 0, buf), flasharea.ErrUnknownArea)
}

func TestRegionValidation(t *testing.T) {
	area := flasharea.NewMemArea(7, 256)

	// geometry smaller than the sub-region
	_, err := statusarea.NewRegion(area, []uint32{16, 16}, 64, []flasharea.AreaID{1})
	require.Error(t, err)

	// geometry larger than the sub-region: sector-granular erasing of one
	// sub-region would spill into the next
	_, err = statusarea.NewRegion(area, []uint32{40, 88}, 64, []flasharea.AreaID{1, 2})
	require.Error(t, err)

	// partition too small for all sub-regions
	_, err = statusarea.NewRegion(area, []uint32{64}, 64, []flasharea.AreaID{1, 2, 3, 4, 5})
	require.Error(t, err)

	// duplicate tracked area
	_, err = statusarea.NewRegion(area, []uint32{64}, 64, []flasharea.AreaID{1, 1})
	require.Error(t, err)

	// zero-sized sector
	_, err = statusarea.NewRegion(area, []uint32{64, 0}, 64, []flasharea.AreaID{1})
	require.Error(t, err)

	// no geometry at all
	_, err = statusarea.NewRegion(area, nil, 64, []flasharea.AreaID{1})
	require.Error(t, err)
}
