// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package fmap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/siderolabs/go-pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firmkit/go-swapstatus/flasharea"
	"github.com/firmkit/go-swapstatus/internal/fmap"
)

const testMap = `
uuid: 3290d4a6-1fd4-4bf5-8272-d371c4b11b52
erased_value: 0xff
status:
  size: 64
  sectors: [40, 24]
areas:
  - { id: 1, role: primary,   image: 0, offset: 0,    size: 1024 }
  - { id: 2, role: secondary, image: 0, offset: 1024, size: 1024 }
  - { id: 3, role: scratch,             offset: 2048, size: 512 }
  - { id: 7, role: status,              offset: 2560, size: 512 }
`

func writeTestMap(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "flashmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestLoad(t *testing.T) {
	cfg, err := fmap.Load(writeTestMap(t, testMap))
	require.NoError(t, err)

	assert.Equal(t, uuid.MustParse("3290d4a6-1fd4-4bf5-8272-d371c4b11b52"), cfg.UUID)
	assert.Equal(t, byte(0xff), cfg.ErasedValue)
	assert.Equal(t, uint32(64), cfg.Status.Size)
	assert.Equal(t, []uint32{40, 24}, cfg.Status.Sectors)

	require.Len(t, cfg.Areas, 4)

	assert.Equal(t, fmap.Area{
		ID:     1,
		Role:   flasharea.RolePrimary,
		Image:  pointer.To(0),
		Offset: 0,
		Size:   1024,
	}, cfg.Areas[0])

	assert.Equal(t, fmap.Area{
		ID:     3,
		Role:   flasharea.RoleScratch,
		Offset: 2048,
		Size:   512,
	}, cfg.Areas[2])
}

func TestLoadInvalid(t *testing.T) {
	for _, test := range []struct {
		name     string
		contents string
	}{
		{"bad role", `
erased_value: 0xff
areas:
  - { id: 1, role: sideways, offset: 0, size: 16 }
`},
		{"slot without image", `
erased_value: 0xff
areas:
  - { id: 1, role: primary, offset: 0, size: 16 }
`},
		{"erased value out of range", `
erased_value: 300
areas:
  - { id: 1, role: scratch, offset: 0, size: 16 }
`},
		{"no areas", `
erased_value: 0xff
areas: []
`},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := fmap.Load(writeTestMap(t, test.contents))
			assert.Error(t, err)
		})
	}
}

func TestConfigWiring(t *testing.T) {
	cfg, err := fmap.Load(writeTestMap(t, testMap))
	require.NoError(t, err)

	m, err := cfg.Map()
	require.NoError(t, err)

	id, ok := m.PrimaryID(0)
	assert.True(t, ok)
	assert.Equal(t, flasharea.AreaID(1), id)

	id, ok = m.StatusID()
	assert.True(t, ok)
	assert.Equal(t, flasharea.AreaID(7), id)

	// back the map with a fully erased flash image file
	imagePath := filepath.Join(t.TempDir(), "flash.bin")

	image := make([]byte, 3072)
	for i := range image {
		image[i] = 0xff
	}

	require.NoError(t, os.WriteFile(imagePath, image, 0o644))

	opener, err := cfg.Opener(imagePath)
	require.NoError(t, err)

	defer opener.Close() //nolint:errcheck

	region, err := cfg.Region(opener, m)
	require.NoError(t, err)

	require.NoError(t, region.Update(1, 0, []byte{0x42}))

	buf := make([]byte, 1)
	require.NoError(t, region.Retrieve(1, 0, buf))
	assert.Equal(t, []byte{0x42}, buf)

	// the write landed inside the status partition window of the image file
	raw, err := os.ReadFile(imagePath)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), raw[2560])
}
