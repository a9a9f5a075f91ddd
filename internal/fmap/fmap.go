// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package fmap loads flash map descriptions for the inspection tooling.
//
// A flash map is a YAML document describing how a raw flash image file is
// carved into areas, plus the geometry of the status region:
//
//	uuid: 3290d4a6-1fd4-4bf5-8272-d371c4b11b52
//	erased_value: 0xff
//	status:
//	  size: 64
//	  sectors: [40, 24]
//	areas:
//	  - { id: 1, role: primary,   image: 0, offset: 0,     size: 4096 }
//	  - { id: 2, role: secondary, image: 0, offset: 4096,  size: 4096 }
//	  - { id: 3, role: scratch,            offset: 8192,  size: 1024 }
//	  - { id: 7, role: status,             offset: 9216,  size: 1024 }
package fmap

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/siderolabs/gen/xslices"
	"github.com/spf13/viper"

	"github.com/firmkit/go-swapstatus/flasharea"
	"github.com/firmkit/go-swapstatus/statusarea"
)

// Config is a parsed flash map.
type Config struct {
	// UUID identifies the flash map.
	UUID uuid.UUID
	// ErasedValue is the byte the flash reads as after an erase.
	ErasedValue byte

	Status StatusRegion
	Areas  []Area
}

// StatusRegion is the geometry of one status sub-region.
type StatusRegion struct {
	Size    uint32
	Sectors []uint32
}

// Area is one flash area of the map.
type Area struct {
	ID   flasharea.AreaID
	Role flasharea.Role
	// Image is set for primary and secondary slots only.
	Image *int

	Offset int64
	Size   uint32
}

type rawConfig struct {
	UUID        string    `mapstructure:"uuid"`
	ErasedValue int       `mapstructure:"erased_value"`
	Status      rawStatus `mapstructure:"status"`
	Areas       []rawArea `mapstructure:"areas"`
}

type rawStatus struct {
	Size    uint32   `mapstructure:"size"`
	Sectors []uint32 `mapstructure:"sectors"`
}

type rawArea struct {
	ID     uint8  `mapstructure:"id"`
	Role   string `mapstructure:"role"`
	Image  *int   `mapstructure:"image"`
	Offset int64  `mapstructure:"offset"`
	Size   uint32 `mapstructure:"size"`
}

func parseRole(s string) (flasharea.Role, error) {
	switch s {
	case "primary":
		return flasharea.RolePrimary, nil
	case "secondary":
		return flasharea.RoleSecondary, nil
	case "scratch":
		return flasharea.RoleScratch, nil
	case "status":
		return flasharea.RoleStatus, nil
	default:
		return flasharea.RoleUnknown, fmt.Errorf("unknown area role %q", s)
	}
}

// Load reads and validates a flash map file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading flash map: %w", err)
	}

	var raw rawConfig

	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("parsing flash map: %w", err)
	}

	cfg := &Config{
		Status: StatusRegion(raw.Status),
	}

	if raw.UUID != "" {
		id, err := uuid.Parse(raw.UUID)
		if err != nil {
			return nil, fmt.Errorf("parsing flash map uuid: %w", err)
		}

		cfg.UUID = id
	}

	if raw.ErasedValue < 0 || raw.ErasedValue > 0xff {
		return nil, fmt.Errorf("erased_value %d out of byte range", raw.ErasedValue)
	}

	cfg.ErasedValue = byte(raw.ErasedValue)

	if len(raw.Areas) == 0 {
		return nil, errors.New("flash map declares no areas")
	}

	for _, a := range raw.Areas {
		role, err := parseRole(a.Role)
		if err != nil {
			return nil, fmt.Errorf("area %d: %w", a.ID, err)
		}

		if (role == flasharea.RolePrimary || role == flasharea.RoleSecondary) && a.Image == nil {
			return nil, fmt.Errorf("area %d: %s slot needs an image number", a.ID, role)
		}

		cfg.Areas = append(cfg.Areas, Area{
			ID:     flasharea.AreaID(a.ID),
			Role:   role,
			Image:  a.Image,
			Offset: a.Offset,
			Size:   a.Size,
		})
	}

	return cfg, nil
}

// Map builds the slot role map for this flash map.
func (c *Config) Map() (*flasharea.Map, error) {
	entries := xslices.Map(c.Areas, func(a Area) flasharea.MapEntry {
		e := flasharea.MapEntry{ID: a.ID, Role: a.Role}

		if a.Image != nil {
			e.Image = *a.Image
		}

		return e
	})

	return flasharea.NewMap(entries...)
}

// Opener builds a file-backed opener over the flash image at path.
func (c *Config) Opener(path string) (*flasharea.FileOpener, error) {
	opener, err := flasharea.NewFileOpener(path, c.ErasedValue)
	if err != nil {
		return nil, err
	}

	for _, a := range c.Areas {
		if err = opener.AddArea(a.ID, a.Offset, a.Size); err != nil {
			opener.Close() //nolint:errcheck

			return nil, err
		}
	}

	return opener, nil
}

// Region builds the status-region accessor over the opened status partition.
func (c *Config) Region(opener flasharea.Opener, m *flasharea.Map) (*statusarea.Region, error) {
	id, ok := m.StatusID()
	if !ok {
		return nil, errors.New("flash map has no status partition")
	}

	area, err := opener.Open(id)
	if err != nil {
		return nil, err
	}

	return statusarea.NewRegion(area, c.Status.Sectors, c.Status.Size, m.NonStatusIDs())
}
