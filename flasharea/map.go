// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package flasharea

import (
	"fmt"
	"slices"
)

// Role describes what a flash area is used for.
type Role int

// Slot roles.
const (
	RoleUnknown Role = iota
	// RolePrimary is the slot the device boots from.
	RolePrimary
	// RoleSecondary is the upgrade-style slot holding the image to swap in.
	RoleSecondary
	// RoleScratch is the temporary area used while swapping.
	RoleScratch
	// RoleStatus is the dedicated swap status partition.
	RoleStatus
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleSecondary:
		return "secondary"
	case RoleScratch:
		return "scratch"
	case RoleStatus:
		return "status"
	case RoleUnknown:
		fallthrough
	default:
		return "unknown"
	}
}

// Slot is the role of an area together with the image it belongs to.
//
// Image is meaningful only for primary and secondary slots.
type Slot struct {
	Role  Role
	Image int
}

// MapEntry declares a single area of a flash map.
type MapEntry struct {
	ID    AreaID
	Role  Role
	Image int
}

// Map resolves area ids to slot roles and back.
//
// It replaces hardcoded area-id switches with an explicit role lookup, so the
// subsystem can reason about "upgrade-style slot" instead of concrete ids.
type Map struct {
	slots     map[AreaID]Slot
	primary   map[int]AreaID
	secondary map[int]AreaID

	scratch, status AreaID

	hasScratch, hasStatus bool
}

// NewMap builds a Map from the supplied entries.
func NewMap(entries ...MapEntry) (*Map, error) {
	m := &Map{
		slots:     map[AreaID]Slot{},
		primary:   map[int]AreaID{},
		secondary: map[int]AreaID{},
	}

	for _, e := range entries {
		if _, dup := m.slots[e.ID]; dup {
			return nil, fmt.Errorf("duplicate area id %d in flash map", e.ID)
		}

		m.slots[e.ID] = Slot{Role: e.Role, Image: e.Image}

		switch e.Role {
		case RolePrimary:
			if _, dup := m.primary[e.Image]; dup {
				return nil, fmt.Errorf("duplicate primary slot for image %d", e.Image)
			}

			m.primary[e.Image] = e.ID
		case RoleSecondary:
			if _, dup := m.secondary[e.Image]; dup {
				return nil, fmt.Errorf("duplicate secondary slot for image %d", e.Image)
			}

			m.secondary[e.Image] = e.ID
		case RoleScratch:
			if m.hasScratch {
				return nil, fmt.Errorf("duplicate scratch area %d", e.ID)
			}

			m.scratch, m.hasScratch = e.ID, true
		case RoleStatus:
			if m.hasStatus {
				return nil, fmt.Errorf("duplicate status partition %d", e.ID)
			}

			m.status, m.hasStatus = e.ID, true
		case RoleUnknown:
			fallthrough
		default:
			return nil, fmt.Errorf("area %d has no role", e.ID)
		}
	}

	return m, nil
}

// Lookup returns the slot description for an area id.
func (m *Map) Lookup(id AreaID) (Slot, bool) {
	s, ok := m.slots[id]

	return s, ok
}

// PrimaryID returns the primary slot area id for an image.
func (m *Map) PrimaryID(image int) (AreaID, bool) {
	id, ok := m.primary[image]

	return id, ok
}

// SecondaryID returns the secondary (upgrade) slot area id for an image.
func (m *Map) SecondaryID(image int) (AreaID, bool) {
	id, ok := m.secondary[image]

	return id, ok
}

// ScratchID returns the scratch area id.
func (m *Map) ScratchID() (AreaID, bool) {
	return m.scratch, m.hasScratch
}

// StatusID returns the status partition area id.
func (m *Map) StatusID() (AreaID, bool) {
	return m.status, m.hasStatus
}

// NonStatusIDs returns the ids of all areas except the status partition, in
// ascending id order. These are the areas that can own a record in the status
// region.
func (m *Map) NonStatusIDs() []AreaID {
	ids := make([]AreaID, 0, len(m.slots))

	for id, slot := range m.slots {
		if slot.Role == RoleStatus {
			continue
		}

		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}
