// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package swapstatus persists the progress of an in-flight firmware image
// swap in a dedicated flash status partition, so that a reboot at any point,
// including mid-write, can be resumed or rolled back.
//
// Correctness rests on write ordering, not locking: the subsystem runs
// single-threaded before any OS exists, and the hazard is a power loss
// between any two flash writes. Every multi-field update therefore ends with
// the magic write; a record whose magic is present is fully committed, a
// record without it is not a record.
//
// Records previously lived at the tail of each image slot. That legacy
// trailer remains a read-only migration source: a value found there is
// copied into the status partition on first observation and the legacy copy
// is erased.
package swapstatus

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/firmkit/go-swapstatus/flasharea"
	"github.com/firmkit/go-swapstatus/statusarea"
)

// Errors surfaced by the subsystem.
//
// Flash I/O failures always wrap ErrFlash and are never retried here; retry
// policy belongs to the driver. Ambiguous stored bytes are never errors: they
// decode to MagicBad/FlagUnset/SwapTypeNone and the caller applies its own
// safe-default policy.
var (
	// ErrFlash wraps any failed read, write or erase of the flash layer.
	ErrFlash = errors.New("flash operation failed")
	// ErrBadArea means an operation was invoked on an area it is not valid
	// for. This is corrupted control state, not a transient fault.
	ErrBadArea = errors.New("flash area is not valid for this operation")
	// ErrNoStatus means no committed status record exists.
	ErrNoStatus = errors.New("no swap status record found")
	// ErrNoStepReader means ReadStatus was called without a step reader.
	ErrNoStepReader = errors.New("no step reader configured")
)

func wrapFlash(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFlash, op, err)
}

// StepReader reconstructs the resumable step counter of a boot status from
// the raw step-progress bytes. It is supplied by the swap algorithm, since
// the byte encoding of steps depends on the copy strategy in use.
type StepReader interface {
	ReadStatusBytes(fap flasharea.Area, bs *BootStatus) error
}

// SourceFunc decides which area, if any, holds the authoritative in-progress
// status for the current boot.
type SourceFunc func() Source

// Status is the handle to the swap status subsystem for one flash map.
type Status struct {
	opener flasharea.Opener
	acc    statusarea.Accessor
	fmap   *flasharea.Map
	layout Layout

	logger *zap.Logger
	source SourceFunc
	steps  StepReader
}

// Option configures a Status.
type Option func(*Status)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Status) {
		s.logger = logger
	}
}

// WithSourceFunc sets the status source policy used by ReadStatus.
func WithSourceFunc(f SourceFunc) Option {
	return func(s *Status) {
		s.source = f
	}
}

// WithStepReader sets the step-progress reader used by ReadStatus.
func WithStepReader(r StepReader) Option {
	return func(s *Status) {
		s.steps = r
	}
}

// New creates a Status over the given flash layer.
func New(opener flasharea.Opener, acc statusarea.Accessor, fmap *flasharea.Map, layout Layout, opts ...Option) *Status {
	s := &Status{
		opener: opener,
		acc:    acc,
		fmap:   fmap,
		layout: layout,
		logger: zap.NewNop(),
		source: func() Source { return SourceNone },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Layout returns the status region layout in use.
func (s *Status) Layout() Layout {
	return s.layout
}

func zapAreaID(id flasharea.AreaID) zap.Field {
	return zap.Uint8("area", uint8(id))
}

func zapOff(key string, off uint32) zap.Field {
	return zap.Uint32(key, off)
}

func (s *Status) openStatusArea() (flasharea.Area, error) {
	id, ok := s.fmap.StatusID()
	if !ok {
		return nil, fmt.Errorf("%w: flash map has no status partition", ErrBadArea)
	}

	fap, err := s.opener.Open(id)
	if err != nil {
		return nil, wrapFlash("opening status partition", err)
	}

	return fap, nil
}
