// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/firmkit/go-swapstatus/flasharea"
	"github.com/firmkit/go-swapstatus/internal/fmap"
	"github.com/firmkit/go-swapstatus/swapstatus"
)

var (
	mapPath   string
	imagePath string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "swapctl",
	Short: "Inspect and maintain swap status partitions in flash images",
	Long: `swapctl decodes the swap status partition of a firmware flash image:
the per-slot trailer records a secure bootloader keeps while swapping images,
so that a power loss at any point can be resumed or rolled back.

The flash layout is described by a flash map YAML file (see --map).`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&mapPath, "map", "m", "flashmap.yaml", "path to the flash map file")
	rootCmd.PersistentFlags().StringVarP(&imagePath, "image-file", "f", "", "path to the raw flash image")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(
		dumpCmd,
		findCmd,
		eraseCmd,
	)
}

type env struct {
	cfg    *fmap.Config
	opener *flasharea.FileOpener
	status *swapstatus.Status
}

// openEnv wires the flash image, map and subsystem together. The returned
// close function releases the image file lock.
func openEnv() (*env, func(), error) {
	if imagePath == "" {
		return nil, nil, fmt.Errorf("--image-file is required")
	}

	cfg, err := fmap.Load(mapPath)
	if err != nil {
		return nil, nil, err
	}

	fm, err := cfg.Map()
	if err != nil {
		return nil, nil, err
	}

	opener, err := cfg.Opener(imagePath)
	if err != nil {
		return nil, nil, err
	}

	region, err := cfg.Region(opener, fm)
	if err != nil {
		opener.Close() //nolint:errcheck

		return nil, nil, err
	}

	logger := zap.NewNop()

	if verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			opener.Close() //nolint:errcheck

			return nil, nil, err
		}
	}

	layout := swapstatus.DefaultLayout(cfg.Status.Size)

	e := &env{
		cfg:    cfg,
		opener: opener,
		status: swapstatus.New(opener, region, fm, layout, swapstatus.WithLogger(logger)),
	}

	closer := func() {
		opener.Close() //nolint:errcheck
	}

	return e, closer, nil
}
