// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/firmkit/go-swapstatus/flasharea"
)

var eraseCmd = &cobra.Command{
	Use:   "erase <area-id>",
	Short: "Erase the status region and legacy trailer of a slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil {
			return fmt.Errorf("invalid area id %q: %w", args[0], err)
		}

		e, closer, err := openEnv()
		if err != nil {
			return err
		}

		defer closer()

		fap, err := e.opener.Open(flasharea.AreaID(id))
		if err != nil {
			return err
		}

		defer fap.Close() //nolint:errcheck

		if err = e.status.EraseTrailer(fap); err != nil {
			return err
		}

		fmt.Printf("area %d: status region and legacy trailer erased\n", id)

		return nil
	},
}
