// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/firmkit/go-swapstatus/flasharea"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Decode the swap state record of every image slot",
	RunE: func(_ *cobra.Command, _ []string) error {
		e, closer, err := openEnv()
		if err != nil {
			return err
		}

		defer closer()

		if e.cfg.UUID != uuid.Nil {
			fmt.Printf("flash map: %s\n", e.cfg.UUID)
		}

		fmt.Printf("%-6s %-10s %-6s %-7s %-6s %-10s %-9s\n",
			"AREA", "ROLE", "IMAGE", "MAGIC", "SWAP", "COPY_DONE", "IMAGE_OK")

		for _, a := range e.cfg.Areas {
			if a.Role != flasharea.RolePrimary && a.Role != flasharea.RoleSecondary {
				continue
			}

			state, err := e.status.ReadSwapStateByID(a.ID)
			if err != nil {
				return fmt.Errorf("area %d: %w", a.ID, err)
			}

			fmt.Printf("%-6d %-10s %-6d %-7s %-6s %-10s %-9s\n",
				a.ID, a.Role, *a.Image, state.Magic, state.SwapType, state.CopyDone, state.ImageOK)
		}

		return nil
	},
}
