// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var findImage int

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Check whether a committed swap status record exists for an image",
	RunE: func(_ *cobra.Command, _ []string) error {
		e, closer, err := openEnv()
		if err != nil {
			return err
		}

		defer closer()

		found, err := e.status.FindStatus(findImage)
		if err != nil {
			return err
		}

		if !found {
			fmt.Printf("image %d: no committed status record\n", findImage)

			return nil
		}

		size, err := e.status.ReadSwapSize(findImage)
		if err != nil {
			return err
		}

		fmt.Printf("image %d: committed status record, swap size %d\n", findImage, size)

		return nil
	},
}

func init() {
	findCmd.Flags().IntVar(&findImage, "image-index", 0, "image to look up")
}
