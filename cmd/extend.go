// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(extendCmd)
}

var extendCmd = &cobra.Command{
	Use:   "extend <dst> <src>",
	Short: "Append src's contents onto dst and consume src",
	Long: `Concatenate two objects: src's ranges are shifted past dst's logical
end and moved into dst, then src is deleted. Gaps in src stay gaps in dst.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dst := resolveObjectID(args[0])
		src := resolveObjectID(args[1])

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ExtendWith(cmd.Context(), dst, src); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "extended %s with %s\n", dst, src)
		return nil
	},
}
