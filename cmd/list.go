// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(lsCmd, statCmd)
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored objects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		infos, err := s.ListObjectInfos(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "OBJECT\tLENGTH\tSTORED\tRANGES\tUPDATED")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				info.ID,
				humanize.IBytes(info.Length),
				humanize.IBytes(info.StoredBytes),
				info.RangeCount,
				humanize.Time(time.Unix(info.UpdatedAt, 0)),
			)
		}
		return w.Flush()
	},
}

var statCmd = &cobra.Command{
	Use:   "stat <object>",
	Short: "Show one object's length, stored bytes and range count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := resolveObjectID(args[0])

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		info, err := s.Stat(cmd.Context(), id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Object:  %s\n", info.ID)
		fmt.Fprintf(out, "Length:  %d (%s)\n", info.Length, humanize.IBytes(info.Length))
		fmt.Fprintf(out, "Stored:  %d (%s)\n", info.StoredBytes, humanize.IBytes(info.StoredBytes))
		fmt.Fprintf(out, "Ranges:  %d\n", info.RangeCount)
		fmt.Fprintf(out, "Updated: %s\n", time.Unix(info.UpdatedAt, 0).Format(time.RFC3339))
		return nil
	},
}
