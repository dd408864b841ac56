// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zphrs/twizzler-object-store/pkg/types"
)

func init() {
	configIDCmd.AddCommand(configIDGetCmd, configIDSetCmd)
	rootCmd.AddCommand(configIDCmd)
}

var configIDCmd = &cobra.Command{
	Use:   "config-id",
	Short: "Get or set the store's configured id",
}

var configIDGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the configured store id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		id, ok, err := s.ConfigID(cmd.Context())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no config id set")
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var configIDSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Set the configured store id (32 hex characters)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := types.ParseObjectID(args[0])
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.SetConfigID(cmd.Context(), id)
	},
}
