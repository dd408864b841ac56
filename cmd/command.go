// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zphrs/twizzler-object-store/pkg/debug"
	"github.com/zphrs/twizzler-object-store/pkg/env"
	"github.com/zphrs/twizzler-object-store/pkg/logger"
	"github.com/zphrs/twizzler-object-store/pkg/storage/store"
	"github.com/zphrs/twizzler-object-store/pkg/types"
	"github.com/zphrs/twizzler-object-store/pkg/utils"
)

var rootCmd = &cobra.Command{
	Use:   "tos",
	Short: "tos - a sparse object store on a plain filesystem",
	Long: `tos stores sparse objects as chunk files on an ordinary filesystem.
Each object is a logically huge byte stream; only written ranges occupy
disk, and unwritten gaps read back as zeros.`,
	PersistentPreRun: initializeRuntime,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&utils.ConfigurationFileDirectory, "config_dir", ".", "Directory for configuration files")
	pf.String("path", "", "Store root directory (required)")
	pf.String("catalog", "leveldb", "Object catalog backend (leveldb or memory)")
	pf.Int("debug_port", 0, "Debug/metrics HTTP port (0 = disabled)")

	viper.BindPFlags(pf)
}

// initializeRuntime applies logging and debug-server setup shared by all
// subcommands.
func initializeRuntime(cmd *cobra.Command, args []string) {
	utils.LoadConfiguration("tos", false)

	if env.IsLocal() {
		logger.UseConsoleWriter()
	}

	fl := NewFlagLoader(cmd)
	if port := fl.Int("debug_port"); port > 0 {
		go func() {
			addr := fmt.Sprintf(":%d", port)
			logger.Info().Str("addr", addr).Msg("debug server listening")
			if err := http.ListenAndServe(addr, debug.GetMux()); err != nil {
				logger.Error().Err(err).Msg("debug server exited")
			}
		}()
		debug.SetReady()
	}
}

// openStore builds a Store from the resolved configuration.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	fl := NewFlagLoader(cmd)

	path := fl.String("path")
	if path == "" {
		return nil, fmt.Errorf("--path is required (or set path in the config file)")
	}
	cfg := store.Config{
		Backend: types.BackendConfig{
			Type: types.StorageTypeLocal,
			Path: utils.ResolvePath(path),
		},
		CatalogKind: store.CatalogKind(fl.String("catalog")),
	}
	return store.New(cfg)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
