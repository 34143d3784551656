// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholaros-search CLI: the
// global search service for the scholaros workspace platform. The serve
// subcommand hosts the HTTP API; search, history, and seed work against
// the local store for operations and ranking debugging.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the scholaros-search CLI.
var rootCmd = &cobra.Command{
	Use:   "scholaros-search",
	Short: "Global search ranking service for scholaros workspaces",
	Long: `scholaros-search ranks heterogeneous workspace entities (tasks, projects,
grants, publications, navigation) against a query with a weighted linear
model personalized by each user's search history.

serve hosts the HTTP API. search, history, and seed operate on the local
store directly for debugging ranking behavior and inspecting history.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholaros-search.yaml or ~/.config/scholaros-search/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "path to the SQLite database (default: scholaros.db)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholaros-search")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholaros-search"))
		}
	}

	viper.SetEnvPrefix("SCHOLAROS_SEARCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
