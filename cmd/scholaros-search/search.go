// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scholaros/search-service/internal/history"
	"github.com/scholaros/search-service/internal/search"
	"github.com/scholaros/search-service/internal/store"
	"github.com/scholaros/search-service/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a ranked search against the local store",
	Long: `Search runs one query through the full ranking pipeline against the
local store and prints the scored results. Useful for debugging why a
result ranks where it does; --json includes the per-result feature
vector the score was computed from.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("types", "", "restrict to result types (comma-separated)")
	searchCmd.Flags().String("workspace", "", "workspace scope id")
	searchCmd.Flags().String("user", "", "user id for personalization")
	searchCmd.Flags().String("page", "", "originating page for contextual boosting (e.g. /today)")
	searchCmd.Flags().Int("limit", 0, "maximum number of results")
	searchCmd.Flags().String("weights", "", "YAML file overriding the default ranking weights")
	searchCmd.Flags().Bool("json", false, "output results as JSON with feature vectors")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := loadServiceConfig()
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if weightsFile, _ := cmd.Flags().GetString("weights"); weightsFile != "" {
		cfg.Ranking.WeightsFile = weightsFile
	}

	weights, err := search.LoadWeights(cfg.Ranking.WeightsFile)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	historyStore, err := history.NewStore(db, cfg.History)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	engine := search.NewEngine(store.NewSources(db, cfg.Search.SourceCap), historyStore, weights, cfg.Search, logger)

	req := search.Request{Query: strings.Join(args, " ")}
	req.Context, _ = cmd.Flags().GetString("page")
	req.Limit, _ = cmd.Flags().GetInt("limit")

	if rawTypes, _ := cmd.Flags().GetString("types"); rawTypes != "" {
		for _, part := range strings.Split(rawTypes, ",") {
			t, parseErr := types.ParseResultType(strings.TrimSpace(part))
			if parseErr != nil {
				return parseErr
			}
			req.Types = append(req.Types, t)
		}
	}

	scope := search.Scope{}
	scope.UserID, _ = cmd.Flags().GetString("user")
	scope.WorkspaceID, _ = cmd.Flags().GetString("workspace")
	req.WorkspaceID = scope.WorkspaceID

	out, err := engine.Search(context.Background(), req, scope)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return search.FormatJSON(out, os.Stdout)
	}
	search.FormatTable(out, os.Stdout)
	return nil
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo workspace fixtures into the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadServiceConfig()
		if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
			cfg.Store.Path = dbPath
		}

		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := store.Seed(context.Background(), db)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d entities into %s\n", n, cfg.Store.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
