// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scholaros/search-service/internal/history"
	"github.com/scholaros/search-service/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear stored search history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show a user's recent searches",
	Long: `List shows a user's most recent searches, deduplicated by normalized
query so repeated identical searches appear once with their latest
timestamp.`,
	RunE: runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete a user's search history",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.PersistentFlags().String("user", "", "user id (required)")
	historyCmd.PersistentFlags().String("workspace", "", "restrict to one workspace")

	historyListCmd.Flags().Int("limit", 0, "maximum entries to show")
	historyListCmd.Flags().Bool("selected-only", false, "only searches that led to a selection")
	historyListCmd.Flags().Bool("json", false, "output as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func historyStoreFromFlags(cmd *cobra.Command) (*history.Store, func(), string, error) {
	userID, _ := cmd.Flags().GetString("user")
	if userID == "" {
		return nil, nil, "", fmt.Errorf("--user is required")
	}

	cfg := loadServiceConfig()
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.Store.Path = dbPath
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, "", err
	}

	historyStore, err := history.NewStore(db, cfg.History)
	if err != nil {
		db.Close()
		return nil, nil, "", err
	}
	return historyStore, func() { db.Close() }, userID, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	historyStore, closeStore, userID, err := historyStoreFromFlags(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := history.RecentOptions{}
	opts.WorkspaceID, _ = cmd.Flags().GetString("workspace")
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	opts.SelectedOnly, _ = cmd.Flags().GetBool("selected-only")

	recents, err := historyStore.Recent(context.Background(), userID, opts)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recents)
	}

	if len(recents) == 0 {
		fmt.Println("No history.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-40s  %-12s  %-8s  %s\n", "Query", "Type", "Picked", "Last searched")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 84))
	for _, r := range recents {
		query := r.Query
		if len(query) > 40 {
			query = query[:37] + "..."
		}
		picked := ""
		if r.Selected {
			picked = "yes"
		}
		fmt.Fprintf(os.Stdout, "%-40s  %-12s  %-8s  %s\n",
			query, r.ResultType, picked, r.LastSearchedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	historyStore, closeStore, userID, err := historyStoreFromFlags(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	workspaceID, _ := cmd.Flags().GetString("workspace")
	deleted, err := historyStore.Clear(context.Background(), userID, workspaceID)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d entries\n", deleted)
	return nil
}
