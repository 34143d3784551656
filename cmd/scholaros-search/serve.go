// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scholaros/search-service/internal/history"
	"github.com/scholaros/search-service/internal/search"
	"github.com/scholaros/search-service/internal/server"
	"github.com/scholaros/search-service/internal/store"
	"github.com/scholaros/search-service/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host the search HTTP API",
	Long: `Serve hosts the search and history endpoints. Each search request fans
out to the per-type candidate sources and the personalization signal
builder concurrently; a degraded source reduces result completeness
instead of failing the request. History writes happen on a background
worker pool and never block a response.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8090)")
	serveCmd.Flags().String("weights", "", "YAML file overriding the default ranking weights")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}

	cfg := loadServiceConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if weightsFile, _ := cmd.Flags().GetString("weights"); weightsFile != "" {
		cfg.Ranking.WeightsFile = weightsFile
	}
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.Store.Path = dbPath
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

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
	recorder, err := history.NewRecorder(historyStore, cfg.History.Workers, logger)
	if err != nil {
		return err
	}

	engine := search.NewEngine(store.NewSources(db, cfg.Search.SourceCap), historyStore, weights, cfg.Search, logger)
	srv := server.New(engine, historyStore, recorder, logger)

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("search service listening", "addr", cfg.Server.Addr, "db", cfg.Store.Path)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		recorder.Close()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown", "error", err)
	}

	// Drain queued history writes before releasing the store.
	if err := recorder.Close(); err != nil {
		logger.Warn("recorder drain", "error", err)
	}
	return nil
}

// loadServiceConfig merges the built-in defaults with any values set in
// the viper config file or SCHOLAROS_SEARCH_* environment.
func loadServiceConfig() types.ServiceConfig {
	cfg := types.DefaultServiceConfig()

	if v := viper.GetString("server.addr"); v != "" {
		cfg.Server.Addr = v
	}
	if d := viper.GetDuration("server.read_timeout"); d > 0 {
		cfg.Server.ReadTimeout = d
	}
	if d := viper.GetDuration("server.write_timeout"); d > 0 {
		cfg.Server.WriteTimeout = d
	}
	if v := viper.GetString("store.path"); v != "" {
		cfg.Store.Path = v
	}
	if n := viper.GetInt("search.default_limit"); n > 0 {
		cfg.Search.DefaultLimit = n
	}
	if n := viper.GetInt("search.max_limit"); n > 0 {
		cfg.Search.MaxLimit = n
	}
	if n := viper.GetInt("search.result_cap"); n > 0 {
		cfg.Search.ResultCap = n
	}
	if n := viper.GetInt("search.source_cap"); n > 0 {
		cfg.Search.SourceCap = n
	}
	if d := viper.GetDuration("search.source_timeout"); d > 0 {
		cfg.Search.SourceTimeout = d
	}
	if n := viper.GetInt("history.window"); n > 0 {
		cfg.History.Window = n
	}
	if n := viper.GetInt("history.recent_default_limit"); n > 0 {
		cfg.History.RecentDefaultLimit = n
	}
	if n := viper.GetInt("history.recent_max_limit"); n > 0 {
		cfg.History.RecentMaxLimit = n
	}
	if n := viper.GetInt("history.workers"); n > 0 {
		cfg.History.Workers = n
	}
	if v := viper.GetString("ranking.weights_file"); v != "" {
		cfg.Ranking.WeightsFile = v
	}
	return cfg
}
