package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foxzi/multiverse/internal/cache"
	"github.com/foxzi/multiverse/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Response cache commands",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached API responses",
	RunE:  runCachePurge,
}

var cacheExpiredOnly bool

func init() {
	cachePurgeCmd.Flags().BoolVar(&cacheExpiredOnly, "expired", false, "Only delete entries older than cache.ttl")
	cacheCmd.AddCommand(cachePurgeCmd)
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return err
	}
	if cfg.Cache.Path == "" {
		return errors.New("no persistent cache configured (cache.path is empty)")
	}

	storage, err := cache.NewBoltStorage(cfg.Cache.Path, cfg.Cache.TTL)
	if err != nil {
		return err
	}
	defer storage.Close()

	var deleted int
	if cacheExpiredOnly {
		deleted, err = storage.CleanupExpired(context.Background())
	} else {
		deleted, err = storage.Purge()
	}
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d cached responses from %s\n", deleted, cfg.Cache.Path)
	return nil
}
