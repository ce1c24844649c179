package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foxzi/multiverse/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration is valid")
	fmt.Fprintf(out, "  Listen address: %s (TLS: %v)\n", cfg.Server.ListenAddr, cfg.HasTLS())
	fmt.Fprintf(out, "  Character API: %s (timeout %s)\n", cfg.API.BaseURL, cfg.API.Timeout)
	if cfg.API.RequestsPerSecond > 0 {
		fmt.Fprintf(out, "  Throttle: %.1f req/s, burst %d\n", cfg.API.RequestsPerSecond, cfg.API.Burst)
	} else {
		fmt.Fprintln(out, "  Throttle: unlimited")
	}

	switch {
	case cfg.PersistentCache():
		fmt.Fprintf(out, "  Cache: memory (%d entries) + %s, ttl %s\n", cfg.Cache.MemoryEntries, cfg.Cache.Path, cfg.Cache.TTL)
	case cfg.Cache.Enabled:
		fmt.Fprintf(out, "  Cache: memory (%d entries), ttl %s\n", cfg.Cache.MemoryEntries, cfg.Cache.TTL)
	default:
		fmt.Fprintln(out, "  Cache: disabled")
	}

	fmt.Fprintf(out, "  Sessions: max %d, ttl %s\n", cfg.Session.MaxSessions, cfg.Session.TTL)
	fmt.Fprintf(out, "  Metrics: %v\n", cfg.Metrics.Enabled)
	fmt.Fprintf(out, "  Default language: %s\n", cfg.UI.DefaultLanguage)

	return nil
}
