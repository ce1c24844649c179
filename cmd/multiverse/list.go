package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/foxzi/multiverse/internal/catalog"
	"github.com/foxzi/multiverse/internal/config"
	"github.com/foxzi/multiverse/internal/query"
	"github.com/foxzi/multiverse/internal/rickmorty"
	"github.com/foxzi/multiverse/internal/viewer"
	"github.com/foxzi/multiverse/internal/web/i18n"
	"github.com/foxzi/multiverse/internal/web/views"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of characters",
	Example: `  multiverse list --status alive --page 2
  multiverse list --name rick --lang pt-BR`,
	RunE: runList,
}

var (
	listFilters catalog.FilterSet
	cliLang     string
)

func init() {
	listCmd.Flags().StringVar(&listFilters.Name, "name", "", "Filter by name (substring)")
	listCmd.Flags().StringVar(&listFilters.Status, "status", "", "Filter by status (alive, dead, unknown)")
	listCmd.Flags().StringVar(&listFilters.Species, "species", "", "Filter by species")
	listCmd.Flags().StringVar(&listFilters.Type, "type", "", "Filter by type")
	listCmd.Flags().StringVar(&listFilters.Gender, "gender", "", "Filter by gender (female, male, genderless, unknown)")
	listCmd.Flags().IntVar(&listFilters.Page, "page", 1, "Page number")
	listCmd.Flags().StringVar(&cliLang, "lang", "", "Output language (defaults to ui.default_language)")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return err
	}

	printer, err := cliPrinter(cfg, cliLang)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Logging)
	store := query.NewStore(listFilters.Normalized())

	c := viewer.New(newAPIClient(cfg), store, logger)
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout+time.Second)
	defer cancel()

	if err := c.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for character API: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "?%s\n\n", store.String())
	return printPage(cmd.OutOrStdout(), printer, c.Snapshot())
}

// printPage writes a snapshot as an aligned table
func printPage(w io.Writer, p *message.Printer, snap viewer.Snapshot) error {
	switch snap.State {
	case viewer.Failed:
		return errors.New(snap.Error)
	case viewer.Loading:
		return errors.New("character API did not answer in time")
	case viewer.Empty:
		fmt.Fprintln(w, p.Sprintf("state.empty"))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\t%s\t%s\t%s\n",
		p.Sprintf("column.name"), p.Sprintf("column.status"),
		p.Sprintf("column.species"), p.Sprintf("column.gender"))

	for _, c := range snap.Page.Characters {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name,
			label(p, views.StatusLabel(c.Status), c.Status),
			c.Species,
			label(p, views.GenderLabel(c.Gender), c.Gender))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s · %s\n",
		p.Sprintf("pagination.label", snap.Page.CurrentPage, snap.Page.TotalPages),
		p.Sprintf("catalog.count", snap.Page.Count))
	return nil
}

// label translates key, falling back to raw for values without a key
func label(p *message.Printer, key, raw string) string {
	if key == "" {
		return raw
	}
	return p.Sprintf(key)
}

func cliPrinter(cfg *config.Config, lang string) (*message.Printer, error) {
	bundle, err := i18n.LoadEmbedded(cfg.UI.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	tag := bundle.Default()
	if lang != "" {
		t, ok := bundle.Parse(lang)
		if !ok {
			return nil, fmt.Errorf("unsupported language %q", lang)
		}
		tag = t
	}
	return bundle.Printer(tag), nil
}

// newAPIClient builds an uncached client; the persistent cache file
// belongs to the server process
func newAPIClient(cfg *config.Config) *rickmorty.Client {
	return rickmorty.NewClient(rickmorty.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		UserAgent:         cfg.API.UserAgent,
	})
}
