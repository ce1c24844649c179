package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/foxzi/multiverse/internal/config"
	"github.com/foxzi/multiverse/internal/rickmorty"
	"github.com/foxzi/multiverse/internal/web/views"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one character",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&cliLang, "lang", "", "Output language (defaults to ui.default_language)")
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := rickmorty.ParseID(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return err
	}

	printer, err := cliPrinter(cfg, cliLang)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout)
	defer cancel()

	character, err := newAPIClient(cfg).GetCharacter(ctx, id)
	if err != nil {
		return err
	}

	return printDetail(cmd.OutOrStdout(), printer, views.CharacterDetail(*character))
}

func printDetail(w io.Writer, p *message.Printer, d views.Detail) error {
	unknown := p.Sprintf("detail.unknown")
	orUnknown := func(s string) string {
		if s == "" {
			return unknown
		}
		return s
	}

	fmt.Fprintf(w, "#%d %s\n\n", d.ID, d.Name)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", p.Sprintf("column.status"), label(p, d.StatusLabel, d.Status))
	fmt.Fprintf(tw, "%s\t%s\n", p.Sprintf("column.species"), d.Species)
	if d.Type != "" {
		fmt.Fprintf(tw, "%s\t%s\n", p.Sprintf("filter.type"), d.Type)
	}
	fmt.Fprintf(tw, "%s\t%s\n", p.Sprintf("column.gender"), label(p, d.GenderLabel, d.Gender))
	fmt.Fprintf(tw, "%s\t%s\n", p.Sprintf("detail.origin"), orUnknown(d.Origin))
	fmt.Fprintf(tw, "%s\t%s\n", p.Sprintf("detail.location"), orUnknown(d.Location))
	fmt.Fprintf(tw, "%s\t%d %s\n", p.Sprintf("detail.total_episodes"), d.EpisodeCount, progressBar(d.Progress))
	fmt.Fprintf(tw, "%s\t%s\n", p.Sprintf("detail.first_seen"), orUnknown(d.FirstEpisode))
	if d.ShowLast {
		fmt.Fprintf(tw, "%s\t%s\n", p.Sprintf("detail.last_seen"), d.LastEpisode)
	}
	return tw.Flush()
}

// progressBar draws percent as a 20 cell bar
func progressBar(percent int) string {
	filled := percent / 5
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", 20-filled) + fmt.Sprintf("] %d%%", percent)
}
