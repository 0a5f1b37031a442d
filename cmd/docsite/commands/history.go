package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit   int    `short:"n" help:"Number of builds to list" default:"10"`
	BuildID string `arg:"" optional:"" name:"build-id" help:"Print the JSON report of one build"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "failed to open build history").
			WithContext("path", cfg.History.Path).
			Build()
	}
	defer func() { _ = store.Close() }()

	if h.BuildID != "" {
		rec, err := store.Get(g.Ctx, h.BuildID)
		if err != nil {
			return errors.WrapError(err, errors.CategoryStorage, "failed to load build").
				WithContext("build_id", h.BuildID).
				Build()
		}
		_, err = fmt.Fprintln(g.Stdout, string(rec.Report))
		return err
	}

	records, err := store.Recent(g.Ctx, max(h.Limit, 1))
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "failed to list builds").Build()
	}
	if len(records) == 0 {
		_, err = fmt.Fprintln(g.Stdout, "No builds recorded")
		return err
	}
	tw := tabwriter.NewWriter(g.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD ID\tSTARTED\tDURATION\tOUTCOME\tPAGES\tWRITTEN\tDIAGNOSTICS")
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.BuildID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration.Round(time.Millisecond),
			r.Outcome, r.Pages, r.Written, r.Diagnostics)
	}
	return tw.Flush()
}
