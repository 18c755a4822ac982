package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/gpqa-eval/internal/history"
)

type historyOptions struct {
	limit int
}

func newHistoryCmd(st *cliState) *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past evaluation runs",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, st, &opts)
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", 20, "max runs to list")

	return cmd
}

func runHistoryList(cmd *cobra.Command, st *cliState, opts *historyOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("history: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("history: nil options")
	}

	store, err := history.NewStore(st.cfg.Paths.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), opts.limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No runs found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tMODEL\tPROVIDER\tDATASET\tQUESTIONS\tCORRECT\tACCURACY\tTOKENS\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%.2f%%\t%d\t%s\n",
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.Model,
			r.Provider,
			r.Dataset,
			r.TotalQuestions,
			r.Correct,
			r.Accuracy*100,
			r.TokensUsed,
			(time.Duration(r.DurationSeconds*float64(time.Second))).Round(time.Second),
		)
	}
	return tw.Flush()
}
