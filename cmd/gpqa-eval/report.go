package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/gpqa-eval/internal/checkpoint"
	"github.com/stellarlinkco/gpqa-eval/internal/runner"
)

type reportOptions struct {
	checkpointPath string
	output         string
}

func newReportCmd(st *cliState) *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Rebuild the report from the checkpoint without any API calls",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.checkpointPath, "checkpoint", "", "checkpoint file to read (overrides config)")
	cmd.Flags().StringVar(&opts.output, "output", "", "report file path (default: timestamped file in the report dir)")

	return cmd
}

func runReport(cmd *cobra.Command, st *cliState, opts *reportOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("report: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("report: nil options")
	}
	cfg := st.cfg

	checkpointPath := strings.TrimSpace(opts.checkpointPath)
	if checkpointPath == "" {
		checkpointPath = cfg.Paths.Checkpoint
	}

	store := &checkpoint.Store{Path: checkpointPath}
	state := store.Load()
	if state.CompletedCount() == 0 {
		return fmt.Errorf("report: no completed questions in checkpoint %q", checkpointPath)
	}

	report := runner.BuildReport(state, reportModel(state, cfg.Model.Name), cfg.Dataset.Name)

	path := strings.TrimSpace(opts.output)
	if path == "" {
		path = filepath.Join(cfg.Paths.ReportDir,
			fmt.Sprintf("gpqa_report_%s.json", time.Now().Format(checkpoint.TimestampFormat)))
	}
	if err := report.WriteFile(path); err != nil {
		return err
	}

	printReportSummary(cmd.OutOrStdout(), report)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
	return nil
}

// reportModel prefers the model recorded in the checkpoint results over the
// configured one, since the checkpoint may predate a config change.
func reportModel(state *checkpoint.State, fallback string) string {
	for _, r := range state.SortedResults() {
		if strings.TrimSpace(r.Model) != "" {
			return r.Model
		}
	}
	return fallback
}
