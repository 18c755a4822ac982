package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/gpqa-eval/internal/checkpoint"
	"github.com/stellarlinkco/gpqa-eval/internal/config"
	"github.com/stellarlinkco/gpqa-eval/internal/dataset"
	"github.com/stellarlinkco/gpqa-eval/internal/history"
	"github.com/stellarlinkco/gpqa-eval/internal/inference"
	"github.com/stellarlinkco/gpqa-eval/internal/llm"
	"github.com/stellarlinkco/gpqa-eval/internal/runner"
)

type runOptions struct {
	count      int
	startIndex int
	resume     bool
	provider   string
	model      string
	datasetPth string
}

func newRunCmd(st *cliState) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an evaluation over a range of questions",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluation(cmd, st, &opts)
		},
	}

	cmd.Flags().IntVar(&opts.count, "count", 0, "number of questions to evaluate (0 = through the end)")
	cmd.Flags().IntVar(&opts.startIndex, "start-index", 0, "dataset index to start from")
	cmd.Flags().BoolVar(&opts.resume, "resume", true, "load and update the checkpoint file")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "provider: grok|claude (overrides config)")
	cmd.Flags().StringVar(&opts.model, "model", "", "model name (overrides config)")
	cmd.Flags().StringVar(&opts.datasetPth, "dataset", "", "path to the dataset jsonl file (overrides config)")

	return cmd
}

func runEvaluation(cmd *cobra.Command, st *cliState, opts *runOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("run: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("run: nil options")
	}
	cfg := st.cfg

	providerName := strings.TrimSpace(opts.provider)
	if providerName == "" {
		providerName = cfg.Provider
	}
	modelName := strings.TrimSpace(opts.model)
	if modelName == "" {
		modelName = cfg.Model.Name
	}
	datasetPath := strings.TrimSpace(opts.datasetPth)
	if datasetPath == "" {
		datasetPath = cfg.Dataset.Path
	}

	// A missing credential is fatal before any question is touched.
	apiKey, err := config.APIKey(providerName)
	if err != nil {
		return err
	}

	logger, closeLog, err := newRunLogger(cfg.Paths.LogDir)
	if err != nil {
		return err
	}
	defer closeLog()

	ds, err := dataset.LoadFile(datasetPath)
	if err != nil {
		return err
	}
	logger.Printf("loaded %d questions from %s", ds.Len(), datasetPath)

	provider, err := llm.New(providerName, apiKey, cfg.API.BaseURL, modelName, cfg.Model.MaxTokens)
	if err != nil {
		return err
	}
	logger.Printf("provider %s, model %s", provider.Name(), provider.Model())

	reportPath := filepath.Join(cfg.Paths.ReportDir,
		fmt.Sprintf("gpqa_report_%s.json", time.Now().Format(checkpoint.TimestampFormat)))

	r := &runner.Runner{
		Dataset:  ds,
		Provider: provider,
		ClientOptions: []inference.Option{
			inference.WithMaxAttempts(cfg.API.MaxRetries),
			inference.WithBaseDelay(cfg.API.RetryDelay),
			inference.WithAttemptTimeout(cfg.API.Timeout),
		},
		Store:       &checkpoint.Store{Path: cfg.Paths.Checkpoint, Logger: logger},
		Logger:      logger,
		DatasetName: cfg.Dataset.Name,
		ReportPath:  reportPath,
		Persist:     opts.resume,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	startedAt := time.Now()
	report, runErr := r.Run(ctx, opts.startIndex, opts.count)
	if report != nil {
		if err := saveRunHistory(cfg, providerName, report, time.Since(startedAt)); err != nil {
			logger.Printf("run: save history: %v", err)
		}
		printReportSummary(cmd.OutOrStdout(), report)
	}
	if runErr != nil {
		return fmt.Errorf("run: %w", runErr)
	}
	return nil
}

// newRunLogger logs to stderr and to a timestamped file in logDir so an
// interrupted overnight run still leaves a full trace on disk.
func newRunLogger(logDir string) (*log.Logger, func(), error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("run: create log dir: %w", err)
	}

	path := filepath.Join(logDir,
		fmt.Sprintf("gpqa_eval_%s.log", time.Now().Format(checkpoint.TimestampFormat)))
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("run: create log file: %w", err)
	}

	logger := log.New(io.MultiWriter(os.Stderr, f), "", log.LstdFlags)
	return logger, func() { _ = f.Close() }, nil
}

func saveRunHistory(cfg *config.Config, providerName string, report *runner.Report, elapsed time.Duration) error {
	st, err := history.NewStore(cfg.Paths.HistoryDB)
	if err != nil {
		return err
	}
	defer st.Close()

	return st.Save(context.Background(), &history.Run{
		RunTimestamp:    report.TestInfo.Timestamp,
		Model:           report.TestInfo.Model,
		Provider:        providerName,
		Dataset:         report.TestInfo.Dataset,
		TotalQuestions:  report.TestInfo.TotalQuestions,
		Correct:         report.TestInfo.Correct,
		Accuracy:        report.TestInfo.Accuracy,
		TokensUsed:      report.Statistics.TokensUsed,
		ReasoningTokens: report.Statistics.ReasoningTokens,
		DurationSeconds: elapsed.Seconds(),
	})
}

func printReportSummary(out io.Writer, report *runner.Report) {
	if report == nil {
		return
	}
	_, _ = fmt.Fprintf(out, "Model: %s  Dataset: %s\n", report.TestInfo.Model, report.TestInfo.Dataset)
	_, _ = fmt.Fprintf(out, "Questions: %d  Correct: %d  Accuracy: %.2f%%\n",
		report.TestInfo.TotalQuestions, report.TestInfo.Correct, report.TestInfo.Accuracy*100)
	_, _ = fmt.Fprintf(out, "API calls: %d  Errors: %d  Timeouts: %d\n",
		report.Statistics.APICalls, report.Statistics.APIErrors, report.Statistics.Timeouts)
	_, _ = fmt.Fprintf(out, "Tokens: %d (reasoning: %d)\n",
		report.Statistics.TokensUsed, report.Statistics.ReasoningTokens)
}
