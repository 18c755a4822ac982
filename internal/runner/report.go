package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stellarlinkco/gpqa-eval/internal/checkpoint"
)

// TestInfo summarizes one evaluation for the report header.
type TestInfo struct {
	Timestamp      string  `json:"timestamp"`
	Model          string  `json:"model"`
	Dataset        string  `json:"dataset"`
	TotalQuestions int     `json:"total_questions"`
	Correct        int     `json:"correct"`
	Accuracy       float64 `json:"accuracy"`
}

// Statistics extends the checkpoint stats with derived per-question averages.
type Statistics struct {
	checkpoint.Stats
	AverageTimePerQuestion   float64 `json:"average_time_per_question"`
	AverageTokensPerQuestion float64 `json:"average_tokens_per_question"`
}

// Report is the final structured output of an evaluation.
type Report struct {
	TestInfo        TestInfo            `json:"test_info"`
	Statistics      Statistics          `json:"statistics"`
	DetailedResults []checkpoint.Result `json:"detailed_results"`
}

// BuildReport derives the final report from checkpoint state. Accuracy counts
// only results that carry a correctness verdict: questions whose API call
// failed outright are excluded from the denominator.
func BuildReport(state *checkpoint.State, model string, datasetName string) *Report {
	if state == nil {
		state = checkpoint.NewState()
	}

	results := state.SortedResults()

	correct := 0
	scored := 0
	for _, r := range results {
		if r.Correct == nil {
			continue
		}
		scored++
		if *r.Correct {
			correct++
		}
	}

	accuracy := 0.0
	if scored > 0 {
		accuracy = float64(correct) / float64(scored)
	}

	stats := Statistics{Stats: state.Stats}
	if n := len(results); n > 0 {
		var totalTime float64
		for _, r := range results {
			totalTime += r.TotalTime
		}
		stats.AverageTimePerQuestion = totalTime / float64(n)
		stats.AverageTokensPerQuestion = float64(state.Stats.TokensUsed) / float64(n)
	}

	return &Report{
		TestInfo: TestInfo{
			Timestamp:      state.Timestamp,
			Model:          model,
			Dataset:        datasetName,
			TotalQuestions: len(results),
			Correct:        correct,
			Accuracy:       accuracy,
		},
		Statistics:      stats,
		DetailedResults: results,
	}
}

// WriteFile writes the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	if r == nil {
		return errors.New("runner: nil report")
	}
	if path == "" {
		return errors.New("runner: empty report path")
	}

	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("runner: marshal report: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("runner: create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("runner: write report: %w", err)
	}
	return nil
}
