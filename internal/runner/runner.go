package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/stellarlinkco/gpqa-eval/internal/answer"
	"github.com/stellarlinkco/gpqa-eval/internal/checkpoint"
	"github.com/stellarlinkco/gpqa-eval/internal/dataset"
	"github.com/stellarlinkco/gpqa-eval/internal/inference"
	"github.com/stellarlinkco/gpqa-eval/internal/llm"
	"github.com/stellarlinkco/gpqa-eval/internal/prompt"
	"github.com/stellarlinkco/gpqa-eval/internal/shuffle"
)

const (
	defaultSaveEvery = 10
	previewLen       = 200
)

// CheckpointStore persists evaluation progress. *checkpoint.Store is the
// file-backed implementation.
type CheckpointStore interface {
	Load() *checkpoint.State
	Save(*checkpoint.State) error
}

// Runner drives the evaluation pipeline over a range of question indices:
// shuffle, format, invoke, extract, compare, checkpoint.
type Runner struct {
	Dataset dataset.Provider
	// Provider performs the model calls; the runner wraps it in a retrying
	// inference client bound to the checkpoint's statistics.
	Provider      llm.Provider
	ClientOptions []inference.Option
	Store         CheckpointStore
	Logger        *log.Logger
	DatasetName   string
	ReportPath    string
	// SaveEvery is the checkpoint cadence in completed questions (default 10).
	SaveEvery int
	// Persist enables checkpoint load/save. One runner covers both the
	// one-shot and the resumable mode.
	Persist bool
}

// Run evaluates the outstanding questions in [startIndex, startIndex+count).
// count <= 0 means through the end of the dataset. Already-completed indices
// are skipped; newly processed ones are checkpointed on the configured
// cadence and once more before returning, whether the range was exhausted or
// the context was canceled.
func (r *Runner) Run(ctx context.Context, startIndex int, count int) (*Report, error) {
	if r == nil {
		return nil, errors.New("runner: nil runner")
	}
	if ctx == nil {
		return nil, errors.New("runner: nil context")
	}
	if r.Dataset == nil {
		return nil, errors.New("runner: nil dataset")
	}
	if r.Provider == nil {
		return nil, errors.New("runner: nil provider")
	}
	if r.Persist && r.Store == nil {
		return nil, errors.New("runner: persistence enabled without a store")
	}
	if startIndex < 0 {
		return nil, fmt.Errorf("runner: negative start index %d", startIndex)
	}

	total := r.Dataset.Len()
	end := total
	if count > 0 && startIndex+count < total {
		end = startIndex + count
	}
	if startIndex >= end {
		return nil, fmt.Errorf("runner: empty range [%d, %d)", startIndex, end)
	}

	var state *checkpoint.State
	if r.Persist {
		state = r.Store.Load()
	} else {
		state = checkpoint.NewState()
	}

	outstanding := make([]int, 0, end-startIndex)
	for i := startIndex; i < end; i++ {
		if !state.IsCompleted(i) {
			outstanding = append(outstanding, i)
		}
	}
	r.logf("evaluating questions %d-%d: %d outstanding, %d already completed",
		startIndex, end-1, len(outstanding), (end-startIndex)-len(outstanding))

	saveEvery := r.SaveEvery
	if saveEvery <= 0 {
		saveEvery = defaultSaveEvery
	}

	client := inference.NewClient(r.Provider, &state.Stats.Stats, r.Logger, r.ClientOptions...)

	var runErr error
	newlyCompleted := 0
	for n, idx := range outstanding {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		questionStart := time.Now()
		r.logf("processing question %d/%d (id=%d)", n+1, len(outstanding), idx)

		rec, err := r.Dataset.Question(idx)
		if err != nil {
			runErr = fmt.Errorf("runner: question %d: %w", idx, err)
			break
		}

		choices := shuffle.Shuffle(rec.CorrectAnswer, rec.IncorrectAnswers, int64(idx))
		promptText := prompt.Format(rec.Question, choices)
		out := client.Invoke(ctx, promptText)

		result := checkpoint.Result{
			QuestionID:      idx,
			QuestionPreview: preview(rec.Question),
			QuestionLength:  len(rec.Question),
			Domain:          rec.Domain,
			Subdomain:       rec.Subdomain,
			Expected:        choices.CorrectLetter,
			APITime:         out.Elapsed.Seconds(),
		}

		if out.OK {
			letter, extracted := answer.Extract(out.Content, len(choices.Options))
			correct := extracted && letter == choices.CorrectLetter
			result.Actual = letter
			result.Correct = &correct
			result.RawResponse = out.Content
			result.Model = out.Model
			result.TokensUsed = out.TotalTokens
			result.ReasoningTokens = out.ReasoningTokens

			verdict := "wrong"
			if correct {
				verdict = "correct"
			}
			r.logf("question %d: %s (expected %s, got %q)", idx, verdict, choices.CorrectLetter, letter)
		} else {
			result.Error = out.Reason
			r.logf("question %d: failed: %s", idx, out.Reason)
		}

		result.TotalTime = time.Since(questionStart).Seconds()
		state.Stats.TotalTime += result.TotalTime
		state.Complete(result)
		newlyCompleted++

		if r.Persist && newlyCompleted%saveEvery == 0 {
			r.save(state)
		}
	}

	// Unconditional final save: a failed periodic save is retried here, and
	// in-memory state stays authoritative either way.
	if r.Persist {
		r.save(state)
	}

	report := BuildReport(state, r.Provider.Model(), r.DatasetName)
	if r.ReportPath != "" {
		if err := report.WriteFile(r.ReportPath); err != nil {
			r.logf("runner: write report: %v", err)
			if runErr == nil {
				runErr = err
			}
		} else {
			r.logf("report written to %s", r.ReportPath)
		}
	}

	r.logSummary(report)
	return report, runErr
}

func (r *Runner) save(state *checkpoint.State) {
	if err := r.Store.Save(state); err != nil {
		// Not fatal: the next cadence boundary retries with in-memory state.
		r.logf("runner: checkpoint save failed: %v", err)
	}
}

func (r *Runner) logSummary(report *Report) {
	if report == nil {
		return
	}
	r.logf("evaluation finished: %d questions, %d correct, accuracy %.2f%%",
		report.TestInfo.TotalQuestions, report.TestInfo.Correct, report.TestInfo.Accuracy*100)
	r.logf("api calls: %d, errors: %d, timeouts: %d, tokens: %d (reasoning: %d)",
		report.Statistics.APICalls, report.Statistics.APIErrors,
		report.Statistics.Timeouts, report.Statistics.TokensUsed,
		report.Statistics.ReasoningTokens)
}

func (r *Runner) logf(format string, args ...any) {
	if r == nil || r.Logger == nil {
		return
	}
	r.Logger.Printf(format, args...)
}

func preview(q string) string {
	runes := []rune(q)
	if len(runes) <= previewLen {
		return q
	}
	return string(runes[:previewLen]) + "..."
}
