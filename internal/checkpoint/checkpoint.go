package checkpoint

import (
	"sort"
	"time"

	"github.com/stellarlinkco/gpqa-eval/internal/inference"
)

// TimestampFormat is the run identifier layout, e.g. "20250830_142501".
const TimestampFormat = "20060102_150405"

// Stats is the persisted statistics block: cumulative wall-clock time plus
// the inference client's call-level counters.
type Stats struct {
	TotalTime float64 `json:"total_time"`
	inference.Stats
}

// Result is one processed question, immutable once appended.
type Result struct {
	QuestionID      int     `json:"question_id"`
	QuestionPreview string  `json:"question_preview"`
	QuestionLength  int     `json:"question_length"`
	Domain          string  `json:"domain,omitempty"`
	Subdomain       string  `json:"subdomain,omitempty"`
	Expected        string  `json:"expected"`
	Actual          string  `json:"actual,omitempty"`
	RawResponse     string  `json:"raw_response,omitempty"`
	Correct         *bool   `json:"correct,omitempty"`
	Model           string  `json:"model,omitempty"`
	APITime         float64 `json:"api_time"`
	TotalTime       float64 `json:"total_time"`
	TokensUsed      int     `json:"tokens_used,omitempty"`
	ReasoningTokens int     `json:"reasoning_tokens,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// State is the full checkpointed progress of an evaluation.
type State struct {
	Timestamp          string   `json:"timestamp"`
	CompletedQuestions []int    `json:"completed_questions"`
	Results            []Result `json:"results"`
	Stats              Stats    `json:"stats"`
	LastSaved          string   `json:"last_saved"`

	completed map[int]bool
}

// NewState returns an empty state stamped with a fresh run identifier.
func NewState() *State {
	return &State{
		Timestamp: time.Now().Format(TimestampFormat),
		completed: make(map[int]bool),
	}
}

// reindex rebuilds the completed-set lookup after deserialization.
func (s *State) reindex() {
	s.completed = make(map[int]bool, len(s.CompletedQuestions))
	for _, id := range s.CompletedQuestions {
		s.completed[id] = true
	}
}

// IsCompleted reports whether a question index has already been processed.
func (s *State) IsCompleted(index int) bool {
	if s == nil {
		return false
	}
	return s.completed[index]
}

// CompletedCount returns the number of completed questions.
func (s *State) CompletedCount() int {
	if s == nil {
		return 0
	}
	return len(s.CompletedQuestions)
}

// Complete appends a result and marks its question index completed. The
// index is a dedup key: completing an already-completed index is a no-op
// that returns false, keeping the completed set and the result list in sync.
func (s *State) Complete(r Result) bool {
	if s == nil {
		return false
	}
	if s.completed == nil {
		s.completed = make(map[int]bool)
	}
	if s.completed[r.QuestionID] {
		return false
	}
	s.completed[r.QuestionID] = true
	s.CompletedQuestions = append(s.CompletedQuestions, r.QuestionID)
	s.Results = append(s.Results, r)
	return true
}

// SortedResults returns the results ordered by question index. Across resumed
// runs the append order is not globally sorted, so reports sort at build time.
func (s *State) SortedResults() []Result {
	if s == nil {
		return nil
	}
	out := make([]Result, len(s.Results))
	copy(out, s.Results)
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}
