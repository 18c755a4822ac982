package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// gpqaRow mirrors the preprocessed GPQA JSONL field names, which keep the
// upstream dataset's column headers.
type gpqaRow struct {
	Question         string `json:"Question"`
	CorrectAnswer    string `json:"Correct Answer"`
	IncorrectAnswer1 string `json:"Incorrect Answer 1"`
	IncorrectAnswer2 string `json:"Incorrect Answer 2"`
	IncorrectAnswer3 string `json:"Incorrect Answer 3"`
	Domain           string `json:"High-level domain"`
	Subdomain        string `json:"Subdomain"`
}

// FileProvider serves questions from a preprocessed GPQA JSONL file. The
// question index is the zero-based line number, stable across runs.
type FileProvider struct {
	records []Record
}

// LoadFile reads a GPQA JSONL file into a FileProvider.
func LoadFile(path string) (*FileProvider, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("dataset: empty path")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	var records []Record
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var row gpqaRow
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("dataset: parse %q line %d: %w", path, lineNo, err)
		}

		records = append(records, Record{
			Question:      strings.TrimSpace(row.Question),
			CorrectAnswer: strings.TrimSpace(row.CorrectAnswer),
			IncorrectAnswers: []string{
				strings.TrimSpace(row.IncorrectAnswer1),
				strings.TrimSpace(row.IncorrectAnswer2),
				strings.TrimSpace(row.IncorrectAnswer3),
			},
			Domain:    strings.TrimSpace(row.Domain),
			Subdomain: strings.TrimSpace(row.Subdomain),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: %q contains no questions", path)
	}

	return &FileProvider{records: records}, nil
}

func (p *FileProvider) Len() int {
	if p == nil {
		return 0
	}
	return len(p.records)
}

func (p *FileProvider) Question(index int) (Record, error) {
	if p == nil {
		return Record{}, errors.New("dataset: nil provider")
	}
	if index < 0 || index >= len(p.records) {
		return Record{}, fmt.Errorf("dataset: index %d out of range (have %d questions)", index, len(p.records))
	}
	return p.records[index], nil
}
