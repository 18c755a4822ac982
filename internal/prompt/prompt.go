package prompt

import (
	"strings"

	"github.com/stellarlinkco/gpqa-eval/internal/shuffle"
)

// Format renders a question and its shuffled choices into the text sent to
// the model, ending with an instruction to answer with a single letter drawn
// from the actual letter set.
func Format(question string, choices shuffle.Choices) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\n\n")

	for _, opt := range choices.Options {
		sb.WriteString(opt.Letter)
		sb.WriteString(". ")
		sb.WriteString(strings.TrimSpace(opt.Text))
		sb.WriteByte('\n')
	}

	sb.WriteString("\nAnswer with only the letter (")
	sb.WriteString(letterList(choices.Letters()))
	sb.WriteString(").")
	return sb.String()
}

func letterList(letters []string) string {
	switch len(letters) {
	case 0:
		return ""
	case 1:
		return letters[0]
	default:
		return strings.Join(letters[:len(letters)-1], ", ") + " or " + letters[len(letters)-1]
	}
}
