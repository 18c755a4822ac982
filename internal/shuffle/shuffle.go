package shuffle

import (
	"math/rand"
	"strings"
)

// Choice is one lettered answer option.
type Choice struct {
	Letter string
	Text   string
}

// Choices is the shuffled option set for a single question.
type Choices struct {
	Options       []Choice
	CorrectLetter string
}

// Letters returns the option letters in order.
func (c Choices) Letters() []string {
	out := make([]string, 0, len(c.Options))
	for _, opt := range c.Options {
		out = append(out, opt.Letter)
	}
	return out
}

// Shuffle builds a deterministic ordering of the correct answer and the
// non-empty incorrect answers, keyed by the question index. The key is the
// sole seed: the same inputs produce the same ordering in any process, which
// is what lets a resumed run reconstruct the ground-truth letter without
// persisting it.
func Shuffle(correct string, incorrect []string, key int64) Choices {
	type entry struct {
		text    string
		correct bool
	}

	entries := []entry{{text: correct, correct: true}}
	for _, ans := range incorrect {
		if strings.TrimSpace(ans) == "" {
			continue
		}
		entries = append(entries, entry{text: ans})
	}

	rng := rand.New(rand.NewSource(key))
	rng.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})

	out := Choices{Options: make([]Choice, 0, len(entries))}
	for i, e := range entries {
		letter := string(rune('A' + i))
		out.Options = append(out.Options, Choice{Letter: letter, Text: e.text})
		if e.correct {
			out.CorrectLetter = letter
		}
	}
	return out
}
