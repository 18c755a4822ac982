package answer

import "strings"

// Extract parses free-form model output into a single choice letter.
//
// Policy: after trimming, an exact single valid letter wins; otherwise the
// first standalone valid letter in a left-to-right scan is taken. Letters
// embedded in words do not count. This is deliberately lenient because models
// often prepend reasoning before the letter, at the known cost of misreading
// a distractor letter quoted before the real answer.
func Extract(raw string, numChoices int) (string, bool) {
	if numChoices <= 0 {
		return "", false
	}
	if numChoices > 26 {
		numChoices = 26
	}
	maxLetter := byte('A' + numChoices - 1)

	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	if len(s) == 1 && s[0] >= 'A' && s[0] <= maxLetter {
		return s, true
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > maxLetter {
			continue
		}
		prevOK := i == 0 || !isAlphaNum(s[i-1])
		nextOK := i+1 == len(s) || !isAlphaNum(s[i+1])
		if prevOK && nextOK {
			return string(c), true
		}
	}
	return "", false
}

func isAlphaNum(b byte) bool {
	return (b >= 'A' && b <= 'Z') ||
		(b >= 'a' && b <= 'z') ||
		(b >= '0' && b <= '9')
}
