package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sprintr-app/sprintr-api/internal/repository"
)

var (
	codeCleanupRe = regexp.MustCompile(`[^a-zA-Z0-9 ]+`)
	lettersOnlyRe = regexp.MustCompile(`[^a-zA-Z]`)
)

func isVowel(ch byte) bool {
	switch ch {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// BuildProjectCode derives a two-letter uppercase prefix from a project
// name. Multi-word names use the initials of the first two words. Single
// words use the first letter plus the first consonant after the first
// vowel, with fallbacks down to the literal "K". Names without letters
// yield "TK".
func BuildProjectCode(projectName string) string {
	cleaned := codeCleanupRe.ReplaceAllString(strings.TrimSpace(projectName), "")
	parts := strings.Fields(cleaned)

	if len(parts) >= 2 {
		return strings.ToUpper(string(parts[0][0]) + string(parts[1][0]))
	}

	single := "TK"
	if len(parts) == 1 {
		single = parts[0]
	}

	letters := lettersOnlyRe.ReplaceAllString(single, "")
	first := "T"
	if letters != "" {
		first = string(letters[0])
	}

	lower := strings.ToLower(letters)
	firstVowel := -1
	for i := 0; i < len(lower); i++ {
		if isVowel(lower[i]) {
			firstVowel = i
			break
		}
	}

	afterVowel := ""
	if firstVowel >= 0 {
		afterVowel = lower[firstVowel+1:]
	} else if len(lower) > 1 {
		afterVowel = lower[1:]
	}

	second := "K"
	if ch, ok := firstConsonant(afterVowel); ok {
		second = string(ch)
	} else if ch, ok := firstConsonant(lower); ok {
		second = string(ch)
	} else if len(lower) > 1 {
		second = string(lower[1])
	}

	return strings.ToUpper(first + second)
}

func firstConsonant(s string) (byte, bool) {
	for i := 0; i < len(s); i++ {
		if ch := s[i]; ch >= 'a' && ch <= 'z' && !isVowel(ch) {
			return ch, true
		}
	}
	return 0, false
}

// NextTaskCode computes the next task code for a project given its prefix:
// the highest existing numeric suffix plus one, zero-padded to two digits.
// The scan and the subsequent insert are separate round trips, so two
// concurrent creations in one project can allocate the same code.
func NextTaskCode(tasks repository.TaskRepository, projectID, prefix string) (string, error) {
	names, err := tasks.NamesByPrefix(projectID, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to list task codes: %w", err)
	}

	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-(\d+)$`)

	maxIndex := 0
	for _, name := range names {
		match := pattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		current, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if current > maxIndex {
			maxIndex = current
		}
	}

	return fmt.Sprintf("%s-%02d", prefix, maxIndex+1), nil
}
