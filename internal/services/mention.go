package services

import (
	"regexp"
	"strings"
)

// Mentions look like "@jane@example.com": an @ followed by an email whose
// TLD is at least two letters.
var mentionEmailRe = regexp.MustCompile(`@([\w.+-]+@[\w.-]+\.[A-Za-z]{2,})`)

// ExtractMentionEmails scans comment text for @email mentions and returns
// the matched addresses lowercased and de-duplicated, in order of first
// appearance.
func ExtractMentionEmails(text string) []string {
	matches := mentionEmailRe.FindAllStringSubmatch(text, -1)

	seen := make(map[string]struct{}, len(matches))
	emails := make([]string, 0, len(matches))
	for _, match := range matches {
		email := strings.ToLower(match[1])
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		emails = append(emails, email)
	}

	return emails
}
