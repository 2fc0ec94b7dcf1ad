package source

import (
	"encoding/json"
	"os"
	"strings"
	"unicode/utf8"
)

// DefaultLatestFiles is how many of the most recent files LatestResponse checks.
const DefaultLatestFiles = 5

// LatestResponse returns an excerpt of the most recent assistant text
// response. files must be ordered newest first, as Scan returns them; only
// the first maxFiles are checked, each from its last line backwards. Text
// blocks are joined with a space and the result is cut to maxChars runes
// with a trailing "..." when longer.
func LatestResponse(files []DiscoveredFile, maxFiles, maxChars int) (string, bool) {
	if maxFiles <= 0 {
		maxFiles = DefaultLatestFiles
	}
	if len(files) > maxFiles {
		files = files[:maxFiles]
	}

	for _, df := range files {
		if text, ok := latestInFile(df.Path); ok {
			return truncateRunes(text, maxChars), true
		}
	}
	return "", false
}

func latestInFile(path string) (string, bool) {
	f, err := os.Open(path) //nolint:gosec // path comes from Scan
	if err != nil {
		return "", false
	}
	defer func() { _ = f.Close() }()

	var lines [][]byte
	if _, err := eachLine(f, func(line []byte) {
		if typ, found := extractTopLevelType(line); found && typ != "assistant" {
			return
		}
		lines = append(lines, append([]byte(nil), line...))
	}); err != nil && len(lines) == 0 {
		return "", false
	}

	for i := len(lines) - 1; i >= 0; i-- {
		var entry contentEntry
		if err := json.Unmarshal(lines[i], &entry); err != nil {
			continue
		}
		if entry.Type != "assistant" || entry.Message == nil || entry.Message.Role != "assistant" {
			continue
		}

		var parts []string
		for _, b := range entry.Message.Content {
			if b.Kind == BlockText {
				parts = append(parts, b.Text)
			}
		}
		if text := strings.TrimSpace(strings.Join(parts, " ")); text != "" {
			return text, true
		}
	}
	return "", false
}

func truncateRunes(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
