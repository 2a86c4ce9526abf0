package batch

import (
	"fmt"
	"os"
	"strings"
)

// WordEntry is one line of a batch file
type WordEntry struct {
	Text string
	// Expected is the sign the text should resolve to, empty if unchecked
	Expected string
	Line     int
}

// ReadBatchFile reads words from a file and returns WordEntry slice
// Supports formats:
// - Text only: "Bye"
// - With expected sign: "good bye = bye" (the rendered sign is checked)
// Lines starting with '#' are comments.
func ReadBatchFile(filename string) ([]WordEntry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return ParseBatch(string(content)), nil
}

// ParseBatch parses batch file content
func ParseBatch(content string) []WordEntry {
	var entries []WordEntry

	for i, line := range splitLines(content) {
		line = trimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry := WordEntry{Text: line, Line: i + 1}
		if strings.Contains(line, "=") {
			parts := strings.SplitN(line, "=", 2)
			entry.Text = trimSpace(parts[0])
			entry.Expected = strings.ToLower(trimSpace(parts[1]))
			if entry.Text == "" {
				// "= sign" renders the sign name itself
				entry.Text = entry.Expected
			}
		}
		if entry.Text == "" {
			continue
		}
		entries = append(entries, entry)
	}

	return entries
}

// splitLines splits a string by newlines
func splitLines(s string) []string {
	var lines []string
	current := ""
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current)
			current = ""
		} else if r != '\r' {
			current += string(r)
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// trimSpace trims whitespace from string
func trimSpace(s string) string {
	start := 0
	end := len(s)

	// Trim from start
	for start < end && isSpace(rune(s[start])) {
		start++
	}

	// Trim from end
	for end > start && isSpace(rune(s[end-1])) {
		end--
	}

	return s[start:end]
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
