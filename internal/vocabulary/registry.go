package vocabulary

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a word or label is not in the registry
var ErrNotFound = errors.New("word not in vocabulary")

// Entry is a single vocabulary word with its label
type Entry struct {
	Word  string `yaml:"word" json:"word"`
	Label int    `yaml:"label" json:"label"`
}

// Registry is an immutable bidirectional word <-> label mapping
type Registry struct {
	byWord  map[string]int
	byLabel map[int]string
}

// defaultWords is the reference vocabulary, indexed by label
var defaultWords = []string{
	"angry", "bye", "crying", "dance", "deciding", "driving", "eating",
	"happy", "hii", "jumping", "laughing", "learning", "planning",
	"playing", "please", "remembering", "running", "sad", "singing",
	"solving problems", "sorry", "stressed", "thinking", "walking",
	"welcome",
}

// DefaultEntries returns the built-in vocabulary entries
func DefaultEntries() []Entry {
	entries := make([]Entry, len(defaultWords))
	for i, w := range defaultWords {
		entries[i] = Entry{Word: w, Label: i}
	}
	return entries
}

// Default returns a registry holding the built-in vocabulary
func Default() *Registry {
	r, err := New(DefaultEntries())
	if err != nil {
		// The built-in table is static; a failure here is a programming error
		panic(fmt.Sprintf("invalid default vocabulary: %v", err))
	}
	return r
}

// New builds a registry from entries. Words must already be normalized
// and both words and labels must be unique.
func New(entries []Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("vocabulary cannot be empty")
	}

	r := &Registry{
		byWord:  make(map[string]int, len(entries)),
		byLabel: make(map[int]string, len(entries)),
	}

	for _, e := range entries {
		if e.Word == "" {
			return nil, fmt.Errorf("vocabulary word cannot be empty (label %d)", e.Label)
		}
		if e.Word != strings.ToLower(strings.TrimSpace(e.Word)) {
			return nil, fmt.Errorf("vocabulary word %q is not normalized", e.Word)
		}
		if e.Label < 0 {
			return nil, fmt.Errorf("vocabulary label for %q must be non-negative, got %d", e.Word, e.Label)
		}
		if _, dup := r.byWord[e.Word]; dup {
			return nil, fmt.Errorf("duplicate vocabulary word %q", e.Word)
		}
		if other, dup := r.byLabel[e.Label]; dup {
			return nil, fmt.Errorf("duplicate vocabulary label %d (%q and %q)", e.Label, other, e.Word)
		}
		r.byWord[e.Word] = e.Label
		r.byLabel[e.Label] = e.Word
	}

	return r, nil
}

// LoadFile reads a YAML vocabulary file of "word: label" pairs
func LoadFile(path string) (*Registry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var raw map[string]int
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(raw))
	for word, label := range raw {
		entries = append(entries, Entry{Word: word, Label: label})
	}
	// Stable order so duplicate-label errors are reproducible
	sort.Slice(entries, func(i, j int) bool { return entries[i].Word < entries[j].Word })

	return New(entries)
}

// Lookup returns the label for an already normalized word
func (r *Registry) Lookup(word string) (int, error) {
	label, ok := r.byWord[word]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, word)
	}
	return label, nil
}

// Word returns the word registered under label
func (r *Registry) Word(label int) (string, error) {
	word, ok := r.byLabel[label]
	if !ok {
		return "", fmt.Errorf("%w: label %d", ErrNotFound, label)
	}
	return word, nil
}

// Entries returns a copy of all entries sorted by label
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, 0, len(r.byWord))
	for word, label := range r.byWord {
		entries = append(entries, Entry{Word: word, Label: label})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Label < entries[j].Label })
	return entries
}

// Len returns the number of words in the registry
func (r *Registry) Len() int {
	return len(r.byWord)
}
