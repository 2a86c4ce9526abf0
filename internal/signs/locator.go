package signs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultSequenceLength is the number of frames in every sign animation
const DefaultSequenceLength = 5

// ErrNotFound is returned when a word has no usable image sequence
var ErrNotFound = errors.New("no sign assets found")

// imageExtensions lists the accepted frame formats (matched case-insensitively)
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Config configures the asset locator
type Config struct {
	BaseDir        string        // Directory holding one folder per word
	SequenceLength int           // Frames per sequence (default 5)
	CacheTTL       time.Duration // Listing cache lifetime, 0 disables caching
}

// Sequence is an ordered list of frame image paths for one word
type Sequence struct {
	Word      string
	Dir       string
	Frames    []string
	Available int // Distinct images found before padding
}

// Padded reports whether the last frame was repeated to fill the sequence
func (s Sequence) Padded() bool {
	return s.Available < len(s.Frames)
}

// Locator resolves words to frame sequences
type Locator struct {
	baseDir        string
	sequenceLength int
	listings       *cache.Cache
}

// NewLocator creates a new asset locator
func NewLocator(cfg Config) *Locator {
	if cfg.SequenceLength <= 0 {
		cfg.SequenceLength = DefaultSequenceLength
	}

	l := &Locator{
		baseDir:        cfg.BaseDir,
		sequenceLength: cfg.SequenceLength,
	}
	if cfg.CacheTTL > 0 {
		l.listings = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return l
}

// Resolve returns exactly SequenceLength frames for word. Images are taken
// in filename order; a short folder is padded by repeating its last image.
func (l *Locator) Resolve(word string) (Sequence, error) {
	dir, err := l.folderFor(word)
	if err != nil {
		return Sequence{}, err
	}

	images, err := l.listImages(dir)
	if err != nil {
		return Sequence{}, err
	}
	if len(images) == 0 {
		return Sequence{}, fmt.Errorf("%w: folder %s has no images", ErrNotFound, dir)
	}

	frames := make([]string, 0, l.sequenceLength)
	frames = append(frames, images...)
	last := images[len(images)-1]
	for len(frames) < l.sequenceLength {
		frames = append(frames, last)
	}
	frames = frames[:l.sequenceLength]

	return Sequence{
		Word:      word,
		Dir:       dir,
		Frames:    frames,
		Available: len(images),
	}, nil
}

// Words lists the asset folder names found in the base directory
func (l *Locator) Words() ([]string, error) {
	entries, err := os.ReadDir(l.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read assets directory: %w", err)
	}

	var words []string
	for _, e := range entries {
		if e.IsDir() {
			words = append(words, strings.ToLower(e.Name()))
		}
	}
	sort.Strings(words)
	return words, nil
}

// folderFor maps word to its asset folder. The lowercase join is tried
// first, then a case-insensitive scan of the base directory.
func (l *Locator) folderFor(word string) (string, error) {
	name := strings.ToLower(word)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid word %q", ErrNotFound, word)
	}

	dir := filepath.Join(l.baseDir, name)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir, nil
	}

	entries, err := os.ReadDir(l.baseDir)
	if err != nil {
		return "", fmt.Errorf("%w: assets directory unavailable: %v", ErrNotFound, err)
	}
	for _, e := range entries {
		if e.IsDir() && strings.EqualFold(e.Name(), name) {
			return filepath.Join(l.baseDir, e.Name()), nil
		}
	}

	return "", fmt.Errorf("%w: no folder for %q", ErrNotFound, word)
}

// listImages returns the sorted image paths in dir
func (l *Locator) listImages(dir string) ([]string, error) {
	if l.listings != nil {
		if cached, ok := l.listings.Get(dir); ok {
			return append([]string(nil), cached.([]string)...), nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrNotFound, dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	images := make([]string, len(names))
	for i, n := range names {
		images[i] = filepath.Join(dir, n)
	}

	if l.listings != nil {
		l.listings.SetDefault(dir, append([]string(nil), images...))
	}
	return images, nil
}
