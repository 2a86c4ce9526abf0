package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestDirectory creates a temporary directory structure for testing
func CreateTestDirectory(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()

	dirs := []string{
		"assets",
		"media",
		"history",
	}

	for _, dir := range dirs {
		path := filepath.Join(tempDir, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			t.Fatalf("Failed to create test directory %s: %v", path, err)
		}
	}

	return tempDir
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// FrameName returns the fixture filename of the n-th frame (1-based)
func FrameName(n int) string {
	return fmt.Sprintf("frame_%02d.png", n)
}

// SolidImage returns a w x h image filled with c
func SolidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// FrameColor returns a distinct colour for the n-th fixture frame
func FrameColor(n int) color.RGBA {
	return color.RGBA{R: uint8(40 * n), G: uint8(255 - 30*n), B: uint8(17 * n), A: 255}
}

// WritePNG encodes img as a PNG file at path
func WritePNG(t *testing.T, path string, img image.Image) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
}

// CreateSignFolder creates baseDir/word holding n decodable PNG frames
// named frame_01.png ... frame_NN.png, each a different size and colour
func CreateSignFolder(t *testing.T, baseDir, word string, n int) string {
	t.Helper()

	dir := filepath.Join(baseDir, word)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create sign folder: %v", err)
	}

	for i := 1; i <= n; i++ {
		img := SolidImage(32+4*i, 24+2*i, FrameColor(i))
		WritePNG(t, filepath.Join(dir, FrameName(i)), img)
	}

	return dir
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertDirEmpty checks that dir is missing or holds no entries
func AssertDirEmpty(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}
	if len(entries) > 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("Expected %s to be empty, found: %s", dir, strings.Join(names, ", "))
	}
}

// CountFiles returns the number of regular files in dir with the given suffix
func CountFiles(t *testing.T, dir, suffix string) int {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}

	count := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			count++
		}
	}
	return count
}
