package animation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/signspeak/internal"
)

const (
	// DefaultFrameSize is the width and height of every output frame
	DefaultFrameSize = 200
	// DefaultFrameDelay is how long each frame is displayed
	DefaultFrameDelay = 500 * time.Millisecond
	// LoopForever is the GIF loop count meaning "repeat indefinitely"
	LoopForever = 0
)

var (
	// ErrAssembly covers empty input and image decode or encode failures
	ErrAssembly = errors.New("animation assembly failed")
	// ErrStorage covers failures creating or writing the output file
	ErrStorage = errors.New("animation storage failed")
)

// Config configures the assembler
type Config struct {
	OutputDir   string        // Directory the GIF files are written to
	PublicURL   string        // URL prefix the output directory is served under
	FrameSize   int           // Square frame edge in pixels (default 200)
	FrameDelay  time.Duration // Per-frame display time (default 500ms)
	Concurrency int           // Parallel frame decodes (default 4)
}

// Artifact describes a written animation
type Artifact struct {
	Name       string
	Path       string
	URL        string
	Frames     int
	FrameDelay time.Duration
	LoopCount  int
}

// Assembler writes looping GIF animations
type Assembler struct {
	cfg Config
}

// NewAssembler creates a new assembler, filling in defaults
func NewAssembler(cfg Config) *Assembler {
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = DefaultFrameSize
	}
	if cfg.FrameDelay <= 0 {
		cfg.FrameDelay = DefaultFrameDelay
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = "/media/"
	}
	return &Assembler{cfg: cfg}
}

// AssembleFiles decodes the frame images at paths and assembles them.
// Repeated paths are decoded once.
func (a *Assembler) AssembleFiles(ctx context.Context, paths []string) (*Artifact, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrAssembly)
	}

	unique := make(map[string]int)
	var order []string
	for _, p := range paths {
		if _, ok := unique[p]; !ok {
			unique[p] = len(order)
			order = append(order, p)
		}
	}

	decoded := make([]image.Image, len(order))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.cfg.Concurrency)
	for i, p := range order {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			img, err := decodeFile(p)
			if err != nil {
				return err
			}
			decoded[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		if errors.Is(err, ErrAssembly) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	frames := make([]image.Image, len(paths))
	for i, p := range paths {
		frames[i] = decoded[unique[p]]
	}
	return a.Assemble(ctx, frames)
}

// Assemble encodes frames as an infinitely looping GIF and writes it to
// the output directory under a new unique name
func (a *Assembler) Assemble(ctx context.Context, frames []image.Image) (*Artifact, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrAssembly)
	}

	delay := int(a.cfg.FrameDelay / (10 * time.Millisecond))
	anim := &gif.GIF{LoopCount: LoopForever}
	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
		}
		if frame == nil || frame.Bounds().Empty() {
			return nil, fmt.Errorf("%w: frame %d is empty", ErrAssembly, i)
		}
		anim.Image = append(anim.Image, a.normalizeFrame(frame))
		anim.Delay = append(anim.Delay, delay)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("%w: encode gif: %v", ErrAssembly, err)
	}

	name := internal.GenerateArtifactName()
	path, err := a.write(name, buf.Bytes())
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Name:       name,
		Path:       path,
		URL:        strings.TrimSuffix(a.cfg.PublicURL, "/") + "/" + name,
		Frames:     len(frames),
		FrameDelay: a.cfg.FrameDelay,
		LoopCount:  LoopForever,
	}, nil
}

// normalizeFrame scales src onto an opaque square canvas and maps it to
// the shared palette
func (a *Assembler) normalizeFrame(src image.Image) *image.Paletted {
	rect := image.Rect(0, 0, a.cfg.FrameSize, a.cfg.FrameSize)

	canvas := image.NewRGBA(rect)
	draw.Draw(canvas, rect, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(canvas, rect, src, src.Bounds(), draw.Over, nil)

	frame := image.NewPaletted(rect, palette.Plan9)
	draw.FloydSteinberg.Draw(frame, rect, canvas, image.Point{})
	return frame
}

// write stores data as name inside the output directory. The file is
// written to a temporary name first so a failed write never leaves a
// partial artifact behind.
func (a *Assembler) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(a.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("%w: create output directory: %v", ErrStorage, err)
	}

	tmp, err := os.CreateTemp(a.cfg.OutputDir, ".sign_result_*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: write gif: %v", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: close gif: %v", ErrStorage, err)
	}

	path := filepath.Join(a.cfg.OutputDir, name)
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: rename gif: %v", ErrStorage, err)
	}
	return path, nil
}

// decodeFile opens and decodes a jpeg or png frame
func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open frame %s: %v", ErrAssembly, filepath.Base(path), err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode frame %s: %v", ErrAssembly, filepath.Base(path), err)
	}
	return img, nil
}
