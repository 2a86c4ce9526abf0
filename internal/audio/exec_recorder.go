package audio

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
)

// captureGrace is extra time the recorder process gets to flush and exit
const captureGrace = 2 * time.Second

// ExecRecorder captures audio by running an external recorder
type ExecRecorder struct {
	command string
	config  *Config
}

// NewExecRecorder creates a recorder that runs config.Command
func NewExecRecorder(config *Config) (*ExecRecorder, error) {
	command := strings.TrimSpace(config.Command)
	if command == "" {
		command = DefaultCommand
	}

	// Parse once up front so configuration errors surface at startup
	if _, err := parseCommand(command, config, DefaultDuration); err != nil {
		return nil, err
	}

	return &ExecRecorder{command: command, config: config}, nil
}

// Name returns the recorder name
func (r *ExecRecorder) Name() string {
	args, err := parseCommand(r.command, r.config, DefaultDuration)
	if err != nil || len(args) == 0 {
		return "exec"
	}
	return "exec:" + args[0]
}

// Record runs the recorder command for d and returns its PCM output
func (r *ExecRecorder) Record(ctx context.Context, d time.Duration) (*Clip, error) {
	if d <= 0 {
		return nil, fmt.Errorf("capture duration must be positive, got %v", d)
	}

	args, err := parseCommand(r.command, r.config, d)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d+captureGrace)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("recorder %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}

	pcm := stdout.Bytes()
	if limit := ExpectedBytes(d, r.config.SampleRate, r.config.Channels); len(pcm) > limit {
		pcm = pcm[:limit]
	}
	if len(pcm)%2 != 0 {
		pcm = pcm[:len(pcm)-1]
	}

	return NewClip(pcm, r.config.SampleRate, r.config.Channels), nil
}

// parseCommand expands the format placeholders and splits the command line
func parseCommand(command string, config *Config, d time.Duration) ([]string, error) {
	seconds := int(math.Ceil(d.Seconds()))
	replacer := strings.NewReplacer(
		"{rate}", strconv.Itoa(config.SampleRate),
		"{channels}", strconv.Itoa(config.Channels),
		"{seconds}", strconv.Itoa(seconds),
	)

	args, err := shellwords.NewParser().Parse(replacer.Replace(command))
	if err != nil {
		return nil, fmt.Errorf("parse recorder command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("recorder command is empty")
	}
	return args, nil
}

// CheckInstalled verifies that the recorder binary is available
func (r *ExecRecorder) CheckInstalled() error {
	args, err := parseCommand(r.command, r.config, DefaultDuration)
	if err != nil {
		return err
	}
	if _, err := exec.LookPath(args[0]); err != nil {
		return fmt.Errorf("%s is not installed or not in PATH: %w", args[0], err)
	}
	return nil
}
