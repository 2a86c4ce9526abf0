package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	AssetsDir string
	OutputDir string
	PublicURL string
	LogLevel  string
	LogFormat string

	// Server flags
	Addr string

	// Capture and transcription flags
	Duration        time.Duration
	Provider        string
	Fallback        string
	Language        string
	RecorderCommand string

	// Render flags
	BatchFile string
	Translate bool

	// History flags
	HistoryPath  string
	HistoryLimit int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		AssetsDir:    "./Final",
		OutputDir:    "./media",
		PublicURL:    "/media/",
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":8080",
		Duration:     3 * time.Second,
		Provider:     "openai",
		Language:     "en",
		HistoryLimit: 20,
	}
}
