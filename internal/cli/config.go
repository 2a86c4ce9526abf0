package cli

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/signspeak/internal/audio"
)

// Config is the resolved application configuration
type Config struct {
	ServerAddr string
	RateLimit  float64
	RateBurst  int

	AssetsDir      string
	SequenceLength int
	AssetCacheTTL  time.Duration

	OutputDir string
	PublicURL string

	FrameSize  int
	FrameDelay time.Duration

	SpeechDuration   time.Duration
	SampleRate       int
	RecorderCommand  string
	SilenceThreshold float64
	SpeechTimeout    time.Duration

	Provider        string
	Fallback        string
	OpenAIModel     string
	GeminiModel     string
	Language        string
	BreakerFailures int

	TranslationEnabled bool
	TranslationTarget  string
	TranslationModel   string

	VocabularyFile string
	HistoryPath    string
	NATSURL        string
	NATSSubject    string

	LogLevel  string
	LogFormat string
}

// SetDefaults registers the default value of every configuration key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 1.0)
	v.SetDefault("server.rate_burst", 2)

	v.SetDefault("assets.directory", "./Final")
	v.SetDefault("assets.sequence_length", 5)
	v.SetDefault("assets.cache_ttl", "0s")

	v.SetDefault("output.directory", "./media")
	v.SetDefault("output.public_url", "/media/")

	v.SetDefault("animation.frame_size", 200)
	v.SetDefault("animation.frame_delay", "500ms")

	v.SetDefault("speech.duration", "3s")
	v.SetDefault("speech.sample_rate", audio.DefaultSampleRate)
	v.SetDefault("speech.command", audio.DefaultCommand)
	v.SetDefault("speech.silence_threshold", 0.0)
	v.SetDefault("speech.timeout", "30s")

	v.SetDefault("transcription.provider", "openai")
	v.SetDefault("transcription.fallback", "")
	v.SetDefault("transcription.openai_model", "whisper-1")
	v.SetDefault("transcription.gemini_model", "gemini-2.0-flash")
	v.SetDefault("transcription.language", "en")
	v.SetDefault("transcription.breaker_failures", 3)

	v.SetDefault("translation.enabled", false)
	v.SetDefault("translation.target", "English")
	v.SetDefault("translation.model", "gpt-4o-mini")

	v.SetDefault("vocabulary.file", "")
	v.SetDefault("history.path", "")
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject", "signspeak.pipeline.outcome")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads the configuration from v
func LoadConfig(v *viper.Viper) *Config {
	return &Config{
		ServerAddr: v.GetString("server.addr"),
		RateLimit:  v.GetFloat64("server.rate_limit"),
		RateBurst:  v.GetInt("server.rate_burst"),

		AssetsDir:      v.GetString("assets.directory"),
		SequenceLength: v.GetInt("assets.sequence_length"),
		AssetCacheTTL:  v.GetDuration("assets.cache_ttl"),

		OutputDir: v.GetString("output.directory"),
		PublicURL: v.GetString("output.public_url"),

		FrameSize:  v.GetInt("animation.frame_size"),
		FrameDelay: v.GetDuration("animation.frame_delay"),

		SpeechDuration:   v.GetDuration("speech.duration"),
		SampleRate:       v.GetInt("speech.sample_rate"),
		RecorderCommand:  v.GetString("speech.command"),
		SilenceThreshold: v.GetFloat64("speech.silence_threshold"),
		SpeechTimeout:    v.GetDuration("speech.timeout"),

		Provider:        v.GetString("transcription.provider"),
		Fallback:        v.GetString("transcription.fallback"),
		OpenAIModel:     v.GetString("transcription.openai_model"),
		GeminiModel:     v.GetString("transcription.gemini_model"),
		Language:        v.GetString("transcription.language"),
		BreakerFailures: v.GetInt("transcription.breaker_failures"),

		TranslationEnabled: v.GetBool("translation.enabled"),
		TranslationTarget:  v.GetString("translation.target"),
		TranslationModel:   v.GetString("translation.model"),

		VocabularyFile: v.GetString("vocabulary.file"),
		HistoryPath:    expandHome(v.GetString("history.path")),
		NATSURL:        v.GetString("events.nats_url"),
		NATSSubject:    v.GetString("events.subject"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
	}
}

// expandHome replaces a leading "~/" with the home directory
func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}
