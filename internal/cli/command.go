package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/signspeak/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "signspeak",
		Short: "Spoken word to sign language animation",
		Long: `signspeak listens for a single spoken word, recognizes it and shows
the matching sign language gesture as a looping GIF animation.

Examples:
  signspeak                         # Start the web server (default)
  signspeak listen                  # Record 3 seconds and render the sign
  signspeak render bye              # Render a typed word
  signspeak render --batch words.txt
  signspeak vocab                   # List the vocabulary and its assets`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			InitConfig(flags.CfgFile)
		},
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	serveCmd := newServeCommand(flags)
	rootCmd.AddCommand(
		serveCmd,
		newListenCommand(),
		newRenderCommand(flags),
		newVocabCommand(),
		newHistoryCommand(flags),
		newArchiveCommand(),
		newModelsCommand(),
	)

	// No subcommand starts the server
	rootCmd.RunE = serveCmd.RunE

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.signspeak.yaml)")
	cmd.PersistentFlags().StringVar(&flags.AssetsDir, "assets", flags.AssetsDir, "Directory with one folder of sign images per word")
	cmd.PersistentFlags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Directory the GIF animations are written to")
	cmd.PersistentFlags().StringVar(&flags.PublicURL, "public-url", flags.PublicURL, "URL prefix the output directory is served under")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text or json")

	// Capture and transcription flags
	cmd.PersistentFlags().DurationVar(&flags.Duration, "duration", flags.Duration, "Recording length")
	cmd.PersistentFlags().StringVar(&flags.Provider, "provider", flags.Provider, "Transcription provider: openai or gemini")
	cmd.PersistentFlags().StringVar(&flags.Fallback, "fallback", "", "Fallback transcription provider")
	cmd.PersistentFlags().StringVar(&flags.Language, "language", flags.Language, "Spoken language hint (ISO-639-1)")
	cmd.PersistentFlags().StringVar(&flags.RecorderCommand, "recorder-command", "", "Capture command with {rate}, {channels} and {seconds} placeholders")
	cmd.PersistentFlags().BoolVar(&flags.Translate, "translate", false, "Translate recognized text before the vocabulary lookup")
	cmd.PersistentFlags().StringVar(&flags.HistoryPath, "history", "", "SQLite file to record outcomes in")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("assets.directory", cmd.PersistentFlags().Lookup("assets"))
	viper.BindPFlag("output.directory", cmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("output.public_url", cmd.PersistentFlags().Lookup("public-url"))
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", cmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("speech.duration", cmd.PersistentFlags().Lookup("duration"))
	viper.BindPFlag("speech.command", cmd.PersistentFlags().Lookup("recorder-command"))
	viper.BindPFlag("transcription.provider", cmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("transcription.fallback", cmd.PersistentFlags().Lookup("fallback"))
	viper.BindPFlag("transcription.language", cmd.PersistentFlags().Lookup("language"))
	viper.BindPFlag("translation.enabled", cmd.PersistentFlags().Lookup("translate"))
	viper.BindPFlag("history.path", cmd.PersistentFlags().Lookup("history"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	SetDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".signspeak" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".signspeak")
	}

	// Environment variables, e.g. SIGNSPEAK_SERVER_ADDR
	viper.SetEnvPrefix("SIGNSPEAK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("transcription.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return viper.GetString("transcription.gemini_key")
}
