package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/signspeak/internal/archive"
	"codeberg.org/snonux/signspeak/internal/batch"
	"codeberg.org/snonux/signspeak/internal/history"
	"codeberg.org/snonux/signspeak/internal/models"
	"codeberg.org/snonux/signspeak/internal/processor"
	"codeberg.org/snonux/signspeak/internal/server"
)

func newServeCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(viper.GetViper())
			app, err := NewApp(cfg, CaptureOptional, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Config{
				Addr:           cfg.ServerAddr,
				MediaDir:       cfg.OutputDir,
				PublicURL:      cfg.PublicURL,
				RateLimit:      cfg.RateLimit,
				RateBurst:      cfg.RateBurst,
				VocabularySize: app.Vocabulary.Len(),
			}, app.Processor, app.Metrics.Handler(), app.Logger)

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&flags.Addr, "addr", flags.Addr, "Listen address")
	viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func newListenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Record one word from the microphone and render its sign",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(LoadConfig(viper.GetViper()), CaptureRequired, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "Listening for %v...\n", app.Config.SpeechDuration)
			return printResponse(cmd.OutOrStdout(), app.Processor.Listen(cmd.Context()))
		},
	}
}

func newRenderCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [word]",
		Short: "Render the sign animation of a typed word",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.BatchFile == "" && len(args) == 0 {
				return errors.New("a word or --batch is required")
			}

			app, err := NewApp(LoadConfig(viper.GetViper()), CaptureNone, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			if flags.BatchFile != "" {
				entries, err := batch.ReadBatchFile(flags.BatchFile)
				if err != nil {
					return err
				}
				summary := app.Processor.ProcessBatch(cmd.Context(), entries, cmd.OutOrStdout())
				if summary.Failed > 0 {
					return fmt.Errorf("%d of %d entries failed", summary.Failed, summary.Total)
				}
				return nil
			}

			return printResponse(cmd.OutOrStdout(), app.Processor.Render(cmd.Context(), strings.Join(args, " ")))
		},
	}

	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Render words from file (one per line)")

	return cmd
}

func newVocabCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vocab",
		Short: "List the vocabulary and whether sign assets exist for each word",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(LoadConfig(viper.GetViper()), CaptureNone, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LABEL\tWORD\tFRAMES")
			missing := 0
			for _, entry := range app.Vocabulary.Entries() {
				frames := "missing"
				if seq, err := app.Signs.Resolve(entry.Word); err == nil {
					frames = fmt.Sprintf("%d", seq.Available)
					if seq.Padded() {
						frames += " (padded)"
					}
				} else {
					missing++
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", entry.Label, entry.Word, frames)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n%d words, %d without assets in %s\n",
				app.Vocabulary.Len(), missing, app.Config.AssetsDir)

			if unknown := unknownFolders(app); len(unknown) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Asset folders without a vocabulary entry: %s\n",
					strings.Join(unknown, ", "))
			}
			return nil
		},
	}
}

// unknownFolders lists asset folders no vocabulary word maps to
func unknownFolders(app *App) []string {
	folders, err := app.Signs.Words()
	if err != nil {
		app.Logger.Debug("cannot list asset folders", slog.Any("error", err))
		return nil
	}

	var unknown []string
	for _, folder := range folders {
		if _, err := app.Vocabulary.Lookup(folder); err != nil {
			unknown = append(unknown, folder)
		}
	}
	return unknown
}

func newHistoryCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(viper.GetViper())
			if cfg.HistoryPath == "" {
				return errors.New("no history database configured, set history.path or --history")
			}

			store, err := history.Open(cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), flags.HistoryLimit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().IntVarP(&flags.HistoryLimit, "limit", "n", flags.HistoryLimit, "Number of records to show")

	return cmd
}

func newArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Move generated animations into a timestamped archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(viper.GetViper())
			path, err := archive.ArchiveMedia(cfg.OutputDir)
			if err != nil {
				return fmt.Errorf("failed to archive media: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Media directory archived to: %s\n", path)
			return nil
		},
	}
}

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available OpenAI models for the current API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lister := models.NewLister(GetOpenAIKey())
			return lister.ListAvailableModels(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// printResponse writes resp as JSON and turns pipeline failures into a
// command error
func printResponse(w io.Writer, resp processor.Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if !resp.Success {
		return errors.New(resp.Error)
	}
	return nil
}

func printHistory(out io.Writer, records []history.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(out, "No history yet")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tRESULT\tSPOKEN\tSIGN\tDETAIL\tMS")
	for _, r := range records {
		result, detail := "ok", r.GIFURL
		if !r.Success {
			result, detail = r.Stage, r.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), result, r.SpokenText, r.Sign, detail, r.DurationMS)
	}
	return w.Flush()
}
