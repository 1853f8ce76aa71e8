package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tendant/memento/pkg/memento/config"
	"github.com/tendant/memento/pkg/memento/session"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var configFile string
	var token string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "memento",
		Short: "Memento - keep memories and play memory games",
		Long: `Memento Command Line Interface

Save journal entries and memories, upload photos, music and documents,
and play the card matching and quiz games in the terminal.

Backends are selected with the same environment variables as the server
(RECORD_STORE, BLOB_STORE, SESSION_PROVIDER, EVENT_SINK).`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (optional)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("MEMENTO_TOKEN"), "access token of the signed in user")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(NewSaveCommand())
	rootCmd.AddCommand(NewUploadCommand())
	rootCmd.AddCommand(NewPlayCommand())
	rootCmd.AddCommand(NewTokenCommand())

	return rootCmd
}

// loadServices builds the configured collaborators and a context carrying the
// access token from the flags.
func loadServices(cmd *cobra.Command) (context.Context, *config.Services, error) {
	configFile, _ := cmd.Flags().GetString("config")
	token, _ := cmd.Flags().GetString("token")

	cfg, err := config.Load(config.WithFile(configFile), config.WithEnv())
	if err != nil {
		return nil, nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	services, err := cfg.Build(ctx)
	if err != nil {
		return nil, nil, err
	}
	if token != "" {
		ctx = session.WithAccessToken(ctx, token)
	}
	return ctx, services, nil
}

func verbosef(cmd *cobra.Command, w io.Writer, format string, args ...any) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		fmt.Fprintf(w, format, args...)
	}
}
