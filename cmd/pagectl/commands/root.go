// Package commands implements the pagectl operator CLI
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"download-portal/internal/config"
	"download-portal/internal/database"
	"download-portal/internal/pages"

	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

// env holds what every subcommand needs once configuration is loaded
type env struct {
	cfg    *config.Config
	stores *database.Stores
	pages  *pages.Service
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pagectl",
		Short: "pagectl - operate download pages from the command line",
		Long: `pagectl creates, resolves and expires download pages, manages the
download configuration of games and checks the shortener providers.

Configuration is read from the same environment variables as the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(cleanupCmd())
	rootCmd.AddCommand(gateCmd())
	rootCmd.AddCommand(gameCmd())
	rootCmd.AddCommand(shortenCmd())
	rootCmd.AddCommand(hashKeyCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pagectl %s\n", Version)
		},
	}
}

// withEnv loads configuration, opens the stores and runs fn
func withEnv(ctx context.Context, fn func(e *env) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	stores, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer stores.Close()

	return fn(&env{
		cfg:    cfg,
		stores: stores,
		pages:  pages.NewService(stores.Pages, stores.Games, pages.WithRetention(cfg.PageRetention)),
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// cloudFlag returns the --cloud value, or nil when the flag was not given
func cloudFlag(cmd *cobra.Command) (*int, error) {
	if !cmd.Flags().Changed("cloud") {
		return nil, nil
	}
	idx, err := cmd.Flags().GetInt("cloud")
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, fmt.Errorf("--cloud must be a non-negative integer")
	}
	return &idx, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
