package commands

import (
	"fmt"

	"download-portal/internal/gate"
	"download-portal/internal/shortener"

	"github.com/spf13/cobra"
)

func createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a download page for a game",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, _ := cmd.Flags().GetInt64("game")
			cloudIndex, err := cloudFlag(cmd)
			if err != nil {
				return err
			}

			return withEnv(cmd.Context(), func(e *env) error {
				page, err := e.pages.Create(cmd.Context(), gameID, cloudIndex)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), page)
			})
		},
	}
	cmd.Flags().Int64("game", 0, "Game id")
	cmd.Flags().Int("cloud", 0, "Cloud provider index (omit for the default provider)")
	cmd.MarkFlagRequired("game")
	return cmd
}

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Look up a live download page by game, provider and token",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, _ := cmd.Flags().GetInt64("game")
			tok, _ := cmd.Flags().GetString("token")
			cloudIndex, err := cloudFlag(cmd)
			if err != nil {
				return err
			}

			return withEnv(cmd.Context(), func(e *env) error {
				page, err := e.pages.Resolve(cmd.Context(), gameID, cloudIndex, tok)
				if err != nil {
					return err
				}
				if page == nil {
					return fmt.Errorf("no live download page for game %d and token %q", gameID, tok)
				}
				return printJSON(cmd.OutOrStdout(), page)
			})
		},
	}
	cmd.Flags().Int64("game", 0, "Game id")
	cmd.Flags().Int("cloud", 0, "Cloud provider index")
	cmd.Flags().String("token", "", "Page token")
	cmd.MarkFlagRequired("game")
	cmd.MarkFlagRequired("token")
	return cmd
}

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired download pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(e *env) error {
				deleted, err := e.pages.CleanupExpired(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired download pages\n", deleted)
				return nil
			})
		},
	}
}

func gateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Run the full download flow for a game and print where the user would go",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, _ := cmd.Flags().GetInt64("game")
			cloudIndex, err := cloudFlag(cmd)
			if err != nil {
				return err
			}

			return withEnv(cmd.Context(), func(e *env) error {
				g := gate.New(e.pages, shortener.NewService(providersFrom(e.cfg)...), e.cfg.PublicOrigin)
				outcome, err := g.InitiateDownload(cmd.Context(), gameID, cloudIndex)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"redirectUrl":    outcome.RedirectURL,
					"pageUrl":        outcome.PageURL,
					"surveyed":       outcome.Surveyed,
					"provider":       outcome.Provider,
					"fallbackReason": outcome.FallbackReason,
					"expiresAt":      outcome.Page.ExpiresAt,
				})
			})
		},
	}
	cmd.Flags().Int64("game", 0, "Game id")
	cmd.Flags().Int("cloud", 0, "Cloud provider index (omit for the default provider)")
	cmd.MarkFlagRequired("game")
	return cmd
}
