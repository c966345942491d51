package commands

import (
	"fmt"

	"download-portal/internal/config"
	"download-portal/internal/shortener"
	"download-portal/internal/token"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func providersFrom(cfg *config.Config) []shortener.Provider {
	return []shortener.Provider{
		{Name: cfg.ShortenerA.Name, APIURL: cfg.ShortenerA.APIURL, APIToken: cfg.ShortenerA.APIToken},
		{Name: cfg.ShortenerB.Name, APIURL: cfg.ShortenerB.APIURL, APIToken: cfg.ShortenerB.APIToken},
	}
}

func shortenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shorten URL",
		Short: "Shorten a URL through the configured providers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			alias, _ := cmd.Flags().GetString("alias")
			if alias == "" {
				gameID, _ := cmd.Flags().GetInt64("game")
				if alias, err = token.GenerateAlias(gameID, 0); err != nil {
					return err
				}
			}
			if !token.ValidAlias(alias) {
				return fmt.Errorf("alias must be 1-%d lowercase letters or digits", token.MaxAliasLength)
			}

			result, err := shortener.NewService(providersFrom(cfg)...).Shorten(cmd.Context(), args[0], alias)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().String("alias", "", "Alias to request (generated when empty)")
	cmd.Flags().Int64("game", 0, "Game id used in the generated alias")
	return cmd
}

func hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-admin-key KEY",
		Short: "Print the bcrypt hash to use as ADMIN_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash admin key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}
