package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"download-portal/pkg/models"

	"github.com/spf13/cobra"
)

func gameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Manage the download configuration of games",
	}
	cmd.AddCommand(gameSetCmd())
	cmd.AddCommand(gameShowCmd())
	return cmd
}

func gameSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or replace a game's download configuration from a JSON file",
		Long: `Reads a JSON document of the form

  {"title": "...", "pinCode": "1234", "rarPassword": "...",
   "clouds": [{"name": "Mega", "links": [{"name": "part1", "url": "https://..."}]}]}

from --file (use - for stdin). Existing download pages keep their snapshot.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, _ := cmd.Flags().GetInt64("game")
			path, _ := cmd.Flags().GetString("file")

			data, err := readInput(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			var game models.Game
			if err := json.Unmarshal(data, &game); err != nil {
				return fmt.Errorf("failed to parse game configuration: %w", err)
			}
			game.ID = gameID
			game.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
			if err := game.Validate(); err != nil {
				return err
			}

			return withEnv(cmd.Context(), func(e *env) error {
				if err := e.stores.Games.UpsertGame(cmd.Context(), &game); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved game %d with %d cloud providers\n", game.ID, len(game.Clouds))
				return nil
			})
		},
	}
	cmd.Flags().Int64("game", 0, "Game id")
	cmd.Flags().StringP("file", "f", "-", "JSON file with the configuration")
	cmd.MarkFlagRequired("game")
	return cmd
}

func gameShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a game's download configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, _ := cmd.Flags().GetInt64("game")

			return withEnv(cmd.Context(), func(e *env) error {
				game, err := e.stores.Games.GetGame(cmd.Context(), gameID)
				if err != nil {
					return err
				}
				if game == nil {
					return fmt.Errorf("game %d not found", gameID)
				}
				return printJSON(cmd.OutOrStdout(), game)
			})
		},
	}
	cmd.Flags().Int64("game", 0, "Game id")
	cmd.MarkFlagRequired("game")
	return cmd
}
