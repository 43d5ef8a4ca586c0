package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/austiecodes/vera/internal/app"
	"github.com/austiecodes/vera/internal/engine"
	"github.com/austiecodes/vera/internal/utils"
)

var rootCmd = &cobra.Command{
	Use:   "vera",
	Short: "vera is a conversational assistant that remembers past conversations",
	Long: `vera is a conversational assistant that remembers past conversations.
Run it with a prompt for a one-shot answer, or use 'vera chat' for an interactive session.`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			return
		}

		query := strings.Join(args, " ")
		if err := runQuery(cmd.Context(), query); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// AddCommand adds a subcommand to the root command
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runQuery answers one prompt through a fresh conversation. The exchange is
// stored like any other, so later conversations can recall it.
func runQuery(ctx context.Context, query string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	config, err := utils.LoadRuntimeConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	utils.SetupLogger(config.Debug)

	rt, err := app.Open(ctx, config)
	if err != nil {
		return err
	}
	defer rt.Close()

	eng, _ := rt.NewEngine(ctx)
	reply, err := eng.Respond(ctx, query)

	var persistErr *engine.PersistError
	if err != nil && !errors.As(err, &persistErr) {
		return err
	}
	fmt.Fprintln(os.Stdout, reply)
	if persistErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", persistErr)
	}
	return nil
}
