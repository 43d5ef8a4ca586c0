package chat

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/austiecodes/vera/internal/app"
	"github.com/austiecodes/vera/internal/memory/memtypes"
	"github.com/austiecodes/vera/internal/utils"
)

var ChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with vera.
Type /forget to drop the last exchange, /exit or /quit to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
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

		fmt.Fprintln(os.Stdout, HintStyle.Render("Building memory index..."))
		eng, status := rt.NewEngine(ctx)
		if status.Status == memtypes.IndexDegraded {
			fmt.Fprintln(os.Stdout, WarningStyle.Render("Memory recall is unavailable for this session."))
		}

		loop := &Loop{
			Engine:        eng,
			In:            os.Stdin,
			Out:           os.Stdout,
			ForgetCommand: config.Recall.ForgetCommand,
		}
		return loop.Run(ctx)
	},
}
