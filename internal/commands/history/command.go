package history

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/austiecodes/vera/internal/memory/store"
	"github.com/austiecodes/vera/internal/utils"
)

var limit int

var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse stored conversations",
	Long:  `Open an interactive TUI to browse stored conversations and forget the most recent one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := utils.LoadRuntimeConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		st, err := store.Open(context.Background(), config.Storage)
		if err != nil {
			return fmt.Errorf("failed to open conversation store: %w", err)
		}
		defer st.Close()

		p := tea.NewProgram(initialModel(st, limit), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running history browser: %w", err)
		}
		return nil
	},
}

func init() {
	HistoryCmd.Flags().IntVarP(&limit, "limit", "n", 200, "number of recent conversations to load")
}
