package commands

import (
	chatcmd "github.com/austiecodes/vera/internal/commands/chat"
	corpuscmd "github.com/austiecodes/vera/internal/commands/corpus"
	historycmd "github.com/austiecodes/vera/internal/commands/history"
	mcpcmd "github.com/austiecodes/vera/internal/commands/mcp"
	servecmd "github.com/austiecodes/vera/internal/commands/serve"
	setcmd "github.com/austiecodes/vera/internal/commands/set"
)

func init() {
	rootCmd.AddCommand(chatcmd.ChatCmd)
	rootCmd.AddCommand(corpuscmd.CorpusCmd)
	rootCmd.AddCommand(historycmd.HistoryCmd)
	rootCmd.AddCommand(mcpcmd.McpCmd)
	rootCmd.AddCommand(servecmd.ServeCmd)
	rootCmd.AddCommand(setcmd.SetCmd)
}
