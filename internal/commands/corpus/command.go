package corpus

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/austiecodes/vera/internal/app"
	"github.com/austiecodes/vera/internal/memory/corpus"
	"github.com/austiecodes/vera/internal/utils"
)

var (
	source      string
	maxMessages int
	concurrency int
)

var CorpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the reference chat corpus",
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Embed the reference corpus and write the cached index",
	Long: `Embed every passage of the reference corpus with the configured embedding
model and write the index to recall.corpus_cache, so conversations can load it
without re-embedding.`,
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

		deps, err := app.Clients(config)
		if err != nil {
			return err
		}

		opts := app.CorpusOptions(config, deps.Embedder, deps.EmbeddingModel)
		if source != "" {
			opts.SourcePath = source
		}
		if maxMessages > 0 {
			opts.MaxMessages = maxMessages
		}
		opts.Concurrency = concurrency
		if opts.SourcePath == "" {
			return fmt.Errorf("no corpus source: pass --source or set recall.corpus_source")
		}

		idx, err := corpus.Build(ctx, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Indexed %d passages into %s\n", idx.Len(), opts.CachePath)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&source, "source", "s", "", "corpus file (.txt, one passage per line, or .csv with a Message column)")
	buildCmd.Flags().IntVarP(&maxMessages, "max", "n", 0, "maximum passages to index (default recall.corpus_max_messages)")
	buildCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "parallel embedding requests (default: number of CPUs)")
	CorpusCmd.AddCommand(buildCmd)
}
