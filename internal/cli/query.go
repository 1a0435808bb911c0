package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bookrag/internal/answer"
	"bookrag/internal/config"
	"bookrag/internal/embed"
	"bookrag/internal/index"
	"bookrag/internal/llm"
	"bookrag/internal/retrieve"
)

var (
	queryConfigPath  string
	queryShowSources bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Answer a question from the indexed corpus",
	Long: `Query embeds the question, retrieves the most similar chunks, and asks
the configured completion provider for an answer grounded in them. When
the corpus cannot support an answer, the fixed refusal sentence is
printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryConfigPath, "config", "c", "config.yaml", "Path to the config file")
	queryCmd.Flags().BoolVar(&queryShowSources, "sources", false, "Print the retrieved excerpts with scores")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	log := newLogger()
	question := args[0]

	cfg, err := config.Load(queryConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	completer, err := llm.New(cfg, nil)
	if err != nil {
		return err
	}

	// A missing, empty or untagged index is an answer-time refusal, not a
	// crash: the operator asked a question the corpus cannot back.
	idx, err := index.Load(cfg.IndexPath)
	if err != nil || len(idx.Chunks) == 0 || strings.TrimSpace(idx.EmbModel) == "" {
		if err != nil {
			log.Error("index unavailable", "path", cfg.IndexPath, "error", err)
		} else {
			log.Error("index unusable", "path", cfg.IndexPath, "chunks", len(idx.Chunks), "embModel", idx.EmbModel)
		}
		fmt.Println(answer.RefusalText)
		return nil
	}

	// Query-time embedding must use the model the index was built with.
	emb := embed.NewClient(cfg.OllamaBaseURL, idx.EmbModel, cfg.RequestTimeout)
	retriever := retrieve.New(idx, emb)
	guard := answer.NewGuard(retriever, completer, cfg.K, cfg.SimThreshold, log)

	resp, hits := guard.AnswerDetailed(cmd.Context(), question)

	if queryShowSources {
		for i, h := range hits {
			color.Cyan("%d. [%s] %s (pages %v, score %.3f)", i+1, h.Chunk.ID, h.Chunk.Label(), h.Chunk.Pages, h.Score)
			fmt.Println(h.Chunk.Preview)
		}
	}

	fmt.Println(resp.Text)
	return nil
}
