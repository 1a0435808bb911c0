package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bookrag/internal/chunk"
	"bookrag/internal/config"
	"bookrag/internal/corpus"
	"bookrag/internal/embed"
	"bookrag/internal/index"
	"bookrag/internal/segment"
	"bookrag/internal/source"
)

var (
	buildConfigPath string
	buildMode       string
)

var buildCmd = &cobra.Command{
	Use:   "build <document>",
	Short: "Extract, segment, embed and index a document",
	Long: `Build extracts page lines from a document, segments them into code
spans and/or heading-delimited sections, embeds every chunk, and writes
the index plus the raw-text and metadata exports named in the config.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildConfigPath, "config", "c", "config.yaml", "Path to the config file")
	buildCmd.Flags().StringVar(&buildMode, "mode", "both", "What to index: code, sections, or both")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	log := newLogger()
	path := args[0]

	cfg, err := config.Load(buildConfigPath)
	if err != nil {
		return err
	}

	src, err := source.ForFile(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	lines, err := src.Extract(f, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}
	log.Info("extracted document", "path", path, "lines", len(lines))

	chunks, err := collectChunks(lines, buildMode, log)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no indexable chunks found in %s", path)
	}

	emb := embed.NewClient(cfg.OllamaBaseURL, cfg.EmbedModel, cfg.RequestTimeout)
	idx, err := index.Build(cmd.Context(), emb, chunks, log)
	if err != nil {
		return err
	}

	if err := idx.Save(cfg.IndexPath); err != nil {
		return err
	}
	if err := idx.ExportStore(cfg.StorePath); err != nil {
		return err
	}
	if err := idx.ExportMeta(cfg.MetaPath); err != nil {
		return err
	}

	color.Green("Indexed %d chunks from %s → %s", len(idx.Chunks), path, cfg.IndexPath)
	return nil
}

func collectChunks(lines []corpus.PageLine, mode string, log *slog.Logger) ([]corpus.Chunk, error) {
	var chunks []corpus.Chunk

	switch mode {
	case "code", "sections", "both":
	default:
		return nil, fmt.Errorf("unknown mode: %q (want code, sections, or both)", mode)
	}

	if mode == "code" || mode == "both" {
		spans := segment.FindCodeSpans(lines)
		var fallbacks int
		for _, span := range spans {
			res := chunk.Code(span.ID, span.Code, span.Page)
			if res.Outcome == chunk.FallbackUnparsed {
				fallbacks++
			}
			chunks = append(chunks, res.Chunks...)
		}
		log.Info("chunked code spans", "spans", len(spans), "unparsed", fallbacks)
	}

	if mode == "sections" || mode == "both" {
		sections := segment.Segment(lines)
		var kept int
		for _, sec := range sections {
			if len(sec.TextBlocks) == 0 {
				continue // heading with no body, nothing to embed
			}
			chunks = append(chunks, corpus.ChunkFromSection(sec))
			kept++
		}
		log.Info("segmented sections", "sections", len(sections), "indexed", kept)
	}

	return chunks, nil
}
