// Package cli holds the cobra command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bookrag",
	Short: "Textbook retrieval-augmented question answering",
	Long: `bookrag ingests textbook documents, segments them into code spans and
heading-delimited sections, embeds the chunks, and answers questions
grounded only in retrieved excerpts. Questions the corpus cannot support
are refused rather than guessed at.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Logs go to stderr so stdout stays
// reserved for answer text.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}
