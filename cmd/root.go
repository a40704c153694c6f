package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "Quarry - Document question answering tool",
	Long: `Quarry answers natural language questions over a corpus of documents.

It loads documents from a directory, git repository, or GitHub issue
tracker, splits them into chunks enriched with LLM-extracted metadata,
indexes the chunks in a vector store, and answers questions with
retrieval-augmented generation.`,
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
