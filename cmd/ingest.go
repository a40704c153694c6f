package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yates-Labs/quarry/internal/orchestrator"
	"github.com/spf13/cobra"
)

var showChunks bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [source]",
	Short: "Ingest a document corpus and display the indexed chunks",
	Long: `Ingest documents without asking a question: load, split, enrich, and
index them, then report what was produced. Useful for checking chunking
and extraction settings before asking questions.

Examples:
  quarry ingest ./docs
  quarry ingest ./docs --chunk-size 512 --chunk-overlap 64 --show-chunks
  quarry ingest user/repo --github --skip-extractors`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().IntVar(&chunkSize, "chunk-size", 1024, "Chunk size in tokens")
	ingestCmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", 128, "Chunk overlap in tokens")
	ingestCmd.Flags().StringVar(&storeBackend, "store", "memory", "Vector store backend: memory or milvus")
	ingestCmd.Flags().BoolVar(&useGit, "git", false, "Treat source as a git repository (path or URL)")
	ingestCmd.Flags().BoolVar(&useGitHub, "github", false, "Treat source as a GitHub repository and load its issues")
	ingestCmd.Flags().BoolVar(&recursive, "recursive", false, "Recurse into subdirectories when loading a directory")
	ingestCmd.Flags().BoolVar(&skipExtractors, "skip-extractors", false, "Skip LLM title and question extraction")
	ingestCmd.Flags().BoolVar(&showChunks, "show-chunks", false, "Print each chunk's metadata and a text preview")
}

func runIngest(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx := context.Background()

	config, err := buildPipelineConfig()
	if err != nil {
		return err
	}

	docLoader, err := buildLoader(source, useGit, useGitHub, recursive)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	pipeline, err := orchestrator.NewPipeline(ctx, config)
	if err != nil {
		return fmt.Errorf("%s Failed to create pipeline: %w", errorStyle.Render("Error:"), err)
	}
	defer pipeline.Close()

	if !showChunks {
		chunks, err := pipeline.Ingest(ctx, docLoader)
		if err != nil {
			return fmt.Errorf("%s Failed to ingest documents: %w", errorStyle.Render("Error:"), err)
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Indexed %d chunks from %s", chunks, source)))
		return nil
	}

	docs, err := docLoader.Load(ctx)
	if err != nil {
		return fmt.Errorf("%s Failed to load documents: %w", errorStyle.Render("Error:"), err)
	}

	nodes, err := pipeline.Transform(ctx, docs)
	if err != nil {
		return fmt.Errorf("%s Failed to transform documents: %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render(fmt.Sprintf("Chunks (%d from %d documents):", len(nodes), len(docs))))
	fmt.Println()

	for _, node := range nodes {
		fmt.Println(successStyle.Render(node.ID))
		if title := node.Metadata["document_title"]; title != "" {
			fmt.Println(contextStyle.Render("  title: " + title))
		}
		if fileName := node.Metadata["file_name"]; fileName != "" {
			fmt.Println(contextStyle.Render("  file: " + fileName))
		}
		if questions := node.Metadata["questions_this_excerpt_can_answer"]; questions != "" {
			for _, q := range strings.Split(strings.TrimSpace(questions), "\n") {
				fmt.Println(contextStyle.Render("  q: " + strings.TrimSpace(q)))
			}
		}
		preview := previewText(node.Text, 160)
		fmt.Println(answerStyle.Render("  " + strings.ReplaceAll(preview, "\n", " ")))
		fmt.Println()
	}

	return nil
}

// previewText truncates text to max runes, never splitting a multi-byte
// character.
func previewText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
