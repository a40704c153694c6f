package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yates-Labs/quarry/internal/orchestrator"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	topK           int
	chunkSize      int
	chunkOverlap   int
	storeBackend   string
	useGit         bool
	useGitHub      bool
	recursive      bool
	skipExtractors bool
	verbose        bool
)

var askCmd = &cobra.Command{
	Use:   "ask [source] [question]",
	Short: "Ask a question about a document corpus using RAG",
	Long: `Ask a natural language question about a document corpus using RAG
(Retrieval-Augmented Generation).

This command:
1. Loads documents from a directory, git repository, or GitHub issues
2. Splits them into chunks and extracts titles and answerable questions
3. Embeds and indexes the chunks in a vector store
4. Retrieves relevant chunks and generates a grounded answer with an LLM

Required environment variables:
  GROQ_API_KEY        - Groq API key for extraction and answering
  EMBEDDING_BASE_URL  - Embedding endpoint (default: http://localhost:8080/v1)
  MILVUS_ADDRESS      - Milvus address, only with --store milvus

Examples:
  quarry ask ./docs "What is the refund policy?"
  quarry ask ./docs "Who approves expenses?" --topk 3 --verbose
  quarry ask https://github.com/user/repo "What does the parser do?" --git
  quarry ask user/repo "What bugs were reported?" --github`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().IntVar(&topK, "topk", 5, "Number of similar chunks to retrieve for context")
	askCmd.Flags().IntVar(&chunkSize, "chunk-size", 1024, "Chunk size in tokens")
	askCmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", 128, "Chunk overlap in tokens")
	askCmd.Flags().StringVar(&storeBackend, "store", "memory", "Vector store backend: memory or milvus")
	askCmd.Flags().BoolVar(&useGit, "git", false, "Treat source as a git repository (path or URL)")
	askCmd.Flags().BoolVar(&useGitHub, "github", false, "Treat source as a GitHub repository and load its issues")
	askCmd.Flags().BoolVar(&recursive, "recursive", false, "Recurse into subdirectories when loading a directory")
	askCmd.Flags().BoolVar(&skipExtractors, "skip-extractors", false, "Skip LLM title and question extraction")
	askCmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed progress and retrieved sources")
}

// Styling shared by the ask and ingest commands.
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F780FF")). // Bright pink
			Bold(true)

	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD")). // Cyan
			Italic(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E9E9F4")) // Light purple/white

	contextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4")). // Muted purple
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")). // Red
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B")) // Green
)

func runAsk(cmd *cobra.Command, args []string) error {
	source := args[0]
	question := args[1]
	ctx := context.Background()

	config, err := buildPipelineConfig()
	if err != nil {
		return err
	}

	docLoader, err := buildLoader(source, useGit, useGitHub, recursive)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	// Print question
	fmt.Println()
	fmt.Println(headerStyle.Render("Question:"))
	fmt.Println(questionStyle.Render(question))
	fmt.Println()

	// Step 1: Create pipeline
	if verbose {
		fmt.Println(contextStyle.Render("→ Initializing pipeline..."))
	}
	pipeline, err := orchestrator.NewPipeline(ctx, config)
	if err != nil {
		return fmt.Errorf("%s Failed to create pipeline: %w", errorStyle.Render("Error:"), err)
	}
	defer pipeline.Close()

	// Step 2: Ingest documents
	if verbose {
		fmt.Println(contextStyle.Render("→ Loading and indexing documents..."))
	}
	chunks, err := pipeline.Ingest(ctx, docLoader)
	if err != nil {
		return fmt.Errorf("%s Failed to ingest documents: %w", errorStyle.Render("Error:"), err)
	}
	if verbose {
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Indexed %d chunks", chunks)))
	}

	// Step 3: Answer the question
	if verbose {
		fmt.Println(contextStyle.Render("→ Retrieving relevant context and generating answer..."))
	}
	response, err := pipeline.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("%s Failed to generate answer: %w", errorStyle.Render("Error:"), err)
	}

	// Print answer
	fmt.Println(headerStyle.Render("Answer:"))
	fmt.Println()
	fmt.Println(answerStyle.Render(strings.TrimSpace(response.Text)))
	fmt.Println()

	if verbose {
		fmt.Println(headerStyle.Render("Sources:"))
		for i, node := range response.SourceNodes {
			label := node.NodeID
			if title := node.Metadata["document_title"]; title != "" {
				label = title
			}
			fmt.Println(contextStyle.Render(fmt.Sprintf("%d. %s (relevance: %.2f)", i+1, label, node.Score)))
		}
		fmt.Println()
	}

	return nil
}

func buildPipelineConfig() (orchestrator.Config, error) {
	config := orchestrator.DefaultConfig()
	config.TopK = topK
	config.Splitter.ChunkSize = chunkSize
	config.Splitter.ChunkOverlap = chunkOverlap
	config.SkipExtractors = skipExtractors

	switch storeBackend {
	case orchestrator.StoreMemory, orchestrator.StoreMilvus:
		config.StoreBackend = storeBackend
	default:
		return config, fmt.Errorf("%s unknown store backend %q, expected memory or milvus", errorStyle.Render("Error:"), storeBackend)
	}

	return config, nil
}
