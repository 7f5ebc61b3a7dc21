package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vaibhav-Uniyal/policyq/internal/pipeline"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check component readiness",
	Long: `Status initializes the pipeline with the current configuration and
reports whether each component (LLM provider, embedder, vector index)
is ready, plus the active configuration values.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&llmProvider, "provider", "gemini", "LLM provider (gemini, openai, ollama)")
	statusCmd.Flags().StringVar(&llmModel, "model", "", "LLM model name (provider default if empty)")
	statusCmd.Flags().StringVar(&indexBackend, "index", "memory", "vector index backend (memory, postgres)")
	statusCmd.Flags().StringVar(&postgresURL, "postgres-url", "", "postgres connection URL for the pgvector backend")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p, err := pipeline.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	status := p.Status(ctx)

	fmt.Printf("Status: %s\n\n", status.Status)
	fmt.Println("Components:")
	for name, ready := range status.Components {
		mark := "ok"
		if !ready {
			mark = "unavailable"
		}
		fmt.Printf("  %-14s %s\n", name, mark)
	}
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  llm_model:               %s\n", status.Configuration.LLMModel)
	fmt.Printf("  embedding_model:         %s\n", status.Configuration.EmbeddingModel)
	fmt.Printf("  vector_index:            %s\n", status.Configuration.VectorIndex)
	fmt.Printf("  chunk_size:              %d\n", status.Configuration.ChunkSize)
	fmt.Printf("  known_document_weight:   %.1f\n", status.Configuration.KnownDocumentWeight)
	fmt.Printf("  unknown_document_weight: %.1f\n", status.Configuration.UnknownDocumentWeight)

	if status.Status != "operational" {
		os.Exit(1)
	}
	return nil
}
