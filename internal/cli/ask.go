package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vaibhav-Uniyal/policyq/internal/model"
	"github.com/Vaibhav-Uniyal/policyq/internal/pipeline"
)

var (
	askDocs       []string
	questionsFile string
	detailed      bool
	outJSON       string
	askTimeout    time.Duration
	userAgent     string
	maxBytes      int64
	noCache       bool
	respectRobots bool
	llmProvider   string
	llmModel      string
	indexBackend  string
	postgresURL   string
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question ...]",
	Short: "Answer questions about one or more policy documents",
	Long: `Ask fetches the given policy documents, indexes their contents, and
answers each question with a confidence score and source attribution.

Questions come from positional arguments, a questions file (one per
line), or both.

Example:
  policyq ask --doc https://host/policy.pdf "What is the grace period for premium payment?"
  policyq ask --doc policy.pdf --questions-file questions.txt --detailed
  policyq ask --doc policy.pdf --provider ollama --model llama3.1 "Is maternity covered?"`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringArrayVar(&askDocs, "doc", nil, "policy document URL or file path (repeatable)")
	askCmd.Flags().StringVar(&questionsFile, "questions-file", "", "file with one question per line")
	askCmd.Flags().BoolVar(&detailed, "detailed", false, "include scoring breakdown in the response")
	askCmd.Flags().StringVar(&outJSON, "json", "", "write the JSON response to a file instead of stdout")

	askCmd.Flags().DurationVar(&askTimeout, "timeout", 5*time.Minute, "overall processing timeout")
	askCmd.Flags().StringVar(&userAgent, "ua", "policyq/0.1 (+https://github.com/Vaibhav-Uniyal/policyq)", "HTTP User-Agent")
	askCmd.Flags().Int64Var(&maxBytes, "max-bytes", 10_000_000, "max document bytes to read")
	askCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch and embeddings)")
	askCmd.Flags().BoolVar(&respectRobots, "respect-robots", false, "honor robots.txt when fetching documents")

	askCmd.Flags().StringVar(&llmProvider, "provider", "gemini", "LLM provider (gemini, openai, ollama)")
	askCmd.Flags().StringVar(&llmModel, "model", "", "LLM model name (provider default if empty)")
	askCmd.Flags().StringVar(&indexBackend, "index", "memory", "vector index backend (memory, postgres)")
	askCmd.Flags().StringVar(&postgresURL, "postgres-url", "", "postgres connection URL for the pgvector backend")
}

func runAsk(cmd *cobra.Command, args []string) error {
	questions := append([]string{}, args...)
	if questionsFile != "" {
		fromFile, err := readQuestions(questionsFile)
		if err != nil {
			return err
		}
		questions = append(questions, fromFile...)
	}
	if len(questions) == 0 {
		return fmt.Errorf("no questions given: pass them as arguments or with --questions-file")
	}
	if len(askDocs) == 0 {
		return fmt.Errorf("no documents given: pass at least one --doc")
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	p, err := pipeline.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	var payload any
	if detailed {
		resp, err := p.ProcessDetailed(ctx, askDocs, questions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: processing failed: %v\n", err)
		}
		payload = resp
	} else {
		resp, err := p.Process(ctx, askDocs, questions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: processing failed: %v\n", err)
		}
		payload = resp
	}

	return writeJSON(payload, outJSON)
}

// buildConfig assembles runtime configuration from defaults, flags, and
// environment variables. API keys never come from flags.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	cfg.HTTP.Timeout = askTimeout
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.HTTP.RespectRobots = respectRobots
	cfg.Cache.Enabled = !noCache

	cfg.LLM.Provider = llmProvider
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	switch llmProvider {
	case "gemini", "google":
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.Embedding.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set (required for embeddings)")
	}

	cfg.Index.Backend = indexBackend
	if indexBackend == "postgres" {
		cfg.Index.PostgresURL = postgresURL
		if cfg.Index.PostgresURL == "" {
			cfg.Index.PostgresURL = os.Getenv("POLICYQ_POSTGRES_URL")
		}
		if cfg.Index.PostgresURL == "" {
			return nil, fmt.Errorf("postgres backend selected but no --postgres-url or POLICYQ_POSTGRES_URL given")
		}
	}

	return cfg, nil
}

// readQuestions loads one question per line, skipping blanks and comments.
func readQuestions(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open questions file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var questions []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}
	return questions, nil
}

func writeJSON(payload any, path string) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Wrote response: %s\n", path)
	}
	return nil
}
