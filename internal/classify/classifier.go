package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Vaibhav-Uniyal/policyq/internal/llm"
	"github.com/Vaibhav-Uniyal/policyq/internal/model"
	"github.com/Vaibhav-Uniyal/policyq/internal/worker"
)

const intentPrompt = `Parse this insurance policy question into structured JSON.

Question: %s
Question type: %s

Respond with a single JSON object and nothing else:
{
  "query_type": "specific category of the question",
  "entities": ["key entities mentioned"],
  "conditions": ["any conditions or qualifiers"],
  "focus": "what the question is really asking for",
  "specific_terms": ["domain terms worth searching for"]
}`

// Classifier turns a raw question into a typed, weighted, term-extracted
// ProcessedQuestion. Pattern matching is deterministic; the optional LLM
// pass only enriches intent and always falls back to a deterministic
// structure, so Process never fails.
type Classifier struct {
	provider llm.Provider
	workers  int
}

// NewClassifier creates a classifier. The provider may be nil, in which
// case intent is always derived from extracted terms. workers bounds the
// concurrent intent calls made by ProcessAll.
func NewClassifier(provider llm.Provider, workers int) *Classifier {
	return &Classifier{provider: provider, workers: workers}
}

// Process classifies a single question.
func (c *Classifier) Process(ctx context.Context, question string) model.ProcessedQuestion {
	qType := c.ClassifyType(question)
	terms := ExtractTerms(question)

	return model.ProcessedQuestion{
		OriginalQuestion: question,
		Type:             qType,
		ExtractedTerms:   terms,
		Intent:           c.parseIntent(ctx, question, qType, terms),
		Weight:           WeightFor(qType),
	}
}

// ProcessAll classifies questions concurrently, bounded by the configured
// worker count, and returns results in input order. Each question may cost
// an LLM round trip for intent extraction, so the calls overlap.
func (c *Classifier) ProcessAll(ctx context.Context, questions []string) []model.ProcessedQuestion {
	outcomes := worker.Map(questions, c.workers, func(q string) (model.ProcessedQuestion, error) {
		return c.Process(ctx, q), nil
	})

	processed := make([]model.ProcessedQuestion, len(outcomes))
	for i, o := range outcomes {
		processed[i] = o.Value
	}
	return processed
}

// ClassifyType matches the question against the priority-ordered pattern
// table. The first matching category wins; unmatched questions are typed
// default.
func (c *Classifier) ClassifyType(question string) model.QuestionType {
	t, _ := MatchType(QuestionPatterns, strings.ToLower(question))
	return t
}

// ExtractTerms tokenizes the question and drops stopwords and short tokens.
func ExtractTerms(question string) []string {
	var terms []string
	for _, tok := range wordRe.FindAllString(strings.ToLower(question), -1) {
		if len(tok) <= 2 || stopwords[tok] {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}

// parseIntent asks the LLM for a structured reading of the question and
// falls back to a term-derived intent on any failure.
func (c *Classifier) parseIntent(ctx context.Context, question string, qType model.QuestionType, terms []string) model.StructuredIntent {
	fallback := model.StructuredIntent{
		QueryType:     "general",
		Entities:      terms,
		Conditions:    []string{},
		Focus:         "coverage",
		SpecificTerms: terms,
	}

	if c.provider == nil {
		return fallback
	}

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Prompt: fmt.Sprintf(intentPrompt, question, qType),
	})
	if err != nil {
		return fallback
	}

	var intent model.StructuredIntent
	if err := json.Unmarshal([]byte(llm.StripCodeFences(resp.Text)), &intent); err != nil {
		return fallback
	}
	if intent.QueryType == "" {
		return fallback
	}
	if intent.Entities == nil {
		intent.Entities = []string{}
	}
	if intent.Conditions == nil {
		intent.Conditions = []string{}
	}
	if intent.SpecificTerms == nil {
		intent.SpecificTerms = []string{}
	}
	return intent
}
