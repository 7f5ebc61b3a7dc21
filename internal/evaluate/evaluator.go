package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Vaibhav-Uniyal/policyq/internal/llm"
	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

const (
	fallbackAnswer    = "Unable to determine answer from available information."
	fallbackReasoning = "Processing failed, using fallback response."
)

const answerPrompt = `You are an expert insurance policy analyst. Based on the following context, provide a clear and accurate answer to the question.

%s

Instructions:
1. Answer the question directly and concisely
2. Use information from the provided policy clauses
3. If the information is not available in the clauses, state that clearly
4. Provide specific details like numbers, percentages, or time periods when mentioned
5. Be factual and avoid speculation

Question: %s

Provide your answer in the following JSON format:
{
    "answer": "Your direct answer here",
    "confidence": 0.95,
    "reasoning": "Explanation of how you arrived at this answer"
}`

// Evaluator turns a question plus its matched clauses into an answer with
// a confidence score, reasoning, source attribution, and a weighted score
// contribution.
type Evaluator struct {
	provider llm.Provider
}

// NewEvaluator creates an evaluator backed by the given provider.
func NewEvaluator(provider llm.Provider) *Evaluator {
	return &Evaluator{provider: provider}
}

type llmAnswer struct {
	Answer string `json:"answer"`
	// Pointer so an explicit zero is distinguishable from an absent key.
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// Evaluate never returns an error: any failure degrades to a low-confidence
// fallback answer so one bad question cannot sink a batch.
func (e *Evaluator) Evaluate(ctx context.Context, question model.ProcessedQuestion, clauses []model.MatchedClause, documentWeight float64) model.AnswerResult {
	answer, confidence, reasoning := e.generateAnswer(ctx, question, clauses)

	return model.AnswerResult{
		Answer:            answer,
		ConfidenceScore:   confidence,
		SourceClauses:     sourceClauses(clauses),
		Reasoning:         reasoning,
		QuestionWeight:    question.Weight,
		DocumentWeight:    documentWeight,
		ScoreContribution: ScoreContribution(question.Weight, documentWeight, confidence),
	}
}

// Fallback is the answer used when evaluation cannot run at all.
func (e *Evaluator) Fallback(question model.ProcessedQuestion, documentWeight float64) model.AnswerResult {
	return model.AnswerResult{
		Answer:            fallbackAnswer,
		ConfidenceScore:   0.3,
		SourceClauses:     []string{},
		Reasoning:         fallbackReasoning,
		QuestionWeight:    question.Weight,
		DocumentWeight:    documentWeight,
		ScoreContribution: 0.0,
	}
}

func (e *Evaluator) generateAnswer(ctx context.Context, question model.ProcessedQuestion, clauses []model.MatchedClause) (string, float64, string) {
	if e.provider == nil {
		return fallbackAnswer, 0.3, "LLM processing failed."
	}

	prompt := fmt.Sprintf(answerPrompt, buildContext(question, clauses), question.OriginalQuestion)
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{Prompt: prompt})
	if err != nil {
		return fallbackAnswer, 0.3, "LLM processing failed."
	}

	var parsed llmAnswer
	if err := json.Unmarshal([]byte(llm.StripCodeFences(resp.Text)), &parsed); err != nil {
		// Plenty of models answer in prose despite the format instruction.
		return strings.TrimSpace(resp.Text), 0.7, "Generated from policy analysis."
	}

	answer := parsed.Answer
	if answer == "" {
		answer = fallbackAnswer
	}
	confidence := 0.5
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
	}
	reasoning := parsed.Reasoning
	if reasoning == "" {
		reasoning = "Based on analysis of policy clauses."
	}
	return answer, confidence, reasoning
}

// buildContext renders the question analysis and top clauses into the
// prompt context block.
func buildContext(question model.ProcessedQuestion, clauses []model.MatchedClause) string {
	parts := []string{
		fmt.Sprintf("Question: %s", question.OriginalQuestion),
		fmt.Sprintf("Question Type: %s", question.Type),
		fmt.Sprintf("Extracted Terms: %s", strings.Join(question.ExtractedTerms, ", ")),
		fmt.Sprintf("Query Type: %s", question.Intent.QueryType),
		fmt.Sprintf("Entities: %s", strings.Join(question.Intent.Entities, ", ")),
		fmt.Sprintf("Conditions: %s", strings.Join(question.Intent.Conditions, ", ")),
		"",
		"Relevant Policy Clauses:",
	}
	for i, c := range top3(clauses) {
		parts = append(parts, fmt.Sprintf("%d. %s (Relevance: %.2f)", i+1, c.Text, c.Relevance))
	}
	return strings.Join(parts, "\n")
}

// sourceClauses renders attribution strings for the top clauses, with page
// numbers when the chunk knows its page.
func sourceClauses(clauses []model.MatchedClause) []string {
	sources := []string{}
	for _, c := range top3(clauses) {
		desc := fmt.Sprintf("Clause: %.100s...", c.Text)
		if c.Chunk != nil && c.Chunk.PageNumber > 0 {
			desc += fmt.Sprintf(" (Page %d)", c.Chunk.PageNumber)
		}
		sources = append(sources, desc)
	}
	return sources
}

func top3(clauses []model.MatchedClause) []model.MatchedClause {
	if len(clauses) > 3 {
		return clauses[:3]
	}
	return clauses
}

// ScoreContribution is question weight times document weight when the
// answer clears the acceptance threshold, zero otherwise.
func ScoreContribution(questionWeight, documentWeight, confidence float64) float64 {
	if confidence >= model.AcceptanceThreshold {
		return questionWeight * documentWeight
	}
	return 0.0
}

// TotalScore sums the contributions of a batch of answers.
func TotalScore(results []model.AnswerResult) float64 {
	total := 0.0
	for _, r := range results {
		total += r.ScoreContribution
	}
	return total
}
