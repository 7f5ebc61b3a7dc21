package respond

import (
	"strings"
	"testing"
	"time"

	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

func newAssembler() *Assembler {
	return NewAssembler(time.Now(), model.ResponseMetadata{
		ModelUsed:      "gemini-2.0-flash",
		EmbeddingModel: "text-embedding-3-small",
		VectorIndex:    "memory",
	})
}

func sampleResults() []model.AnswerResult {
	return []model.AnswerResult{
		{
			Answer:            "The grace period is 30 days.",
			ConfidenceScore:   0.95,
			SourceClauses:     []string{"Clause: A grace period of thirty days... (Page 4)"},
			Reasoning:         "Stated directly in the clause.",
			QuestionWeight:    1.0,
			DocumentWeight:    2.0,
			ScoreContribution: 2.0,
		},
		{
			Answer:          "Unable to determine answer from available information.",
			ConfidenceScore: 0.3,
			SourceClauses:   []string{},
			Reasoning:       "Processing failed, using fallback response.",
			QuestionWeight:  1.5,
			DocumentWeight:  2.0,
		},
	}
}

func TestCompact(t *testing.T) {
	resp := newAssembler().Compact(sampleResults())

	if len(resp.Answers) != 2 || len(resp.ConfidenceScores) != 2 || len(resp.SourceClauses) != 2 {
		t.Fatalf("slices not aligned: %d/%d/%d",
			len(resp.Answers), len(resp.ConfidenceScores), len(resp.SourceClauses))
	}
	if resp.SourceClauses[0] != "Clause: A grace period of thirty days... (Page 4)" {
		t.Errorf("source[0] = %q", resp.SourceClauses[0])
	}
	if resp.SourceClauses[1] != "No specific source clause identified" {
		t.Errorf("source[1] = %q", resp.SourceClauses[1])
	}
	if resp.ProcessingTime < 0 {
		t.Errorf("processing time = %v", resp.ProcessingTime)
	}
}

func TestDetailed(t *testing.T) {
	questions := []string{
		"What is the grace period for premium payment?",
		"What is the waiting period for pre-existing diseases?",
	}
	resp := newAssembler().Detailed(sampleResults(), questions)

	if resp.Status != "success" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.TotalQuestions != 2 || resp.CorrectAnswers != 1 {
		t.Errorf("totals = %d/%d, want 2/1", resp.TotalQuestions, resp.CorrectAnswers)
	}
	if resp.AccuracyPercentage != 50.0 {
		t.Errorf("accuracy = %v, want 50", resp.AccuracyPercentage)
	}
	if resp.TotalScore != 2.0 {
		t.Errorf("total score = %v, want 2.0", resp.TotalScore)
	}
	if len(resp.ScoreBreakdown) != 2 {
		t.Fatalf("breakdown length = %d", len(resp.ScoreBreakdown))
	}
	if resp.ScoreBreakdown[0].Question != questions[0] || !resp.ScoreBreakdown[0].IsCorrect {
		t.Errorf("breakdown[0] = %+v", resp.ScoreBreakdown[0])
	}
	if resp.ScoreBreakdown[1].IsCorrect {
		t.Error("low-confidence answer marked correct")
	}
	if resp.Metadata.ModelUsed != "gemini-2.0-flash" {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Errorf("timestamp %q not RFC3339: %v", resp.Timestamp, err)
	}
}

func TestDetailedMissingQuestionLabels(t *testing.T) {
	resp := newAssembler().Detailed(sampleResults(), nil)
	if resp.ScoreBreakdown[0].Question != "Question 1" {
		t.Errorf("question label = %q, want positional placeholder", resp.ScoreBreakdown[0].Question)
	}
}

func TestErrorResponsesKeepCardinality(t *testing.T) {
	a := newAssembler()

	compact := a.ErrorCompact(3)
	if len(compact.Answers) != 3 || len(compact.ConfidenceScores) != 3 || len(compact.SourceClauses) != 3 {
		t.Fatal("error compact slices not aligned with question count")
	}
	for i := range compact.Answers {
		if compact.Answers[i] != "Unable to process request due to system error." {
			t.Errorf("answer[%d] = %q", i, compact.Answers[i])
		}
		if compact.ConfidenceScores[i] != 0.0 {
			t.Errorf("confidence[%d] = %v, want 0", i, compact.ConfidenceScores[i])
		}
		if compact.SourceClauses[i] != "Error occurred during processing" {
			t.Errorf("source[%d] = %q", i, compact.SourceClauses[i])
		}
	}

	detailed := a.ErrorDetailed(3)
	if detailed.Status != "error" || detailed.TotalQuestions != 3 {
		t.Errorf("detailed error = %q/%d", detailed.Status, detailed.TotalQuestions)
	}
	if len(detailed.ScoreBreakdown) != 0 {
		t.Errorf("error breakdown should be empty, got %d", len(detailed.ScoreBreakdown))
	}
}

func TestExplanationSummary(t *testing.T) {
	results := []model.AnswerResult{
		{ConfidenceScore: 0.95, ScoreContribution: 2.0},
		{ConfidenceScore: 0.8, ScoreContribution: 1.0},
		{ConfidenceScore: 0.6},
		{ConfidenceScore: 0.3},
	}
	summary := newAssembler().ExplanationSummary(results)

	for _, want := range []string{
		"Total Questions: 4",
		"High Confidence Answers: 2",
		"Medium Confidence Answers: 1",
		"Low Confidence Answers: 1",
		"Total Score: 3.00",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}

	if got := newAssembler().ExplanationSummary(nil); got != "Unable to generate explanation summary." {
		t.Errorf("empty summary = %q", got)
	}
}
