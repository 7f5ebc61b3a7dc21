package respond

import (
	"fmt"
	"strings"
	"time"

	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

const (
	noSourceClause     = "No specific source clause identified"
	errorAnswer        = "Unable to process request due to system error."
	errorSource        = "Error occurred during processing"
	summaryUnavailable = "Unable to generate explanation summary."
)

// Assembler shapes answer results into response payloads. Every response
// keeps its slices aligned with the input question order and of equal
// length, including the error paths.
type Assembler struct {
	start    time.Time
	metadata model.ResponseMetadata
}

// NewAssembler starts timing at construction; elapsed time is stamped on
// every response the assembler produces.
func NewAssembler(start time.Time, metadata model.ResponseMetadata) *Assembler {
	return &Assembler{start: start, metadata: metadata}
}

func (a *Assembler) elapsed() float64 {
	return time.Since(a.start).Seconds()
}

// Compact builds the minimal answers/confidences/sources response. The
// first source clause of each answer stands in for all of them.
func (a *Assembler) Compact(results []model.AnswerResult) model.QueryResponse {
	answers := make([]string, len(results))
	confidences := make([]float64, len(results))
	sources := make([]string, len(results))

	for i, r := range results {
		answers[i] = r.Answer
		confidences[i] = r.ConfidenceScore
		if len(r.SourceClauses) > 0 {
			sources[i] = r.SourceClauses[0]
		} else {
			sources[i] = noSourceClause
		}
	}

	return model.QueryResponse{
		Answers:          answers,
		ConfidenceScores: confidences,
		SourceClauses:    sources,
		ProcessingTime:   a.elapsed(),
	}
}

// Detailed extends the compact response with scoring and attribution
// detail for each question.
func (a *Assembler) Detailed(results []model.AnswerResult, questions []string) model.DetailedResponse {
	compact := a.Compact(results)

	correct := 0
	for _, r := range results {
		if r.ConfidenceScore >= model.AcceptanceThreshold {
			correct++
		}
	}
	accuracy := 0.0
	totalScore := 0.0
	if len(results) > 0 {
		accuracy = float64(correct) / float64(len(results)) * 100
	}

	breakdown := make([]model.ScoreBreakdownItem, len(results))
	for i, r := range results {
		question := fmt.Sprintf("Question %d", i+1)
		if i < len(questions) {
			question = questions[i]
		}
		breakdown[i] = model.ScoreBreakdownItem{
			Question:          question,
			Answer:            r.Answer,
			ConfidenceScore:   r.ConfidenceScore,
			QuestionWeight:    r.QuestionWeight,
			DocumentWeight:    r.DocumentWeight,
			ScoreContribution: r.ScoreContribution,
			IsCorrect:         r.ConfidenceScore >= model.AcceptanceThreshold,
			SourceClauses:     r.SourceClauses,
			Reasoning:         r.Reasoning,
		}
		totalScore += r.ScoreContribution
	}

	return model.DetailedResponse{
		Status:             "success",
		Timestamp:          time.Now().Format(time.RFC3339),
		ProcessingTime:     compact.ProcessingTime,
		TotalScore:         totalScore,
		CorrectAnswers:     correct,
		TotalQuestions:     len(results),
		AccuracyPercentage: accuracy,
		Answers:            compact.Answers,
		ConfidenceScores:   compact.ConfidenceScores,
		SourceClauses:      compact.SourceClauses,
		ScoreBreakdown:     breakdown,
		Metadata:           a.metadata,
		ExplanationSummary: a.ExplanationSummary(results),
	}
}

// ErrorCompact is the compact shape for a run that failed outright.
func (a *Assembler) ErrorCompact(numQuestions int) model.QueryResponse {
	return model.QueryResponse{
		Answers:          repeat(errorAnswer, numQuestions),
		ConfidenceScores: repeatFloat(0.0, numQuestions),
		SourceClauses:    repeat(errorSource, numQuestions),
		ProcessingTime:   a.elapsed(),
	}
}

// ErrorDetailed is the detailed shape for a run that failed outright.
func (a *Assembler) ErrorDetailed(numQuestions int) model.DetailedResponse {
	return model.DetailedResponse{
		Status:             "error",
		Timestamp:          time.Now().Format(time.RFC3339),
		ProcessingTime:     a.elapsed(),
		TotalScore:         0.0,
		CorrectAnswers:     0,
		TotalQuestions:     numQuestions,
		AccuracyPercentage: 0.0,
		Answers:            repeat(errorAnswer, numQuestions),
		ConfidenceScores:   repeatFloat(0.0, numQuestions),
		SourceClauses:      repeat(errorSource, numQuestions),
		ScoreBreakdown:     []model.ScoreBreakdownItem{},
		Metadata:           a.metadata,
	}
}

// ExplanationSummary buckets answers by confidence tier and reports the
// aggregate score.
func (a *Assembler) ExplanationSummary(results []model.AnswerResult) string {
	if len(results) == 0 {
		return summaryUnavailable
	}

	high, medium, low := 0, 0, 0
	totalScore, totalConfidence := 0.0, 0.0
	for _, r := range results {
		switch {
		case r.ConfidenceScore >= 0.8:
			high++
		case r.ConfidenceScore >= 0.5:
			medium++
		default:
			low++
		}
		totalScore += r.ScoreContribution
		totalConfidence += r.ConfidenceScore
	}

	lines := []string{
		"Processing Summary:",
		fmt.Sprintf("- Total Questions: %d", len(results)),
		fmt.Sprintf("- High Confidence Answers: %d", high),
		fmt.Sprintf("- Medium Confidence Answers: %d", medium),
		fmt.Sprintf("- Low Confidence Answers: %d", low),
		fmt.Sprintf("- Total Score: %.2f", totalScore),
		fmt.Sprintf("- Average Confidence: %.2f", totalConfidence/float64(len(results))),
	}
	return strings.Join(lines, "\n")
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func repeatFloat(f float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f
	}
	return out
}
