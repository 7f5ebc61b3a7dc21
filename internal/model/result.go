package model

// AcceptanceThreshold is the fixed confidence cutoff above which an answer
// counts as correct and contributes to the total score.
const AcceptanceThreshold = 0.7

// MatchedClause is a typed, scored clause lifted out of a candidate chunk.
// Ephemeral: created and consumed within a single question's evaluation.
type MatchedClause struct {
	Text       string         `json:"text"`
	Type       QuestionType   `json:"type"` // Shares the question-type vocabulary
	Confidence float64        `json:"confidence"`
	Relevance  float64        `json:"relevance_score"`
	Chunk      *DocumentChunk `json:"-"`
	Details    map[string]any `json:"details,omitempty"` // Type-keyed extracted values (days, months, percentages)
}

// AnswerResult is the evaluator's terminal artifact for one question.
type AnswerResult struct {
	Answer            string   `json:"answer"`
	ConfidenceScore   float64  `json:"confidence_score"`
	SourceClauses     []string `json:"source_clauses"`
	Reasoning         string   `json:"reasoning"`
	QuestionWeight    float64  `json:"question_weight"`
	DocumentWeight    float64  `json:"document_weight"`
	ScoreContribution float64  `json:"score_contribution"`
}

// QueryResponse is the compact response shape. All slices are aligned with
// the input question order and always have the same length as the question
// list, including on the total-failure path.
type QueryResponse struct {
	Answers          []string  `json:"answers"`
	ConfidenceScores []float64 `json:"confidence_scores"`
	SourceClauses    []string  `json:"source_clauses"`
	ProcessingTime   float64   `json:"processing_time"` // Seconds, wall clock for the whole run
}

// ScoreBreakdownItem explains one question's contribution to the total.
type ScoreBreakdownItem struct {
	Question          string   `json:"question"`
	Answer            string   `json:"answer"`
	ConfidenceScore   float64  `json:"confidence_score"`
	QuestionWeight    float64  `json:"question_weight"`
	DocumentWeight    float64  `json:"document_weight"`
	ScoreContribution float64  `json:"score_contribution"`
	IsCorrect         bool     `json:"is_correct"`
	SourceClauses     []string `json:"source_clauses"`
	Reasoning         string   `json:"reasoning"`
}

// ResponseMetadata records which collaborators served a run.
type ResponseMetadata struct {
	RequestID      string `json:"request_id"`
	ModelUsed      string `json:"model_used"`
	EmbeddingModel string `json:"embedding_model"`
	VectorIndex    string `json:"vector_index"`
}

// DetailedResponse extends the compact response with scoring information.
type DetailedResponse struct {
	Status             string               `json:"status"`
	Timestamp          string               `json:"timestamp"`
	ProcessingTime     float64              `json:"processing_time"`
	TotalScore         float64              `json:"total_score"`
	CorrectAnswers     int                  `json:"correct_answers"`
	TotalQuestions     int                  `json:"total_questions"`
	AccuracyPercentage float64              `json:"accuracy_percentage"`
	Answers            []string             `json:"answers"`
	ConfidenceScores   []float64            `json:"confidence_scores"`
	SourceClauses      []string             `json:"source_clauses"`
	ScoreBreakdown     []ScoreBreakdownItem `json:"score_breakdown"`
	Metadata           ResponseMetadata     `json:"metadata"`
	ExplanationSummary string               `json:"explanation_summary,omitempty"`
}

// SystemStatus reports component readiness and the active configuration.
type SystemStatus struct {
	Status        string          `json:"status"`
	Components    map[string]bool `json:"components"`
	Configuration StatusConfig    `json:"configuration"`
}

// StatusConfig is the configuration slice exposed through status queries.
type StatusConfig struct {
	LLMModel              string  `json:"llm_model"`
	EmbeddingModel        string  `json:"embedding_model"`
	VectorIndex           string  `json:"vector_index"`
	ChunkSize             int     `json:"chunk_size"`
	KnownDocumentWeight   float64 `json:"known_document_weight"`
	UnknownDocumentWeight float64 `json:"unknown_document_weight"`
}
