package model

// QuestionType categorizes a question for scoring weights. The set is
// closed; anything that matches no pattern falls back to TypeDefault.
type QuestionType string

const (
	TypeGracePeriod        QuestionType = "grace_period"
	TypeWaitingPeriod      QuestionType = "waiting_period"
	TypeCoverage           QuestionType = "coverage"
	TypeMaternity          QuestionType = "maternity"
	TypeSurgery            QuestionType = "surgery"
	TypeOrganDonor         QuestionType = "organ_donor"
	TypeNCD                QuestionType = "ncd"
	TypeHealthCheckup      QuestionType = "health_checkup"
	TypeHospitalDefinition QuestionType = "hospital_definition"
	TypeAyush              QuestionType = "ayush"
	TypeRoomRent           QuestionType = "room_rent"
	TypeDefault            QuestionType = "default"
)

// StructuredIntent is the machine-extracted summary of what a question is
// really asking. Normally produced by the generative collaborator; built
// deterministically from extracted terms when that call fails.
type StructuredIntent struct {
	QueryType     string   `json:"query_type"`
	Entities      []string `json:"entities"`
	Conditions    []string `json:"conditions"`
	Focus         string   `json:"focus"`
	SpecificTerms []string `json:"specific_terms"`
}

// ProcessedQuestion is the classifier's output for one question. Created
// once at classification time and immutable afterward.
type ProcessedQuestion struct {
	OriginalQuestion string           `json:"original_question"`
	Type             QuestionType     `json:"question_type"`
	ExtractedTerms   []string         `json:"extracted_terms"`
	Intent           StructuredIntent `json:"structured_intent"`
	Weight           float64          `json:"weight"`
}
