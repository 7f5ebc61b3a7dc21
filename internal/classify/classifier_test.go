package classify

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/Vaibhav-Uniyal/policyq/internal/llm"
	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

type stubProvider struct {
	text string
	err  error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Text: s.text}, nil
}

func (s *stubProvider) IsAvailable(context.Context) bool { return true }

func TestClassifyType(t *testing.T) {
	c := NewClassifier(nil, 2)

	tests := []struct {
		question string
		want     model.QuestionType
	}{
		{"What is the grace period for premium payment?", model.TypeGracePeriod},
		{"What is the waiting period for pre-existing diseases?", model.TypeWaitingPeriod},
		{"Does this policy cover knee surgery?", model.TypeCoverage}, // coverage outranks surgery
		{"Knee surgery expenses for the insured", model.TypeSurgery},
		{"Are maternity expenses included under this plan?", model.TypeMaternity},
		{"Are medical expenses for an organ donor reimbursed?", model.TypeOrganDonor},
		{"What is the No Claim Discount offered?", model.TypeNCD},
		{"Is there a benefit for preventive health check-ups?", model.TypeHealthCheckup},
		{"What is the definition of a Hospital under this policy?", model.TypeHospitalDefinition},
		{"Are AYUSH treatments like Ayurveda reimbursable?", model.TypeAyush},
		{"Is there a sub-limit on room rent?", model.TypeRoomRent},
		{"Tell me about claim settlement timelines", model.TypeDefault},
	}

	for _, tt := range tests {
		if got := c.ClassifyType(tt.question); got != tt.want {
			t.Errorf("ClassifyType(%q) = %s, want %s", tt.question, got, tt.want)
		}
	}
}

func TestExtractTerms(t *testing.T) {
	got := ExtractTerms("What is the grace period for premium payment?")
	want := []string{"grace", "period", "premium", "payment"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractTerms = %v, want %v", got, want)
	}

	// Short tokens and stopwords drop out entirely.
	if terms := ExtractTerms("is it to be on at"); terms != nil {
		t.Errorf("expected no terms, got %v", terms)
	}
}

func TestQuestionWeights(t *testing.T) {
	tests := []struct {
		qType model.QuestionType
		want  float64
	}{
		{model.TypeCoverage, 2.0},
		{model.TypeOrganDonor, 2.0},
		{model.TypeWaitingPeriod, 1.5},
		{model.TypeGracePeriod, 1.0},
		{model.TypeDefault, 1.0},
		{model.QuestionType("mystery"), 1.0},
	}
	for _, tt := range tests {
		if got := WeightFor(tt.qType); got != tt.want {
			t.Errorf("WeightFor(%s) = %v, want %v", tt.qType, got, tt.want)
		}
	}
}

func TestProcessWithStructuredIntent(t *testing.T) {
	c := NewClassifier(&stubProvider{text: "```json\n" +
		`{"query_type":"duration_inquiry","entities":["grace period"],"conditions":["after due date"],"focus":"duration","specific_terms":["grace period","premium"]}` +
		"\n```"}, 2)

	pq := c.Process(context.Background(), "What is the grace period for premium payment?")

	if pq.Type != model.TypeGracePeriod {
		t.Fatalf("type = %s, want grace_period", pq.Type)
	}
	if pq.Weight != 1.0 {
		t.Errorf("weight = %v, want 1.0", pq.Weight)
	}
	if pq.Intent.QueryType != "duration_inquiry" {
		t.Errorf("query type = %q, want duration_inquiry", pq.Intent.QueryType)
	}
	if pq.Intent.Focus != "duration" {
		t.Errorf("focus = %q, want duration", pq.Intent.Focus)
	}
}

func TestProcessIntentFallback(t *testing.T) {
	tests := []struct {
		name     string
		provider llm.Provider
	}{
		{"no provider", nil},
		{"provider error", &stubProvider{err: errors.New("rate limited")}},
		{"malformed json", &stubProvider{text: "the grace period is thirty days"}},
		{"empty object", &stubProvider{text: "{}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(tt.provider, 2)
			pq := c.Process(context.Background(), "What is the grace period for premium payment?")

			if pq.Intent.QueryType != "general" {
				t.Errorf("query type = %q, want general", pq.Intent.QueryType)
			}
			if pq.Intent.Focus != "coverage" {
				t.Errorf("focus = %q, want coverage", pq.Intent.Focus)
			}
			if !reflect.DeepEqual(pq.Intent.Entities, pq.ExtractedTerms) {
				t.Errorf("entities = %v, want extracted terms %v", pq.Intent.Entities, pq.ExtractedTerms)
			}
			if len(pq.Intent.Conditions) != 0 {
				t.Errorf("conditions = %v, want empty", pq.Intent.Conditions)
			}
		})
	}
}

func TestProcessAllPreservesOrder(t *testing.T) {
	c := NewClassifier(nil, 2)
	questions := []string{
		"What is the grace period for premium payment?",
		"Is there a sub-limit on room rent?",
	}
	processed := c.ProcessAll(context.Background(), questions)

	if len(processed) != len(questions) {
		t.Fatalf("got %d processed questions, want %d", len(processed), len(questions))
	}
	for i, pq := range processed {
		if pq.OriginalQuestion != questions[i] {
			t.Errorf("question %d = %q, want %q", i, pq.OriginalQuestion, questions[i])
		}
	}
}

// trackingProvider records the peak number of simultaneous Complete calls.
type trackingProvider struct {
	mu     sync.Mutex
	active int
	peak   int
}

func (p *trackingProvider) Name() string { return "tracking" }

func (p *trackingProvider) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.active++
	if p.active > p.peak {
		p.peak = p.active
	}
	p.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	p.mu.Lock()
	p.active--
	p.mu.Unlock()
	return &llm.CompletionResponse{Text: "{}"}, nil
}

func (p *trackingProvider) IsAvailable(context.Context) bool { return true }

func TestProcessAllOverlapsIntentCalls(t *testing.T) {
	provider := &trackingProvider{}
	c := NewClassifier(provider, 4)

	questions := []string{
		"What is the grace period for premium payment?",
		"Is there a sub-limit on room rent?",
		"Are maternity expenses included under this plan?",
		"What is the No Claim Discount offered?",
	}
	processed := c.ProcessAll(context.Background(), questions)

	for i, pq := range processed {
		if pq.OriginalQuestion != questions[i] {
			t.Errorf("question %d = %q, want %q", i, pq.OriginalQuestion, questions[i])
		}
	}
	if provider.peak < 2 {
		t.Errorf("peak concurrent intent calls = %d, want at least 2", provider.peak)
	}
}
