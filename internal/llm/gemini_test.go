package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("Expected generateContent path, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("Expected key=test-key, got %s", r.URL.Query().Get("key"))
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if len(req.Contents) == 0 || req.Contents[0].Parts[0].Text == "" {
			t.Error("Expected a non-empty prompt")
		}

		resp := geminiResponse{}
		resp.Candidates = []struct {
			Content      geminiContent `json:"content"`
			FinishReason string        `json:"finishReason"`
		}{
			{Content: geminiContent{Parts: []geminiPart{{Text: `{"answer": "Thirty days.", "confidence": 0.95, "reasoning": "Stated in the clause."}`}}}},
		}
		resp.UsageMetadata.TotalTokenCount = 42
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewGeminiProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gemini-2.0-flash",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Prompt:      "What is the grace period?",
		MaxTokens:   500,
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if !strings.Contains(resp.Text, "Thirty days") {
		t.Errorf("Unexpected response text: %s", resp.Text)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("Expected 42 tokens, got %d", resp.TokensUsed)
	}
	if resp.Model != "gemini-2.0-flash" {
		t.Errorf("Expected model gemini-2.0-flash, got %s", resp.Model)
	}
}

func TestGeminiProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	provider, err := NewGeminiProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	if err == nil {
		t.Fatal("Expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("Expected API error message, got: %v", err)
	}
}

func TestNewGeminiProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewGeminiProvider(Config{}); err == nil {
		t.Error("Expected error when API key is missing")
	}
}

func TestNewProvider_Factory(t *testing.T) {
	cases := []struct {
		name     string
		config   Config
		wantNil  bool
		wantErr  bool
		wantName string
	}{
		{"disabled", Config{Provider: ""}, true, false, ""},
		{"gemini", Config{Provider: "gemini", APIKey: "k"}, false, false, "gemini"},
		{"openai", Config{Provider: "openai", APIKey: "k"}, false, false, "openai"},
		{"ollama", Config{Provider: "ollama"}, false, false, "ollama"},
		{"unknown", Config{Provider: "palm"}, true, true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewProvider(tc.config)
			if (err != nil) != tc.wantErr {
				t.Fatalf("NewProvider error = %v, wantErr %v", err, tc.wantErr)
			}
			if (p == nil) != tc.wantNil {
				t.Fatalf("NewProvider nil = %v, want %v", p == nil, tc.wantNil)
			}
			if p != nil && p.Name() != tc.wantName {
				t.Errorf("Name() = %s, want %s", p.Name(), tc.wantName)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  ```json\n{}\n```  ", "{}"},
	}
	for _, tc := range cases {
		if got := StripCodeFences(tc.in); got != tc.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
