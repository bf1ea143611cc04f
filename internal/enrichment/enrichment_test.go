package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/suykerbuyk/podseg/internal/config"
)

func TestTruncate(t *testing.T) {
	// Short text: no truncation
	short := "hello world"
	if got := truncate(short, 100); got != short {
		t.Errorf("short: got %q, want %q", got, short)
	}

	// Exact length: no truncation
	exact := strings.Repeat("a", 50)
	if got := truncate(exact, 50); got != exact {
		t.Errorf("exact: got %q, want %q", got, exact)
	}

	// Over limit: breaks at newline
	lines := "line one\nline two\nline three\nline four\nline five"
	got := truncate(lines, 30)
	if !strings.HasSuffix(got, "\n[...truncated]") {
		t.Errorf("over-limit: expected truncation suffix, got %q", got)
	}
	if strings.Contains(got, "line five") {
		t.Errorf("over-limit: should not contain final line, got %q", got)
	}
}

func TestBuildMessages(t *testing.T) {
	input := PromptInput{
		Source: "episode-12.txt",
		Text:   "[00:00:00] Welcome back.\n\n[00:00:05] Today we cover compilers.",
		Topics: []TopicOutline{
			{Start: "00:00:00", End: "00:00:05", Segments: 2},
			{Start: "00:01:00", End: "00:03:10", Segments: 14},
		},
	}

	msgs := buildMessages(input)

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" || !strings.Contains(msgs[0].Content, "under 250 words") {
		t.Errorf("system message: %+v", msgs[0])
	}
	if msgs[1].Role != "user" {
		t.Errorf("second message role: got %q, want %q", msgs[1].Role, "user")
	}

	userPrompt := msgs[1].Content
	for _, want := range []string{
		"## Source\nepisode-12.txt",
		"- Topic 2: 00:01:00 to 00:03:10 (14 segments)",
		"## Transcript\n[00:00:00] Welcome back.",
	} {
		if !strings.Contains(userPrompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, userPrompt)
		}
	}
}

func TestBuildMessages_NoOutline(t *testing.T) {
	msgs := buildMessages(PromptInput{Text: "hello"})
	if strings.Contains(msgs[1].Content, "Topic Outline") || strings.Contains(msgs[1].Content, "## Source") {
		t.Errorf("unexpected sections:\n%s", msgs[1].Content)
	}
}

func TestParseResponse(t *testing.T) {
	resp := chatResponse{
		Model: "gpt-4o-mini-2024",
		Choices: []chatChoice{
			{Message: chatMessage{Role: "assistant", Content: "\n- Compilers are fun.\n- Parsers first.\n"}},
		},
	}

	body, _ := json.Marshal(resp)
	result, err := parseResponse(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary != "- Compilers are fun.\n- Parsers first." {
		t.Errorf("summary: got %q", result.Summary)
	}
	if result.Model != "gpt-4o-mini-2024" {
		t.Errorf("model: got %q", result.Model)
	}
}

func TestParseResponse_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty choices", `{"choices":[]}`, "empty choices"},
		{"empty content", `{"choices":[{"message":{"content":"  "}}]}`, "empty summary"},
		{"api error", `{"error":{"message":"bad model"}}`, "bad model"},
		{"not json", `nope`, "unmarshal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseResponse([]byte(tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestGenerate_Disabled(t *testing.T) {
	cfg := config.EnrichmentConfig{Enabled: false}
	result, err := Generate(context.Background(), cfg, PromptInput{}, zerolog.Nop())
	if result != nil || err != nil {
		t.Errorf("disabled: got result=%v, err=%v", result, err)
	}
}

func TestGenerate_NoAPIKey(t *testing.T) {
	cfg := config.EnrichmentConfig{
		Enabled:   true,
		APIKeyEnv: "PODSEG_TEST_NONEXISTENT_KEY_12345",
	}
	result, err := Generate(context.Background(), cfg, PromptInput{}, zerolog.Nop())
	if result != nil || err != nil {
		t.Errorf("no key: got result=%v, err=%v", result, err)
	}
}

func TestSummarize_NoAPIKey(t *testing.T) {
	cfg := config.EnrichmentConfig{APIKeyEnv: "PODSEG_TEST_NONEXISTENT_KEY_12345"}
	_, err := Summarize(context.Background(), cfg, PromptInput{Text: "hi"}, zerolog.Nop())
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
	if !strings.Contains(err.Error(), "PODSEG_TEST_NONEXISTENT_KEY_12345") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestSummarize_EmptyTranscript(t *testing.T) {
	t.Setenv("PODSEG_TEST_KEY_EMPTY", "k")
	cfg := config.EnrichmentConfig{APIKeyEnv: "PODSEG_TEST_KEY_EMPTY"}
	if _, err := Summarize(context.Background(), cfg, PromptInput{Text: " \n"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for empty transcript")
	}
}

func TestSummarize_MockServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key-123" {
			t.Errorf("auth: got %q", r.Header.Get("Authorization"))
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" || req.Temperature != 0.3 || len(req.Messages) != 2 {
			t.Errorf("request: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"- One idea."}}]}`))
	}))
	defer server.Close()

	t.Setenv("PODSEG_TEST_KEY", "test-key-123")

	cfg := config.EnrichmentConfig{
		TimeoutSeconds: 5,
		APIKeyEnv:      "PODSEG_TEST_KEY",
		Model:          "test-model",
		BaseURL:        server.URL,
	}

	result, err := Summarize(context.Background(), cfg, PromptInput{Text: "some words"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary != "- One idea." {
		t.Errorf("summary: got %q", result.Summary)
	}
	if result.Model != "test-model" {
		t.Errorf("model should fall back to config: got %q", result.Model)
	}
}

func TestSummarize_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Delay longer than the client timeout
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	t.Setenv("PODSEG_TEST_KEY_TIMEOUT", "test-key")

	cfg := config.EnrichmentConfig{
		TimeoutSeconds: 30,
		APIKeyEnv:      "PODSEG_TEST_KEY_TIMEOUT",
		Model:          "test-model",
		BaseURL:        server.URL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Summarize(ctx, cfg, PromptInput{Text: "test"}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestSummarize_ClientError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	t.Setenv("PODSEG_TEST_KEY_401", "test-key")

	cfg := config.EnrichmentConfig{
		TimeoutSeconds: 5,
		APIKeyEnv:      "PODSEG_TEST_KEY_401",
		Model:          "test-model",
		BaseURL:        server.URL,
	}

	_, err := Summarize(context.Background(), cfg, PromptInput{Text: "test"}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for 401")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should mention status code: %v", err)
	}
	if calls != 1 {
		t.Errorf("client errors should not be retried, got %d calls", calls)
	}
}
