package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/suykerbuyk/podseg/internal/httpx"
)

// OpenAI posts audio to an OpenAI-compatible /audio/transcriptions endpoint
// and asks for verbose_json to get segment timings.
type OpenAI struct {
	client   *httpx.Client
	baseURL  string
	apiKey   string
	model    string
	language string
}

func NewOpenAI(client *httpx.Client, baseURL, apiKey, model, language string) *OpenAI {
	return &OpenAI{client: client, baseURL: baseURL, apiKey: apiKey, model: model, language: language}
}

func (o *OpenAI) Name() string { return "openai" }

type verboseResponse struct {
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

func (o *OpenAI) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	body, contentType, err := o.form(filepath.Base(audioPath), audio)
	if err != nil {
		return nil, err
	}

	url := httpx.Endpoint(o.baseURL, "/audio/transcriptions")
	respBody, err := o.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}

	var vr verboseResponse
	if err := json.Unmarshal(respBody, &vr); err != nil {
		return nil, fmt.Errorf("unmarshal transcription: %w", err)
	}
	res := &Result{Language: vr.Language, Duration: vr.Duration, Segments: vr.Segments}
	if len(res.Segments) == 0 && vr.Text != "" {
		res.Segments = []Segment{{Start: 0, End: vr.Duration, Text: vr.Text}}
	}
	return res, nil
}

func (o *OpenAI) form(name string, audio []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	fields := [][2]string{
		{"model", o.model},
		{"response_format", "verbose_json"},
		{"timestamp_granularities[]", "segment"},
	}
	if o.language != "" {
		fields = append(fields, [2]string{"language", o.language})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("build form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}
