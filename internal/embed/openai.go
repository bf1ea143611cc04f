package embed

import (
	"context"
	"fmt"
	"sort"

	"github.com/suykerbuyk/podseg/internal/httpx"
)

// openAIBatch caps inputs per request.
const openAIBatch = 256

// OpenAI calls an OpenAI-compatible /embeddings endpoint.
type OpenAI struct {
	client     *httpx.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

func NewOpenAI(client *httpx.Client, baseURL, apiKey, model string, dimensions int) *OpenAI {
	return &OpenAI{client: client, baseURL: baseURL, apiKey: apiKey, model: model, dimensions: dimensions}
}

func (o *OpenAI) Name() string { return "openai/" + o.model }

// CacheID adds the requested dimensions; 0 is the model default.
func (o *OpenAI) CacheID() string {
	return fmt.Sprintf("openai/%s/%d", o.model, o.dimensions)
}

func (o *OpenAI) Close() error { return nil }

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	url := httpx.Endpoint(o.baseURL, "/embeddings")

	for start := 0; start < len(texts); start += openAIBatch {
		end := min(start+openAIBatch, len(texts))
		req := embeddingRequest{Model: o.model, Input: texts[start:end], Dimensions: o.dimensions}

		var resp embeddingResponse
		if err := o.client.PostJSON(ctx, url, o.apiKey, req, &resp); err != nil {
			return nil, fmt.Errorf("embeddings request: %w", err)
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("embeddings API error: %s", resp.Error.Message)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("embeddings API returned %d vectors for %d inputs", len(resp.Data), end-start)
		}

		sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
		for _, d := range resp.Data {
			out = append(out, d.Embedding)
		}
	}
	return out, nil
}
