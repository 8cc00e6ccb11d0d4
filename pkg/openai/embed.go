package openai

import (
	"context"
	"fmt"
	"sort"
)

// EmbedClient calls the /embeddings endpoint. The same text always maps to
// the same vector within one model version, which is all the index relies on.
type EmbedClient struct {
	api *apiClient
}

// NewEmbedClient creates an embeddings client. The API key is required.
func NewEmbedClient(cfg Config) (*EmbedClient, error) {
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	api, err := newAPIClient(cfg)
	if err != nil {
		return nil, err
	}
	return &EmbedClient{api: api}, nil
}

type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for one text.
func (c *EmbedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request, preserving input order.
func (c *EmbedClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var resp embedResponse
	if err := c.api.postJSON(ctx, "/embeddings", embedRequest{Input: texts, Model: c.api.cfg.Model}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai: embeddings: got %d vectors for %d texts", len(resp.Data), len(texts))
	}
	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}
