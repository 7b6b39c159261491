// Package llm provides the Ollama LLM adapter.
// Clean Architecture: Adapter implementing ports.LLMService.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/asila/asila/internal/domain/entities"
)

// OllamaAdapter implements ports.LLMService using the Ollama API.
type OllamaAdapter struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaAdapter creates a new Ollama LLM adapter. Call deadlines come
// from the caller's context.
func NewOllamaAdapter(baseURL, model string) *OllamaAdapter {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaAdapter{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate produces an answer for query grounded in the retrieved chunks.
// The pipeline treats the output as opaque; the safety filter has the
// final say on what reaches the sender.
func (a *OllamaAdapter) Generate(ctx context.Context, chunks []entities.RetrievedChunk, query string) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:  a.model,
		Prompt: buildPrompt(chunks, query),
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return genResp.Response, nil
}

// buildPrompt frames the retrieved notices as the only allowed source.
func buildPrompt(chunks []entities.RetrievedChunk, query string) string {
	var sb strings.Builder
	sb.WriteString("You are a civic information assistant. Answer only from the verified notices below. ")
	sb.WriteString("Do not speculate or add information that is not in the notices.\n\nNotices:\n")
	for _, c := range chunks {
		sb.WriteString(fmt.Sprintf("[%s - %s]\n%s\n\n", c.TenantName, c.Title, c.Text))
	}
	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}
