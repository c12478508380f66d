package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"archetypes/internal/config"
)

// TextGenerator is the generative-model contract the classifier and analyzer
// depend on. Implemented by GeminiClient; tests substitute fakes.
type TextGenerator interface {
	// GenerateText returns the model's plain-text completion for a prompt.
	GenerateText(ctx context.Context, model, prompt string) (string, error)

	// GenerateJSON is GenerateText with the response constrained to JSON.
	GenerateJSON(ctx context.Context, model, prompt string) (string, error)

	// Enabled reports whether the model API is configured at all.
	Enabled() bool
}

// GeminiClient calls the Gemini generateContent REST API.
type GeminiClient struct {
	config *config.AIConfig
	client *http.Client
}

// NewGeminiClient creates a client from the given AI configuration.
func NewGeminiClient(cfg *config.AIConfig) *GeminiClient {
	return &GeminiClient{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

func (c *GeminiClient) Enabled() bool {
	return c.config.IsEnabled()
}

func (c *GeminiClient) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	return c.generate(ctx, model, prompt, "")
}

func (c *GeminiClient) GenerateJSON(ctx context.Context, model, prompt string) (string, error) {
	return c.generate(ctx, model, prompt, "application/json")
}

func (c *GeminiClient) generate(ctx context.Context, model, prompt, mimeType string) (string, error) {
	genConfig := map[string]interface{}{
		"temperature": 0.3,
	}
	if mimeType != "" {
		genConfig["responseMimeType"] = mimeType
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": genConfig,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", c.config.ModelEndpoint(model), c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	// Parse Gemini response structure
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}
