package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type geminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	max        int
	httpClient *http.Client
}

// newGeminiClient creates a CompletionClient using the Gemini generateContent API.
func newGeminiClient(cfg Config) (CompletionClient, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &geminiClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		max:     cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"system_instruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (c *geminiClient) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	reqBody := geminiRequest{
		Contents: c.convertMessages(messages),
	}
	if system != "" {
		reqBody.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: system}},
		}
	}
	if c.max > 0 {
		reqBody.GenerationConfig = &geminiGenerationConfig{MaxOutputTokens: c.max}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini non-success status=%d body=%s", resp.StatusCode, truncateBody(body))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse gemini response: %s", truncateBody(body))
	}

	if parsed.UsageMetadata != nil {
		slog.DebugContext(ctx, "llm completion finished",
			"provider", ProviderGemini,
			"model", c.model,
			"duration_ms", time.Since(start).Milliseconds(),
			"prompt_tokens", parsed.UsageMetadata.PromptTokenCount,
			"completion_tokens", parsed.UsageMetadata.CandidatesTokenCount)
	}

	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", fmt.Errorf("empty completion content")
	}

	return content, nil
}

func (c *geminiClient) Model() string {
	return c.model
}

// convertMessages maps chat roles to the Gemini content roles.
// Gemini has no system role inside contents and calls the assistant "model";
// system-role entries (the rolling summary) are folded into user turns.
func (c *geminiClient) convertMessages(msgs []Message) []geminiContent {
	result := make([]geminiContent, 0, len(msgs))

	for _, msg := range msgs {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		result = append(result, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	return result
}

func truncateBody(body []byte) string {
	const maxChars = 400
	runes := []rune(string(body))
	if len(runes) <= maxChars {
		return string(body)
	}
	return string(runes[:maxChars])
}
