package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kozaktomas/style-genie/internal/constants"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2-vision:11b"
)

type OllamaProvider struct {
	usageMeter
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

func (p *OllamaProvider) Name() string {
	return p.model
}

// ollamaRequest represents a request to the Ollama chat API
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // base64 encoded images
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

// ollamaResponse represents a response from the Ollama chat API
type ollamaResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool `json:"done"`
	PromptEvalCount int  `json:"prompt_eval_count"`
	EvalCount       int  `json:"eval_count"`
}

func (p *OllamaProvider) RecommendStyles(ctx context.Context, req *StyleRequest) (*StyleAnalysis, error) {
	var analysis *StyleAnalysis
	err := p.chatJSON(ctx, "recommend", buildStylePrompt(req), "Recommend hairstyles for this face.", req.ImageData, func(content string) error {
		a, err := ParseStyleAnalysis(content)
		analysis = a
		return err
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

func (p *OllamaProvider) DescribeAsset(ctx context.Context, imageData []byte, gender string) (*AssetDescription, error) {
	var desc *AssetDescription
	err := p.chatJSON(ctx, "describe", buildAssetPrompt(gender), "Describe this hairstyle.", imageData, func(content string) error {
		d, err := ParseAssetDescription(content)
		desc = d
		return err
	})
	if err != nil {
		return nil, err
	}
	return desc, nil
}

func (p *OllamaProvider) chatJSON(ctx context.Context, op, systemPrompt, userText string, imageData []byte, decode func(string) error) error {
	resizedData, err := ResizeImage(imageData, constants.OracleImageSize)
	if err != nil {
		return providerError(p.model, op, fmt.Errorf("failed to resize image: %w", err))
	}

	messages := []ollamaMessage{
		{
			Role:    "system",
			Content: systemPrompt,
		},
		{
			Role:    "user",
			Content: userText,
			Images:  []string{base64.StdEncoding.EncodeToString(resizedData)},
		},
	}

	var lastError error
	var lastResponse string

	for range constants.OracleMaxRetries {
		resp, err := p.sendRequest(ctx, messages)
		if err != nil {
			return providerError(p.model, op, fmt.Errorf("ollama API error: %w", err))
		}

		// Ollama is free, but tokens are tracked for stats
		p.track(int64(resp.PromptEvalCount), int64(resp.EvalCount))

		content := resp.Message.Content
		lastResponse = content

		if err := decode(content); err != nil {
			lastError = err
			messages = append(messages,
				ollamaMessage{
					Role:    "assistant",
					Content: content,
				},
				ollamaMessage{
					Role:    "user",
					Content: fmt.Sprintf(jsonRetryFeedback, err),
				},
			)
			continue
		}

		return nil
	}

	return providerError(p.model, op, fmt.Errorf("failed to parse JSON after %d attempts: %w (last response: %s)", constants.OracleMaxRetries, lastError, lastResponse))
}

func (p *OllamaProvider) sendRequest(ctx context.Context, messages []ollamaMessage) (*ollamaResponse, error) {
	reqBody := ollamaRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
		Format:   "json",
		Options: ollamaOptions{
			NumPredict: 800,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &ollamaResp, nil
}
