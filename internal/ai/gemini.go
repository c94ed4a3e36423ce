package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/kozaktomas/style-genie/internal/constants"
)

const geminiModel = "gemini-2.5-flash"

type GeminiProvider struct {
	usageMeter
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string, pricing RequestPricing) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		usageMeter: usageMeter{pricing: pricing},
		client:     client,
	}, nil
}

func (p *GeminiProvider) Name() string {
	return geminiModel
}

func (p *GeminiProvider) RecommendStyles(ctx context.Context, req *StyleRequest) (*StyleAnalysis, error) {
	resizedData, err := ResizeImage(req.ImageData, constants.OracleImageSize)
	if err != nil {
		return nil, providerError(geminiModel, "recommend", fmt.Errorf("failed to resize image: %w", err))
	}

	var analysis *StyleAnalysis
	err = p.generateJSON(ctx, "recommend", []*genai.Part{
		{Text: buildStylePrompt(req)},
		{InlineData: &genai.Blob{Data: resizedData, MIMEType: "image/jpeg"}},
	}, func(content string) error {
		a, err := ParseStyleAnalysis(content)
		analysis = a
		return err
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

func (p *GeminiProvider) DescribeAsset(ctx context.Context, imageData []byte, gender string) (*AssetDescription, error) {
	resizedData, err := ResizeImage(imageData, constants.OracleImageSize)
	if err != nil {
		return nil, providerError(geminiModel, "describe", fmt.Errorf("failed to resize image: %w", err))
	}

	var desc *AssetDescription
	err = p.generateJSON(ctx, "describe", []*genai.Part{
		{Text: buildAssetPrompt(gender)},
		{InlineData: &genai.Blob{Data: resizedData, MIMEType: "image/jpeg"}},
	}, func(content string) error {
		d, err := ParseAssetDescription(content)
		desc = d
		return err
	})
	if err != nil {
		return nil, err
	}
	return desc, nil
}

// generateJSON sends parts and feeds parse errors back to the model until decode succeeds.
func (p *GeminiProvider) generateJSON(ctx context.Context, op string, parts []*genai.Part, decode func(string) error) error {
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	}

	var lastError error
	var lastResponse string

	for range constants.OracleMaxRetries {
		result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, config)
		if err != nil {
			return providerError(geminiModel, op, fmt.Errorf("gemini API error: %w", err))
		}

		if result.UsageMetadata != nil {
			p.track(int64(result.UsageMetadata.PromptTokenCount), int64(result.UsageMetadata.CandidatesTokenCount))
		}

		content := result.Text()
		if content == "" {
			return providerError(geminiModel, op, errors.New("no response from Gemini"))
		}
		lastResponse = content

		if err := decode(content); err != nil {
			lastError = err
			contents = append(contents,
				&genai.Content{
					Role:  "model",
					Parts: []*genai.Part{{Text: content}},
				},
				&genai.Content{
					Role:  "user",
					Parts: []*genai.Part{{Text: fmt.Sprintf(jsonRetryFeedback, err)}},
				},
			)
			continue
		}

		return nil
	}

	return providerError(geminiModel, op, fmt.Errorf("failed to parse JSON after %d attempts: %w (last response: %s)", constants.OracleMaxRetries, lastError, lastResponse))
}
