package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/kozaktomas/style-genie/internal/constants"
)

const chatModel = openai.ChatModelGPT4_1Mini

type OpenAIProvider struct {
	usageMeter
	client *openai.Client
}

func NewOpenAIProvider(apiKey string, pricing RequestPricing) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		usageMeter: usageMeter{pricing: pricing},
		client:     &client,
	}
}

func (p *OpenAIProvider) Name() string {
	return chatModel
}

func (p *OpenAIProvider) RecommendStyles(ctx context.Context, req *StyleRequest) (*StyleAnalysis, error) {
	imageURL, err := jpegDataURL(req.ImageData)
	if err != nil {
		return nil, providerError(chatModel, "recommend", err)
	}

	var analysis *StyleAnalysis
	err = p.completeJSON(ctx, "recommend", buildStylePrompt(req), "Recommend hairstyles for this face.", imageURL, func(content string) error {
		a, err := ParseStyleAnalysis(content)
		analysis = a
		return err
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

func (p *OpenAIProvider) DescribeAsset(ctx context.Context, imageData []byte, gender string) (*AssetDescription, error) {
	imageURL, err := jpegDataURL(imageData)
	if err != nil {
		return nil, providerError(chatModel, "describe", err)
	}

	var desc *AssetDescription
	err = p.completeJSON(ctx, "describe", buildAssetPrompt(gender), "Describe this hairstyle.", imageURL, func(content string) error {
		d, err := ParseAssetDescription(content)
		desc = d
		return err
	})
	if err != nil {
		return nil, err
	}
	return desc, nil
}

func (p *OpenAIProvider) completeJSON(ctx context.Context, op, systemPrompt, userText, imageURL string, decode func(string) error) error {
	messages := []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(systemPrompt),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart(userText),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    imageURL,
							Detail: "low",
						}),
					},
				},
			},
		},
	}

	var lastError error
	var lastResponse string

	for range constants.OracleMaxRetries {
		resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    chatModel,
			Messages: messages,
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
			Temperature: openai.Float(0),
			MaxTokens:   openai.Int(800),
		})
		if err != nil {
			return providerError(chatModel, op, fmt.Errorf("OpenAI API error: %w", err))
		}

		if len(resp.Choices) == 0 {
			return providerError(chatModel, op, errors.New("no response from OpenAI"))
		}

		if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
			p.track(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		}

		content := resp.Choices[0].Message.Content
		lastResponse = content

		if err := decode(content); err != nil {
			lastError = err
			messages = append(messages,
				openai.ChatCompletionMessageParamUnion{
					OfAssistant: &openai.ChatCompletionAssistantMessageParam{
						Content: openai.ChatCompletionAssistantMessageParamContentUnion{
							OfString: openai.String(content),
						},
					},
				},
				openai.ChatCompletionMessageParamUnion{
					OfUser: &openai.ChatCompletionUserMessageParam{
						Content: openai.ChatCompletionUserMessageParamContentUnion{
							OfString: openai.String(fmt.Sprintf(jsonRetryFeedback, err)),
						},
					},
				},
			)
			continue
		}

		return nil
	}

	return providerError(chatModel, op, fmt.Errorf("failed to parse JSON after %d attempts: %w (last response: %s)", constants.OracleMaxRetries, lastError, lastResponse))
}

func jpegDataURL(imageData []byte) (string, error) {
	resized, err := ResizeImage(imageData, constants.OracleImageSize)
	if err != nil {
		return "", fmt.Errorf("failed to resize image: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(resized), nil
}
