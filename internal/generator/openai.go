package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	baseMaxOutputTokens  int64 = 1024
	limitMaxOutputTokens int64 = 4096

	instructions = `You write posts for a Telegram channel about programming.
Reply with the post text only: no preface, no title line, no hashtags.
Use Telegram legacy Markdown only (*bold*, _italic_, ` + "```code```" + `).`
)

// OpenAIGenerator calls OpenAI's Responses API to write posts.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator builds a generator for the given model. Retries are
// left to the caller.
func NewOpenAIGenerator(apiKey string, model string, opts ...option.RequestOption) (*OpenAIGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("api key is empty")
	}

	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("model is empty")
	}

	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}

	maxOutputTokens := baseMaxOutputTokens
	for {
		resp, err := g.client.Responses.New(ctx, responses.ResponseNewParams{
			Model:           g.model,
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Reasoning: responses.ReasoningParam{
				Effort: openai.ReasoningEffortLow,
			},
			Instructions: openai.String(instructions),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(prompt),
			},
		})
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens = min(maxOutputTokens*2, limitMaxOutputTokens)
				continue
			}
			return "", fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				resp.IncompleteDetails.Reason,
				maxOutputTokens,
			)
		}

		text := strings.TrimSpace(resp.OutputText())
		if text == "" {
			return "", fmt.Errorf("output text is missing (status = %s)", resp.Status)
		}
		return text, nil
	}
}
