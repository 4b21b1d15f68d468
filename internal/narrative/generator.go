package narrative

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const systemInstruction = "You are a climate impact analyst. Provide detailed, evidence-based projections of climate change effects on daily life."

const defaultModel = "gpt-4o"

// Generator turns a rendered prompt into a narrative using OpenAI's chat API.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator creates a narrative generator.
// It reads the OPENAI_API_KEY environment variable for authentication.
// model may be empty to use the default.
func NewGenerator(model string) (*Generator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}
	if model == "" {
		model = defaultModel
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Generator{
		client: client,
		model:  model,
	}, nil
}

// Generate submits the prompt and returns the narrative text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	log.Printf("narrative: generating with model %s (%d byte prompt)", g.model, len(prompt))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(2000),
		Temperature: openai.Float(0.4),
	})
	if err != nil {
		return "", fmt.Errorf("narrative generation failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", errors.New("empty completion returned")
	}

	log.Printf("narrative: generated %d bytes", len(text))
	return text, nil
}
