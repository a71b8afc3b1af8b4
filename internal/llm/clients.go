// Package llm wraps the Gemini SDK behind the small surface the itinerary
// generator needs, so domain services can be tested against a fake model.
package llm

import (
	"context"

	generativeAI "github.com/FACorreiaa/go-genai-sdk/lib"
	"google.golang.org/genai"
)

// ChatClient abstracts the LLM chat capability needed by the generation
// service.
type ChatClient interface {
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Model() string
}

// defaultChatModel matches the default the SDK applied before v1.0.0 made
// the model name a required constructor argument.
const defaultChatModel = "gemini-2.5-flash"

// GeminiChatClient adapts the generativeAI LLM client to the ChatClient
// interface.
type GeminiChatClient struct {
	client generativeAI.ChatClient
}

// NewGeminiChatClient creates a ChatClient backed by Gemini.
func NewGeminiChatClient(ctx context.Context, apiKey string) (ChatClient, error) {
	client, err := generativeAI.NewGeminiChatClient(ctx, apiKey, defaultChatModel)
	if err != nil {
		return nil, err
	}
	return &GeminiChatClient{client: client}, nil
}

func (g *GeminiChatClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.client.GenerateResponse(ctx, prompt, config)
}

func (g *GeminiChatClient) Model() string {
	if g.client == nil {
		return ""
	}
	return g.client.Model()
}
