package advisor

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the model used by the Gemini backend.
const DefaultGeminiModel = "gemini-2.5-pro"

// SystemInstruction frames every Gemini session.
const SystemInstruction = `You are a retirement planning assistant for a retiree living off a
cryptocurrency portfolio. The retiree keeps a cash buffer of a few years of
expenses and refills it by selling the tax lots with the highest cost basis
first. Give practical, concise advice in markdown. Never invent prices.`

// Gemini is a Chatter backed by a Gemini model.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini returns a Gemini backend. An empty model means DefaultGeminiModel.
func NewGemini(client *genai.Client, model string) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{client: client, model: model}
}

// Chat starts a new chat session and sends prompt.
func (g *Gemini) Chat(ctx context.Context, prompt string, p Params) (Response, error) {
	temperature := p.Temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: SystemInstruction}}},
		Temperature:       &temperature,
		MaxOutputTokens:   p.MaxTokens,
	}
	chat, err := g.client.Chats.Create(ctx, g.model, config, nil)
	if err != nil {
		return Response{}, err
	}
	resp, err := chat.Send(ctx, &genai.Part{Text: prompt})
	if err != nil {
		return Response{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Response{}, fmt.Errorf("%w from %s", ErrNoResponse, g.model)
	}
	c := resp.Candidates[0]
	return Response{
		Content:      c.Content.Parts[0].Text,
		FinishReason: string(c.FinishReason),
		Model:        g.model,
		Time:         time.Now(),
	}, nil
}
