// Package assistant talks to the chat model behind the finance assistant
// and renders the owner's financial snapshot into its system prompt.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// Roles accepted in a conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    string
	Content string
}

// ChatModel produces the next assistant message for a conversation.
type ChatModel interface {
	Reply(ctx context.Context, system string, turns []Turn) (string, error)
}

// Gemini is a ChatModel backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini chat model. An empty model name selects DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("assistant: missing API key")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Reply sends the conversation with system as the instruction and returns
// the model's text.
func (g *Gemini) Reply(ctx context.Context, system string, turns []Turn) (string, error) {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		contents = append(contents, genai.NewContentFromText(t.Content, geminiRole(t.Role)))
	}

	var config *genai.GenerateContentConfig
	if system != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("assistant: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("assistant: empty response from model")
	}
	return text, nil
}

func geminiRole(role string) genai.Role {
	if role == RoleAssistant || role == string(genai.RoleModel) {
		return genai.RoleModel
	}
	return genai.RoleUser
}
