package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/osinachi-dev/voxgate/internal/types"
	"github.com/osinachi-dev/voxgate/pkg/Logger"
	"github.com/osinachi-dev/voxgate/pkg/llm"
	"google.golang.org/api/option"
)

type Generator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *Logger.Logger
}

func New(ctx context.Context, apiKey, modelName string, maxTokens int, logger *Logger.Logger) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(llm.SystemPrompt)},
	}
	if maxTokens > 0 {
		mt := int32(maxTokens)
		model.MaxOutputTokens = &mt
	}

	return &Generator{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Generate implements llm.Generator. History is replayed through a chat
// session so Gemini sees the prior turns with proper roles.
func (g *Generator) Generate(ctx context.Context, userText string, history []types.Message) (*llm.Reply, error) {
	cs := g.model.StartChat()
	cs.History = make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		cs.History = append(cs.History, &genai.Content{
			Role:  geminiRole(msg.Role),
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(userText))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no response candidates received")
	}

	var responseText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			responseText += string(textPart)
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("empty response received")
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	g.logger.Debugf("gemini generated %d chars (%d tokens)", len(responseText), tokens)
	return &llm.Reply{Text: responseText, TokensUsed: tokens}, nil
}

func (g *Generator) Close() error {
	return g.client.Close()
}

// geminiRole maps our roles onto Gemini's user/model vocabulary.
func geminiRole(r types.Role) string {
	if r == types.ASSISTANT {
		return "model"
	}
	return "user"
}
