package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/osinachi-dev/voxgate/internal/types"
	"github.com/osinachi-dev/voxgate/pkg/Logger"
	"github.com/osinachi-dev/voxgate/pkg/llm"
)

type Generator struct {
	client    openai.Client
	model     string
	maxTokens int
	logger    *Logger.Logger
}

func New(apiKey, model string, maxTokens int, logger *Logger.Logger) *Generator {
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &Generator{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Generate implements llm.Generator.
func (g *Generator) Generate(ctx context.Context, userText string, history []types.Message) (*llm.Reply, error) {
	convertedMsgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	convertedMsgs = append(convertedMsgs, openai.SystemMessage(llm.SystemPrompt))
	for _, msg := range history {
		convertedMsgs = append(convertedMsgs, convertMsg(msg))
	}
	convertedMsgs = append(convertedMsgs, openai.UserMessage(userText))

	chatCompletion, err := g.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages:            convertedMsgs,
			Model:               g.model,
			MaxCompletionTokens: openai.Int(int64(g.maxTokens)),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	reply := &llm.Reply{
		Text:       chatCompletion.Choices[0].Message.Content,
		TokensUsed: int(chatCompletion.Usage.TotalTokens),
	}
	g.logger.Debugf("openai generated %d chars (%d tokens)", len(reply.Text), reply.TokensUsed)
	return reply, nil
}

func convertMsg(msg types.Message) openai.ChatCompletionMessageParamUnion {
	switch msg.Role {
	case types.ASSISTANT:
		return openai.AssistantMessage(msg.Content)
	case types.SYSTEM:
		return openai.SystemMessage(msg.Content)
	default:
		return openai.UserMessage(msg.Content)
	}
}
