package ollama

import (
	"context"
	"fmt"
	"log"

	"github.com/ollama/ollama/api"
	"github.com/osinachi-dev/voxgate/internal/types"
	"github.com/osinachi-dev/voxgate/pkg/Logger"
	"github.com/osinachi-dev/voxgate/pkg/llm"
	"github.com/presbrey/ollamafarm"
)

// Generator runs chat completions against one of a farm of Ollama servers.
type Generator struct {
	farm      *ollamafarm.Farm
	model     string
	maxTokens int
	logger    *Logger.Logger
}

func New(serverURLs []string, model string, maxTokens int, logger *Logger.Logger) *Generator {
	farm := ollamafarm.New()
	for _, srv := range serverURLs {
		if err := farm.RegisterURL(srv, nil); err != nil {
			log.Printf("ollama register %s: %v", srv, err)
		}
	}
	return &Generator{
		farm:      farm,
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Generate implements llm.Generator.
func (g *Generator) Generate(ctx context.Context, userText string, history []types.Message) (*llm.Reply, error) {
	msgs := make([]api.Message, 0, len(history)+2)
	msgs = append(msgs, api.Message{Role: string(types.SYSTEM), Content: llm.SystemPrompt})
	for _, m := range history {
		msgs = append(msgs, api.Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, api.Message{Role: string(types.USER), Content: userText})

	stream := false
	req := api.ChatRequest{
		Model:    g.model,
		Messages: msgs,
		Stream:   &stream,
		Options: map[string]any{
			"num_predict": g.maxTokens,
		},
	}

	// pick first available server
	srv := g.farm.First(&ollamafarm.Where{Offline: false})
	if srv == nil {
		return nil, fmt.Errorf("no ollama server available for model %s", g.model)
	}

	var reply llm.Reply
	err := srv.Client().Chat(ctx, &req, func(resp api.ChatResponse) error {
		reply.Text += resp.Message.Content
		if resp.Done {
			reply.TokensUsed = resp.Metrics.PromptEvalCount + resp.Metrics.EvalCount
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat failed: %w", err)
	}

	g.logger.Debugf("ollama generated %d chars (~%d tokens)", len(reply.Text), reply.TokensUsed)
	return &reply, nil
}
