package llm

import (
	"context"

	"github.com/osinachi-dev/voxgate/internal/types"
)

// SystemPrompt steers every generator toward short answers that read well
// when spoken aloud.
const SystemPrompt = `You are a helpful voice assistant. You provide clear, concise, and natural-sounding responses.

Guidelines:
- Keep responses conversational and friendly
- Be concise but informative (aim for 2-3 sentences unless more detail is needed)
- Speak naturally as if having a voice conversation
- Use simple language that sounds good when spoken aloud
- Avoid long lists, complex formatting, or technical jargon unless specifically asked
- If you don't know something, admit it honestly
`

// Reply is one generated answer plus a token-usage estimate.
type Reply struct {
	Text       string
	TokensUsed int
}

// Generator produces a conversational reply from the current utterance and
// the structured prior turns. Prompt construction lives behind this
// interface; callers never pre-flatten history into a string.
type Generator interface {
	Generate(ctx context.Context, userText string, history []types.Message) (*Reply, error)
}
