package session

import (
	"time"

	"github.com/osinachi-dev/voxgate/internal/types"
)

// Session holds one caller's bounded conversation window. Instances are
// owned exclusively by the Store; everything handed out is a copy.
type Session struct {
	ID         string                   `json:"session_id"`
	CreatedAt  time.Time                `json:"created_at"`
	LastActive time.Time                `json:"last_active"`
	Turns      []types.ConversationTurn `json:"turns"`
	MaxTurns   int                      `json:"max_turns"`

	// totalTurns counts every turn ever appended. Turn numbers come from
	// here, not from len(Turns): the window trims old turns but numbering
	// keeps climbing, so turn 12 can sit in a window holding only 8-12.
	totalTurns int
}

func newSession(id string, maxTurns int) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		CreatedAt:  now,
		LastActive: now,
		Turns:      make([]types.ConversationTurn, 0, maxTurns),
		MaxTurns:   maxTurns,
	}
}

// addTurn appends a completed user/assistant pair, applying the sliding
// window: when the window is full the oldest turn is evicted. Callers must
// hold the store lock.
func (s *Session) addTurn(userText, assistantText string, meta types.TurnMetadata) types.ConversationTurn {
	s.totalTurns++
	turn := types.ConversationTurn{
		TurnNumber:       s.totalTurns,
		UserMessage:      types.NewMessage(types.USER, userText),
		AssistantMessage: types.NewMessage(types.ASSISTANT, assistantText),
		ASRConfidence:    meta.ASRConfidence,
		LLMTokens:        meta.LLMTokens,
		ProcessingTime:   meta.ProcessingTime,
	}

	s.Turns = append(s.Turns, turn)
	if len(s.Turns) > s.MaxTurns {
		// FIFO eviction; shift rather than reslice so the backing array
		// doesn't pin evicted turns forever.
		copy(s.Turns, s.Turns[len(s.Turns)-s.MaxTurns:])
		s.Turns = s.Turns[:s.MaxTurns]
	}
	s.LastActive = time.Now()
	return turn
}

// TurnCount reports turns ever appended, not the current window size.
func (s *Session) TurnCount() int {
	return s.totalTurns
}

// historyForLLM flattens the window into alternating user/assistant
// messages in chronological order.
func (s *Session) historyForLLM() []types.Message {
	history := make([]types.Message, 0, len(s.Turns)*2)
	for _, turn := range s.Turns {
		history = append(history, turn.UserMessage, turn.AssistantMessage)
	}
	return history
}

func (s *Session) expired(timeout time.Duration, now time.Time) bool {
	return now.Sub(s.LastActive) > timeout
}

// snapshot returns a copy safe to hand outside the store.
func (s *Session) snapshot() Session {
	cp := *s
	cp.Turns = make([]types.ConversationTurn, len(s.Turns))
	copy(cp.Turns, s.Turns)
	return cp
}
