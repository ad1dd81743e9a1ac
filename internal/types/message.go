package types

import (
	"time"
)

type Role string

const (
	USER      Role = "user"
	ASSISTANT Role = "assistant"
	SYSTEM    Role = "system"
)

// Message is a single utterance in a conversation. Immutable once created.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// ConversationTurn pairs one user utterance with its generated reply.
// Both sides are populated at construction; a turn never exists half-built.
type ConversationTurn struct {
	TurnNumber       int      `json:"turn_number"`
	UserMessage      Message  `json:"user_message"`
	AssistantMessage Message  `json:"assistant_message"`
	ASRConfidence    *float64 `json:"asr_confidence,omitempty"`
	LLMTokens        *int     `json:"llm_tokens,omitempty"`
	ProcessingTime   *float64 `json:"processing_time,omitempty"`
}

// TurnMetadata carries the optional per-turn measurements gathered by the
// pipeline. Nil fields mean the stage didn't report the value.
type TurnMetadata struct {
	ASRConfidence  *float64
	LLMTokens      *int
	ProcessingTime *float64
}

// VoiceResult is the orchestrator's answer for one complete voice turn.
type VoiceResult struct {
	AudioPath      string  `json:"audio_path"`
	Transcript     string  `json:"transcript"`
	ReplyText      string  `json:"bot_response"`
	SessionID      string  `json:"session_id"`
	TurnNumber     int     `json:"turn_number"`
	ProcessingTime float64 `json:"processing_time"`
}
