package handlers

import (
	"context"
	"strings"

	"jarvis/internal/llm"
	"jarvis/internal/memory"
)

// General covers utterances no other domain claimed.
type General struct {
	memory    *memory.Store
	assistant *llm.Assistant
}

func NewGeneral(mem *memory.Store, assistant *llm.Assistant) *General {
	return &General{memory: mem, assistant: assistant}
}

func (g *General) Handle(ctx context.Context, req Request) (string, error) {
	if req.online() {
		resp, err := g.assistant.Chat(ctx, req.Utterance, g.memory.RecentContext(5), llm.DefaultPersona, 0.7)
		if err != nil {
			return llm.Describe(err), nil
		}
		return resp, nil
	}

	lower := req.lower()
	switch {
	case strings.Contains(lower, "who are you"):
		return "I'm JARVIS, your personal AI assistant. I can help with programming, web searches, and general conversation when in online mode.", nil
	case strings.Contains(lower, "what") && strings.Contains(lower, "you"):
		return "I'm JARVIS, your AI assistant! I can help with programming, answer questions when online, or just chat with you.", nil
	default:
		return "That's an interesting question! For detailed answers, please enable online mode. I can still help with programming questions in offline mode.", nil
	}
}
