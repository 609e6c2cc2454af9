package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxTokens = 2000

	DefaultPersona     = "helpful assistant"
	programmingPersona = "expert programming tutor who explains concepts clearly with practical examples and code snippets"
	debugPersona       = "expert debugger and programming mentor"
	friendPersona      = "caring friend who listens well, shows empathy, remembers details, and engages in meaningful conversation. Be warm and supportive."
)

// Assistant wraps a Client with the JARVIS persona prompts. A nil client
// behaves like a provider with no credentials.
type Assistant struct {
	client  Client
	timeout time.Duration
}

func NewAssistant(client Client, timeout time.Duration) *Assistant {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Assistant{client: client, timeout: timeout}
}

// Available reports whether a provider client is configured.
func (a *Assistant) Available() bool {
	return a != nil && a.client != nil
}

// Chat sends message with free-text context under the given persona.
// Every failure is returned as a *ProviderError.
func (a *Assistant) Chat(ctx context.Context, message, history, persona string, temperature float32) (string, error) {
	if !a.Available() {
		return "", Classify(ErrNoAPIKey)
	}
	if persona == "" {
		persona = DefaultPersona
	}

	system := fmt.Sprintf("You are JARVIS, a friendly AI assistant. %s\n\n"+
		"Context from previous conversation:\n%s\n\n"+
		"Be conversational, helpful, and concise in your responses.", persona, history)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Generate(ctx, Request{
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: message},
		},
		Temperature: temperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", Classify(err)
	}
	return resp.Content, nil
}

// ProgrammingHelp asks for a structured solution to problem in language.
func (a *Assistant) ProgrammingHelp(ctx context.Context, problem, language, history string) (string, error) {
	var b strings.Builder
	b.WriteString("Programming Help Request:\n")
	fmt.Fprintf(&b, "Language: %s\n", language)
	fmt.Fprintf(&b, "Problem: %s\n\n", problem)
	b.WriteString("Please provide:\n")
	b.WriteString("1. Clear solution with code example\n")
	b.WriteString("2. Step-by-step explanation\n")
	b.WriteString("3. Best practices\n")
	b.WriteString("4. Common pitfalls to avoid\n")
	b.WriteString("5. Alternative approaches if applicable\n\n")
	b.WriteString("Keep it practical and actionable. Format code properly.")
	return a.Chat(ctx, b.String(), history, programmingPersona, 0.3)
}

// DebugCode asks for a diagnosis of code failing with errMsg.
func (a *Assistant) DebugCode(ctx context.Context, code, errMsg, language string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Debug this %s code:\n\n", language)
	fmt.Fprintf(&b, "Code:\n%s\n\n", code)
	fmt.Fprintf(&b, "Error:\n%s\n\n", errMsg)
	b.WriteString("Please:\n")
	b.WriteString("1. Identify the exact problem\n")
	b.WriteString("2. Explain why the error occurs\n")
	b.WriteString("3. Provide the corrected code\n")
	b.WriteString("4. Explain the fix")
	return a.Chat(ctx, b.String(), "", debugPersona, 0.7)
}

func (a *Assistant) FriendChat(ctx context.Context, message, history string) (string, error) {
	return a.Chat(ctx, message, history, friendPersona, 0.8)
}
