package handlers

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"

	"jarvis/internal/intent"
	"jarvis/internal/memory"
	"jarvis/internal/session"
)

const helpText = `JARVIS AI Assistant - Help Guide

I can help you with:

PROGRAMMING HELP:
- "Fix this Python error: [error description]"
- "Explain functions in JavaScript"
- "How to create a class in Python"
- "Debug my code: [code snippet] error: [error message]"
- "Run code: print('hello')"
- "What is a list comprehension?"

WEB SURFING (Online only):
- "Search for artificial intelligence"
- "Open GitHub"
- "Browse Python tutorials"
- "Search Wikipedia for machine learning"

FRIEND MODE:
- "Hello, my name is [Your Name]"
- "How are you today?"
- "Tell me a fun fact"
- "I need motivation"
- "What's your name?"

SYSTEM COMMANDS:
- "Switch to online mode" - Enable AI features
- "Switch to offline mode" - Use local knowledge only
- "Set language to Python/JavaScript/Java/C++"
- "Status" - Show current settings
- "Help" - Show this message
- "Clear memory" - Reset conversation history

MEMORY: I remember our conversations and your preferences!

Say 'exit', 'quit', or 'goodbye' to stop.`

// Usage reports how many interactions were journaled today.
type Usage interface {
	InteractionsToday() (int, error)
}

// System flips session toggles and reports status.
type System struct {
	memory *memory.Store
	usage  Usage
	log    *log.Logger
}

// NewSystem accepts a nil usage source; status then omits today's count.
func NewSystem(mem *memory.Store, usage Usage, logger *log.Logger) *System {
	if logger == nil {
		logger = log.Default()
	}
	return &System{memory: mem, usage: usage, log: logger}
}

func (s *System) Handle(ctx context.Context, req Request) (string, error) {
	lower := req.lower()
	sess := req.Session
	if sess == nil {
		return "", fmt.Errorf("system command without session state")
	}

	switch {
	case intent.ContainsAny(lower, "online mode", "switch to online"):
		sess.OnlineMode = true
		s.log.Info("mode changed", "online", true)
		return "Switched to online mode. AI features are now available.", nil
	case intent.ContainsAny(lower, "offline mode", "switch to offline"):
		sess.OnlineMode = false
		s.log.Info("mode changed", "online", false)
		return "Switched to offline mode. Using local programming knowledge.", nil
	case strings.Contains(lower, "language"):
		lang, ok := systemLanguage(lower)
		if !ok {
			return fmt.Sprintf("Current language is %s. Available languages: Python, JavaScript, Java, C++, C#", sess.CurrentLanguage), nil
		}
		sess.CurrentLanguage = lang
		return "Programming language set to " + lang, nil
	case intent.ContainsAny(lower, "status", "info"):
		return s.status(sess), nil
	case intent.ContainsAny(lower, "help", "what can you do"):
		return helpText, nil
	case intent.ContainsAny(lower, "clear memory", "reset"):
		s.memory.ClearConversations()
		return "Conversation history cleared. Your user information is still saved.", nil
	default:
		return "I didn't understand that system command. Try 'online mode', 'offline mode', 'status', or 'help'.", nil
	}
}

// systemLanguage accepts the short spellings a user might say.
func systemLanguage(lower string) (string, bool) {
	switch {
	case strings.Contains(lower, "python"):
		return "python", true
	case strings.Contains(lower, "javascript"), containsWord(lower, "js"):
		return "javascript", true
	case strings.Contains(lower, "java"):
		return "java", true
	case intent.ContainsAny(lower, "c++", "cpp"):
		return "cpp", true
	case intent.ContainsAny(lower, "c#", "c sharp"):
		return "c#", true
	}
	return "", false
}

func (s *System) status(sess *session.State) string {
	mode := "Disabled 🔌"
	if sess.OnlineMode {
		mode = "Enabled 🌐"
	}
	user := s.memory.UserName()
	if user == "" {
		user = "Not set"
	}

	var b strings.Builder
	b.WriteString("Current Status:\n")
	fmt.Fprintf(&b, "- Online Mode: %s\n", mode)
	fmt.Fprintf(&b, "- Programming Language: %s\n", sess.CurrentLanguage)
	fmt.Fprintf(&b, "- User: %s\n", user)
	fmt.Fprintf(&b, "- Total Interactions: %d\n", s.memory.TotalInteractions())
	fmt.Fprintf(&b, "- Session Interactions: %d\n", sess.InteractionCount)
	if s.usage != nil {
		n, err := s.usage.InteractionsToday()
		if err != nil {
			s.log.Warn("usage stats unavailable", "err", err)
		} else {
			fmt.Fprintf(&b, "- Interactions Today: %d\n", n)
		}
	}
	return b.String()
}
