package handlers

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"jarvis/internal/intent"
	"jarvis/internal/llm"
	"jarvis/internal/memory"
)

var (
	funFacts = []string{
		"Did you know? Honey never spoils. Archaeologists have found pots of honey in ancient Egyptian tombs that are over 3,000 years old!",
		"Fun fact: Octopuses have three hearts! Two pump blood through the gills, while the third pumps it through the body.",
		"Interesting: The shortest war in history was between Britain and Zanzibar in 1896. It lasted only 38 minutes!",
		"Cool fact: Bananas are berries, but strawberries aren't!",
		"Did you know? A day on Venus is longer than a year on Venus.",
	}

	quotes = []string{
		"The only way to do great work is to love what you do. - Steve Jobs",
		"It's not whether you get knocked down, it's whether you get up. - Vince Lombardi",
		"The future belongs to those who believe in the beauty of their dreams. - Eleanor Roosevelt",
		"You are never too old to set another goal or to dream a new dream. - C.S. Lewis",
		"Believe you can and you're halfway there. - Theodore Roosevelt",
	}

	thanksReplies = []string{"You're welcome!", "Happy to help!", "Anytime!", "Glad I could assist!"}

	howAreYouReplies = []string{
		"I'm doing great! Thanks for asking. How about you?",
		"I'm wonderful! Always happy to chat with you.",
		"Doing well! Ready to help with anything you need.",
	}

	offlineReplies = []string{
		"That's interesting! Tell me more.",
		"I'd love to hear more about that.",
		"How does that make you feel?",
		"That sounds important to you.",
		"I'm here to listen and help however I can.",
	}

	greetingWords   = []string{"hello", "hi", "hey"}
	greetingPhrases = []string{"good morning", "good afternoon", "good evening", "nice to meet you"}
	moodWords       = []string{"happy", "sad", "angry", "tired", "bored", "excited"}
)

// Friend handles casual conversation and remembers the user's name and mood.
type Friend struct {
	memory    *memory.Store
	assistant *llm.Assistant
	pick      Picker
	title     cases.Caser
}

func NewFriend(mem *memory.Store, assistant *llm.Assistant, pick Picker) *Friend {
	return &Friend{
		memory:    mem,
		assistant: assistant,
		pick:      pick,
		title:     cases.Title(language.English),
	}
}

func (f *Friend) Handle(ctx context.Context, req Request) (string, error) {
	lower := req.lower()
	for _, m := range moodWords {
		if containsWord(lower, m) {
			f.memory.SetMood(m)
			break
		}
	}

	if resp, ok := f.personal(lower); ok {
		return resp, nil
	}

	if req.online() {
		history := f.memory.RecentContext(5)
		if name := f.memory.UserName(); name != "" {
			history += "\nUser name: " + name
		}
		resp, err := f.assistant.FriendChat(ctx, req.Utterance, history)
		if err != nil {
			return llm.Describe(err), nil
		}
		return resp, nil
	}
	return pickOne(f.pick, offlineReplies), nil
}

// personal applies the hard-coded rules. "my name is" is checked before
// greetings so "hello, my name is Ada" stores the name.
func (f *Friend) personal(lower string) (string, bool) {
	if _, after, ok := strings.Cut(lower, "my name is"); ok {
		name := f.cleanName(after)
		if name == "" {
			return "I didn't catch your name. Try saying 'my name is' followed by your name.", true
		}
		f.memory.SetUser(name, nil)
		return fmt.Sprintf("Nice to meet you, %s! I'll remember that. What would you like to talk about?", name), true
	}

	if isGreeting(lower) {
		if name := f.memory.UserName(); name != "" {
			return pickOne(f.pick, []string{
				fmt.Sprintf("Hey %s! Great to hear from you!", name),
				fmt.Sprintf("Hello %s! How's your day going?", name),
				fmt.Sprintf("Hi %s! What's on your mind today?", name),
			}), true
		}
		return pickOne(f.pick, []string{
			"Hello there! I'm JARVIS, your AI friend!",
			"Hey! Nice to meet you! I'm here to help and chat.",
			"Hi! I'm JARVIS. What should I call you?",
		}), true
	}

	switch {
	case strings.Contains(lower, "your name"):
		return "I'm JARVIS! Your AI assistant and friend. What's your name?", true
	case strings.Contains(lower, "how are you"):
		return pickOne(f.pick, howAreYouReplies), true
	}
	return "", false
}

// isGreeting matches single greeting words whole and longer greetings as phrases.
func isGreeting(lower string) bool {
	for _, g := range greetingWords {
		if containsWord(lower, g) {
			return true
		}
	}
	return intent.ContainsAny(lower, greetingPhrases...)
}

func (f *Friend) cleanName(raw string) string {
	raw = strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), ".!?,"))
	if raw == "" {
		return ""
	}
	return f.title.String(raw)
}

func (f *Friend) FunFact() string { return pickOne(f.pick, funFacts) }

func (f *Friend) MotivationalQuote() string { return pickOne(f.pick, quotes) }

func (f *Friend) Thanks() string { return pickOne(f.pick, thanksReplies) }
