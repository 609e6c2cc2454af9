// Package intent maps an utterance to the capability domain that handles it.
package intent

import (
	"strings"
	"unicode"
)

type Intent string

const (
	Programming Intent = "programming"
	Web         Intent = "web"
	Friend      Intent = "friend"
	System      Intent = "system"
	General     Intent = "general"
)

var (
	programmingKeywords = []string{
		"code", "program", "programming", "python", "javascript", "java", "c++", "cpp", "c#",
		"error", "bug", "debug", "fix", "function", "class", "variable", "loop", "array",
		"syntax", "compile", "run", "execute", "algorithm", "data structure", "import",
		"def ", "print", "return", "if ", "for ", "while ", "try ", "except",
	}

	webKeywords = []string{
		"search", "browse", "open", "website", "internet", "google", "youtube",
		"github", "stack overflow", "wikipedia", "look up", "find", "browser",
	}

	friendKeywords = []string{
		"hello", "hi", "hey", "how are you", "your name", "friend", "chat",
		"talk", "feeling", "mood", "happy", "sad", "angry", "tired", "bored",
		"excited", "nice to meet you", "good morning", "good afternoon", "good evening",
		"my name is",
	}

	systemKeywords = []string{
		"offline", "online", "mode", "switch", "language", "help", "what can you do",
		"status", "reset", "clear", "memory", "settings",
	}
)

// ordered is the tie-break policy: the first set with any match wins.
var ordered = []struct {
	intent   Intent
	keywords []string
}{
	{Programming, programmingKeywords},
	{Web, webKeywords},
	{Friend, friendKeywords},
	{System, systemKeywords},
}

// Classify lower-cases the utterance and returns the first intent whose
// keyword set has a substring match, or General.
func Classify(utterance string) Intent {
	s := strings.ToLower(utterance)
	for _, set := range ordered {
		if ContainsAny(s, set.keywords...) {
			return set.intent
		}
	}
	return General
}

// ContainsAny reports whether s contains any of subs.
func ContainsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ContainsAnyWord reports whether s has any of words as a whole word.
func ContainsAnyWord(s string, words ...string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	for _, f := range fields {
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}
