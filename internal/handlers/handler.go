// Package handlers implements the capability domains an utterance is
// dispatched to once its intent is known.
package handlers

import (
	"context"
	"math/rand/v2"
	"strings"

	"jarvis/internal/intent"
	"jarvis/internal/session"
)

// Request is one utterance and the session toggles it runs under.
type Request struct {
	Utterance string
	Session   *session.State
}

func (r Request) lower() string { return strings.ToLower(r.Utterance) }

func (r Request) online() bool { return r.Session != nil && r.Session.OnlineMode }

func (r Request) language() string {
	if r.Session == nil || r.Session.CurrentLanguage == "" {
		return "python"
	}
	return r.Session.CurrentLanguage
}

// Handler returns the response text for a request. Provider failures are
// rendered into the text; an error means the handler itself failed.
type Handler interface {
	Handle(ctx context.Context, req Request) (string, error)
}

type HandlerFunc func(ctx context.Context, req Request) (string, error)

func (f HandlerFunc) Handle(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

// Registry selects the handler for a classified intent.
type Registry map[intent.Intent]Handler

// For returns the handler for in, or the general handler when none is registered.
func (r Registry) For(in intent.Intent) Handler {
	if h, ok := r[in]; ok {
		return h
	}
	return r[intent.General]
}

// Picker returns an index in [0, n).
type Picker func(n int) int

func pickOne(pick Picker, options []string) string {
	if pick == nil {
		pick = rand.IntN
	}
	return options[pick(len(options))]
}

// languageTokens are scanned in order; javascript precedes java.
var languageTokens = []struct {
	token, language string
}{
	{"python", "python"},
	{"javascript", "javascript"},
	{"java", "java"},
	{"c++", "cpp"},
	{"cpp", "cpp"},
	{"c#", "c#"},
}

// DetectLanguage returns the first language named in s.
func DetectLanguage(s string) (string, bool) {
	s = strings.ToLower(s)
	for _, l := range languageTokens {
		if strings.Contains(s, l.token) {
			return l.language, true
		}
	}
	return "", false
}

// containsWord reports whether s has word as a whole word.
func containsWord(s, word string) bool {
	for _, f := range strings.FieldsFunc(s, isSeparator) {
		if f == word {
			return true
		}
	}
	return false
}

func isSeparator(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '\'' || r == '+' || r == '#')
}
