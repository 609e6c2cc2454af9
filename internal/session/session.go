// Package session holds the volatile per-process toggles layered over durable memory.
package session

// State is lost on exit. Only system commands mutate the toggles.
type State struct {
	OnlineMode       bool
	CurrentLanguage  string
	InteractionCount int
}

func New(online bool, language string) *State {
	if language == "" {
		language = "python"
	}
	return &State{OnlineMode: online, CurrentLanguage: language}
}
