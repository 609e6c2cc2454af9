// Package router runs the session loop: it acquires one utterance at a time,
// answers the universal shortcuts itself and dispatches everything else to
// the handler registered for the classified intent.
package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"strings"
	"sync"
	"time"

	"jarvis/internal/handlers"
	"jarvis/internal/intent"
	"jarvis/internal/llm"
	"jarvis/internal/memory"
	"jarvis/internal/session"
	"jarvis/internal/speech"
	"jarvis/internal/storage"
)

const (
	farewell        = "Goodbye! It was great talking with you!"
	signalFarewell  = "Goodbye! Shutting down now."
	apology         = "Sorry, I encountered an error. Please try again."
	errorSentinel   = "Error occurred"
	programmingAck  = "I'll help with your programming question!"
	idleHint        = "💤 I'm listening... Say 'help' for options or 'exit' to quit."
	warmupCycles    = 3
	warmupTimeout   = 8 * time.Second
	listenTimeout   = 5 * time.Second
	speakTimeout    = 10 * time.Second
	listenErrorWait = time.Second

	// speechCharsPerSecond is a slow espeak reading pace used to size the
	// speak deadline of long answers.
	speechCharsPerSecond = 10
)

var (
	exitWords       = []string{"exit", "quit", "goodbye", "bye", "stop", "shutdown"}
	motivationWords = []string{"motivation", "quote", "inspire"}
)

// Labels journaled for exchanges that bypass classification.
const (
	labelExit       = "exit"
	labelFunFact    = "fun_fact"
	labelMotivation = "motivation"
	labelThanks     = "thanks"
)

// Shortcuts supplies the canned replies the router answers without a handler.
type Shortcuts interface {
	FunFact() string
	MotivationalQuote() string
	Thanks() string
}

// identified is implemented by channels that know who sent the last utterance.
type identified interface {
	CurrentUser() int64
}

type Options struct {
	Listener  speech.Listener
	Speaker   speech.Speaker
	Memory    *memory.Store
	Session   *session.State
	Handlers  handlers.Registry
	Shortcuts Shortcuts
	// Journal is optional.
	Journal storage.Recorder
	Channel string
	// Shared marks channels that serve several remote users. There an exit
	// word ends the speaker's conversation and the loop keeps running.
	Shared bool
	// Hints receives the idle hint; nil disables it.
	Hints  io.Writer
	Logger *log.Logger
	Now    func() time.Time
}

type Router struct {
	listener  speech.Listener
	speaker   speech.Speaker
	mem       *memory.Store
	session   *session.State
	handlers  handlers.Registry
	shortcuts Shortcuts
	journal   storage.Recorder
	channel   string
	shared    bool
	hints     io.Writer
	log       *log.Logger
	now       func() time.Time

	mu    sync.Mutex
	state State
}

func New(opts Options) *Router {
	r := &Router{
		listener:  opts.Listener,
		speaker:   opts.Speaker,
		mem:       opts.Memory,
		session:   opts.Session,
		handlers:  opts.Handlers,
		shortcuts: opts.Shortcuts,
		journal:   opts.Journal,
		channel:   opts.Channel,
		shared:    opts.Shared,
		hints:     opts.Hints,
		log:       opts.Logger,
		now:       opts.Now,
	}
	if r.session == nil {
		r.session = session.New(true, "")
	}
	if r.log == nil {
		r.log = log.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.channel == "" {
		r.channel = "console"
	}
	return r
}

// State returns the current loop state.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Router) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Shutdown {
		return
	}
	r.log.Debug("state transition", "from", r.state, "to", s)
	r.state = s
}

// Greet speaks the start-up greeting, personalized when the user is known.
func (r *Router) Greet(ctx context.Context) string {
	var greeting string
	if name := r.mem.UserName(); name != "" {
		greeting = fmt.Sprintf("Hello %s! I'm JARVIS, ready to help you with programming, web searches, or just chat!", name)
	} else {
		greeting = "Hello! I'm JARVIS, your AI assistant. You can tell me your name by saying 'my name is [your name]'. " +
			"I can help with programming, web searches, or just be a friend to chat with!"
	}
	r.speak(ctx, greeting)
	return greeting
}

// Banner describes the session for the console at start-up.
func (r *Router) Banner() string {
	mode := "OFFLINE 🔌"
	if r.session.OnlineMode {
		mode = "ONLINE 🌐"
	}
	user := r.mem.UserName()
	if user == "" {
		user = "Not set (say 'my name is [name]')"
	}
	return fmt.Sprintf("🤖 JARVIS AI Assistant Started!\n"+
		"💻 Programming Help | 🌐 Web Surfing | 👥 Friend Mode\n"+
		"💾 Memory: I remember our conversations!\n"+
		"🔌 Current Mode: %s\n"+
		"👤 User: %s", mode, user)
}

// Run greets the user and loops until an exit command, the end of input or
// the cancellation of ctx. Every path out of the loop goes through Shutdown.
func (r *Router) Run(ctx context.Context) error {
	r.Greet(ctx)

	cycles := 0
	for {
		r.setState(Listening)
		timeout := listenTimeout
		if cycles < warmupCycles {
			timeout = warmupTimeout
		}

		utterance, err := r.listener.Listen(ctx, timeout)
		cycles++
		switch {
		case ctx.Err() != nil:
			r.Shutdown(ctx, signalFarewell)
			return nil
		case errors.Is(err, speech.ErrClosed):
			r.log.Info("input closed")
			r.Shutdown(ctx, signalFarewell)
			return nil
		case err != nil:
			r.log.Error("listen failed", "err", err)
			r.setState(Idle)
			select {
			case <-ctx.Done():
			case <-time.After(listenErrorWait):
			}
			continue
		}

		if utterance == "" {
			r.setState(Idle)
			if cycles >= warmupCycles && r.hints != nil {
				fmt.Fprintln(r.hints, idleHint)
			}
			continue
		}

		if _, exit := r.Process(ctx, utterance); exit {
			return nil
		}
		r.setState(Idle)
	}
}

// Process answers one utterance. It reports exit when the utterance ended
// the session.
func (r *Router) Process(ctx context.Context, utterance string) (string, bool) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return "", false
	}
	lower := strings.ToLower(utterance)

	switch {
	case r.isExit(lower):
		r.record(utterance, farewell, labelExit, false)
		if r.shared {
			r.setState(Responding)
			r.speak(ctx, farewell)
			r.mem.Save()
			return farewell, false
		}
		r.Shutdown(ctx, farewell)
		return farewell, true
	case strings.Contains(lower, "fun fact"):
		return r.shortcut(ctx, utterance, r.shortcuts.FunFact(), labelFunFact), false
	case intent.ContainsAny(lower, motivationWords...):
		return r.shortcut(ctx, utterance, r.shortcuts.MotivationalQuote(), labelMotivation), false
	case strings.Contains(lower, "thank"):
		return r.shortcut(ctx, utterance, r.shortcuts.Thanks(), labelThanks), false
	}

	r.setState(Dispatching)
	in := intent.Classify(lower)
	r.session.InteractionCount++
	r.log.Debug("dispatching", "intent", in)
	if in == intent.Programming {
		r.speak(ctx, programmingAck)
	}

	resp, err := r.dispatch(ctx, in, handlers.Request{Utterance: utterance, Session: r.session})
	if ctx.Err() != nil {
		r.log.Info("dropping response after cancellation", "intent", in)
		return "", false
	}
	if err != nil {
		r.log.Error("handler failed", "intent", in, "err", err)
		r.setState(Responding)
		r.speak(ctx, apology)
		r.mem.AppendConversation(utterance, errorSentinel)
		r.record(utterance, errorSentinel, string(in), true)
		return apology, false
	}

	r.setState(Responding)
	r.speak(ctx, resp)
	r.mem.AppendConversation(utterance, resp)
	r.record(utterance, resp, string(in), llm.IsFailure(resp))
	return resp, false
}

// isExit matches exit words as substrings on the console. Shared channels
// require whole words, so "quite sure" is not "quit".
func (r *Router) isExit(lower string) bool {
	if r.shared {
		return intent.ContainsAnyWord(lower, exitWords...)
	}
	return intent.ContainsAny(lower, exitWords...)
}

func (r *Router) shortcut(ctx context.Context, utterance, resp, label string) string {
	r.setState(Responding)
	r.speak(ctx, resp)
	r.mem.AppendConversation(utterance, resp)
	r.record(utterance, resp, label, false)
	return resp
}

// dispatch runs the handler for in, turning a panic into an error.
func (r *Router) dispatch(ctx context.Context, in intent.Intent, req handlers.Request) (resp string, err error) {
	h := r.handlers.For(in)
	if h == nil {
		return "", fmt.Errorf("no handler for intent %q", in)
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return h.Handle(ctx, req)
}

// Shutdown speaks message once and flushes memory. Later calls are no-ops.
func (r *Router) Shutdown(ctx context.Context, message string) {
	r.mu.Lock()
	if r.state == Shutdown {
		r.mu.Unlock()
		return
	}
	r.state = Shutdown
	r.mu.Unlock()

	r.log.Info("shutting down")
	r.speak(context.WithoutCancel(ctx), message)
	if r.mem != nil {
		r.mem.Save()
	}
}

func (r *Router) speak(ctx context.Context, text string) {
	if r.speaker == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, speakBudget(text))
	defer cancel()
	if err := r.speaker.Speak(ctx, text); err != nil {
		r.log.Warn("speak failed", "err", err)
	}
}

// speakBudget gives synchronous synthesis enough time to finish text.
func speakBudget(text string) time.Duration {
	return speakTimeout + time.Duration(len(text)/speechCharsPerSecond)*time.Second
}

func (r *Router) record(utterance, response, label string, failed bool) {
	if r.journal == nil {
		return
	}
	ev := storage.Event{
		Timestamp: r.now(),
		Channel:   r.channel,
		Utterance: utterance,
		Response:  response,
		Intent:    label,
		Failed:    failed,
	}
	if id, ok := r.listener.(identified); ok {
		ev.UserID = id.CurrentUser()
	}
	if err := r.journal.AppendInteraction(ev); err != nil {
		r.log.Warn("failed to journal interaction", "err", err)
	}
}
