package handlers

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"jarvis/internal/intent"
	"jarvis/internal/llm"
	"jarvis/internal/logging"
	"jarvis/internal/memory"
	"jarvis/internal/session"
	"jarvis/internal/web"
)

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	b, err := memory.NewFileBackend(filepath.Join(t.TempDir(), "memory.json"))
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	return memory.Open(b, 20, memory.WithLogger(logging.Discard()))
}

type fakeLLM struct {
	reqs []llm.Request
	resp string
	err  error
}

func (f *fakeLLM) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Content: f.resp}, nil
}

type slowLLM struct{}

func (slowLLM) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	<-ctx.Done()
	return llm.Response{}, ctx.Err()
}

func first(int) int { return 0 }

func offline() *session.State { return session.New(false, "python") }

func online() *session.State { return session.New(true, "python") }

func TestOfflineDebugSuggestsParentheses(t *testing.T) {
	mem := newStore(t)
	p := NewProgramming(mem, llm.NewAssistant(nil, 0), NewOfflineCoder(mem, "", 0), logging.Discard())

	got, err := p.Handle(context.Background(), Request{
		Utterance: "debug code: x = (1 + 2 error: SyntaxError: unexpected EOF",
		Session:   offline(),
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(got, "parentheses") {
		t.Fatalf("expected parentheses suggestion, got %q", got)
	}
	if !strings.Contains(got, "never closed") {
		t.Fatalf("expected analysis message, got %q", got)
	}
}

func TestOfflineDebugNeedsCodeAndError(t *testing.T) {
	mem := newStore(t)
	p := NewProgramming(mem, nil, NewOfflineCoder(mem, "", 0), logging.Discard())
	got, _ := p.Handle(context.Background(), Request{Utterance: "please fix my bug", Session: offline()})
	if !strings.Contains(got, "share both the code and the error") {
		t.Fatalf("unexpected response %q", got)
	}
}

func TestOfflineProgrammingTemplatesAndConcepts(t *testing.T) {
	mem := newStore(t)
	p := NewProgramming(mem, nil, NewOfflineCoder(mem, "", 0), logging.Discard())
	ctx := context.Background()

	got, _ := p.Handle(ctx, Request{Utterance: "how to create a class in python", Session: offline()})
	if !strings.Contains(got, "class ClassName") || !strings.Contains(got, "```python") {
		t.Fatalf("expected class template, got %q", got)
	}

	got, _ = p.Handle(ctx, Request{Utterance: "explain functions in javascript", Session: offline()})
	if !strings.HasPrefix(got, "📚 function:") || !strings.Contains(got, "=>") {
		t.Fatalf("expected javascript function explanation, got %q", got)
	}

	k := mem.ProgrammingContext("javascript")
	if len(k.ConceptsLearned) != 1 || k.ConceptsLearned[0].Concept != "function" {
		t.Fatalf("explained concept not recorded: %+v", k.ConceptsLearned)
	}
	if diff := cmp.Diff([]string{"python", "javascript"}, mem.Snapshot().UserInfo.ProgrammingLanguages); diff != "" {
		t.Fatalf("known languages (-want +got):\n%s", diff)
	}
}

func TestOnlineProgrammingRecordsFix(t *testing.T) {
	mem := newStore(t)
	f := &fakeLLM{resp: "wrap it in try/except"}
	p := NewProgramming(mem, llm.NewAssistant(f, time.Second), NewOfflineCoder(mem, "", 0), logging.Discard())

	got, err := p.Handle(context.Background(), Request{Utterance: "how do i fix a keyerror in python", Session: online()})
	if err != nil || got != "wrap it in try/except" {
		t.Fatalf("unexpected %q %v", got, err)
	}
	k := mem.ProgrammingContext("python")
	if len(k.ErrorsFixed) != 1 || k.ErrorsFixed[0].Solution != "wrap it in try/except" {
		t.Fatalf("fix not recorded: %+v", k)
	}
	if !strings.Contains(f.reqs[0].Messages[0].Content, "Programming knowledge:") {
		t.Fatalf("knowledge context missing from prompt")
	}
}

func TestOnlineProgrammingDebugPrompt(t *testing.T) {
	mem := newStore(t)
	f := &fakeLLM{resp: "close the parenthesis"}
	p := NewProgramming(mem, llm.NewAssistant(f, time.Second), NewOfflineCoder(mem, "", 0), logging.Discard())

	if _, err := p.Handle(context.Background(), Request{Utterance: "debug code: x = (1 error: syntaxerror", Session: online()}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(f.reqs[0].Messages[1].Content, "Debug this python code") {
		t.Fatalf("expected debug prompt, got %q", f.reqs[0].Messages[1].Content)
	}
}

func TestOnlineProgrammingTimeoutReturnsMessage(t *testing.T) {
	mem := newStore(t)
	p := NewProgramming(mem, llm.NewAssistant(slowLLM{}, 10*time.Millisecond), NewOfflineCoder(mem, "", 0), logging.Discard())

	got, err := p.Handle(context.Background(), Request{Utterance: "fix this error in my python code", Session: online()})
	if err != nil {
		t.Fatalf("provider timeout must not be an error: %v", err)
	}
	if !llm.IsFailure(got) || !strings.Contains(got, "timeout") {
		t.Fatalf("expected timeout message, got %q", got)
	}
	if n := len(mem.ProgrammingContext("python").ErrorsFixed); n != 0 {
		t.Fatalf("failed response must not be stored as a fix, got %d", n)
	}
}

func TestFriendRemembersName(t *testing.T) {
	mem := newStore(t)
	f := NewFriend(mem, nil, nil)
	ctx := context.Background()

	got, _ := f.Handle(ctx, Request{Utterance: "my name is ada", Session: offline()})
	if !strings.Contains(got, "Nice to meet you, Ada!") {
		t.Fatalf("unexpected reply %q", got)
	}
	if mem.UserName() != "Ada" {
		t.Fatalf("name not stored: %q", mem.UserName())
	}

	for i := 0; i < 10; i++ {
		got, _ = f.Handle(ctx, Request{Utterance: "hello there", Session: offline()})
		if !strings.Contains(got, "Ada") {
			t.Fatalf("greeting not personalized: %q", got)
		}
	}
}

func TestFriendPhraseGreetingsUseName(t *testing.T) {
	mem := newStore(t)
	f := NewFriend(mem, nil, nil)
	ctx := context.Background()
	if _, err := f.Handle(ctx, Request{Utterance: "my name is ada", Session: offline()}); err != nil {
		t.Fatalf("name: %v", err)
	}

	for _, greeting := range []string{"good morning", "Good afternoon JARVIS", "good evening!", "nice to meet you", "hi"} {
		got, err := f.Handle(ctx, Request{Utterance: greeting, Session: offline()})
		if err != nil {
			t.Fatalf("%q: %v", greeting, err)
		}
		if !strings.Contains(got, "Ada") {
			t.Errorf("%q: greeting not personalized: %q", greeting, got)
		}
	}
}

func TestFriendNameInGreeting(t *testing.T) {
	mem := newStore(t)
	f := NewFriend(mem, nil, first)
	got, _ := f.Handle(context.Background(), Request{Utterance: "Hello, my name is Grace Hopper.", Session: offline()})
	if mem.UserName() != "Grace Hopper" || !strings.Contains(got, "Grace Hopper") {
		t.Fatalf("name = %q reply = %q", mem.UserName(), got)
	}
}

func TestFriendRules(t *testing.T) {
	mem := newStore(t)
	f := NewFriend(mem, nil, first)
	ctx := context.Background()

	cases := []struct {
		in, want string
	}{
		{"hey", "Hello there! I'm JARVIS, your AI friend!"},
		{"what is your name", "I'm JARVIS! Your AI assistant and friend. What's your name?"},
		{"how are you", "I'm doing great! Thanks for asking. How about you?"},
		{"i feel tired today", "That's interesting! Tell me more."},
	}
	for _, c := range cases {
		got, err := f.Handle(ctx, Request{Utterance: c.in, Session: offline()})
		if err != nil || got != c.want {
			t.Errorf("Handle(%q) = %q, %v; want %q", c.in, got, err, c.want)
		}
	}
	if mood := mem.Snapshot().FriendshipData.UserMood; mood != "tired" {
		t.Fatalf("mood = %q", mood)
	}
}

func TestFriendOnlineProviderError(t *testing.T) {
	mem := newStore(t)
	mem.SetUser("Ada", nil)
	fl := &fakeLLM{resp: "sounds lovely"}
	f := NewFriend(mem, llm.NewAssistant(fl, time.Second), first)

	got, _ := f.Handle(context.Background(), Request{Utterance: "let's talk about music", Session: online()})
	if got != "sounds lovely" {
		t.Fatalf("unexpected reply %q", got)
	}
	if !strings.Contains(fl.reqs[0].Messages[0].Content, "User name: Ada") {
		t.Fatalf("user name missing from context")
	}

	f = NewFriend(mem, llm.NewAssistant(nil, 0), first)
	got, _ = f.Handle(context.Background(), Request{Utterance: "let's talk about music", Session: online()})
	if !llm.IsFailure(got) {
		t.Fatalf("expected failure message, got %q", got)
	}
}

type stubLookup struct {
	r     web.Result
	err   error
	query string
}

func (s *stubLookup) Summary(ctx context.Context, q string) (web.Result, error) {
	s.query = q
	return s.r, s.err
}

type stubOpener struct{ urls []string }

func (s *stubOpener) Open(u string) error {
	s.urls = append(s.urls, u)
	return nil
}

func TestWebHandler(t *testing.T) {
	mem := newStore(t)
	lookup := &stubLookup{r: web.Result{Source: "Wikipedia", Text: "AI is intelligence of machines."}}
	opener := &stubOpener{}
	w := NewWeb(mem, lookup, opener, logging.Discard())
	ctx := context.Background()

	got, _ := w.Handle(ctx, Request{Utterance: "search for artificial intelligence", Session: offline()})
	if !strings.Contains(got, "require online mode") {
		t.Fatalf("offline web must refuse, got %q", got)
	}

	got, _ = w.Handle(ctx, Request{Utterance: "search wikipedia for format strings", Session: online()})
	if got != "📚 According to Wikipedia: AI is intelligence of machines." {
		t.Fatalf("unexpected %q", got)
	}
	if lookup.query != "format strings" {
		t.Fatalf("query = %q", lookup.query)
	}
	facts := mem.Snapshot().LearnedFacts["searches"]
	if len(facts) != 1 || facts[0].Fact != "Searched for: format strings" {
		t.Fatalf("search not learned: %+v", facts)
	}

	got, _ = w.Handle(ctx, Request{Utterance: "open stack overflow", Session: online()})
	if got != "🌐 Opening stack overflow" {
		t.Fatalf("unexpected %q", got)
	}
	got, _ = w.Handle(ctx, Request{Utterance: "open example.org", Session: online()})
	if got != "🌐 Opening website" {
		t.Fatalf("unexpected %q", got)
	}
	if diff := cmp.Diff([]string{"https://stackoverflow.com", "https://example.org"}, opener.urls); diff != "" {
		t.Fatalf("opened (-want +got):\n%s", diff)
	}

	lookup.err = web.ErrNoResult
	got, _ = w.Handle(ctx, Request{Utterance: "browse quantum foam", Session: online()})
	if got != "🔍 Search for: quantum foam. I can open a browser for more details." {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSystemHandler(t *testing.T) {
	mem := newStore(t)
	mem.SetUser("Ada", nil)
	mem.AppendConversation("hi", "hello")
	s := NewSystem(mem, usageFunc(func() (int, error) { return 7, nil }), logging.Discard())
	sess := offline()
	ctx := context.Background()

	steps := []struct {
		in, want string
	}{
		{"switch to online mode", "Switched to online mode. AI features are now available."},
		{"set language to javascript", "Programming language set to javascript"},
		{"set language to c++", "Programming language set to cpp"},
		{"which language", "Current language is cpp. Available languages: Python, JavaScript, Java, C++, C#"},
		{"clear memory", "Conversation history cleared. Your user information is still saved."},
		{"settings", "I didn't understand that system command. Try 'online mode', 'offline mode', 'status', or 'help'."},
	}
	for _, st := range steps {
		got, err := s.Handle(ctx, Request{Utterance: st.in, Session: sess})
		if err != nil || got != st.want {
			t.Errorf("Handle(%q) = %q, %v; want %q", st.in, got, err, st.want)
		}
	}
	if !sess.OnlineMode || sess.CurrentLanguage != "cpp" {
		t.Fatalf("session not updated: %+v", sess)
	}
	if mem.HistoryLen() != 0 || mem.UserName() != "Ada" {
		t.Fatalf("clear memory must keep the user: len=%d name=%q", mem.HistoryLen(), mem.UserName())
	}

	sess.InteractionCount = 3
	got, _ := s.Handle(ctx, Request{Utterance: "status", Session: sess})
	for _, want := range []string{"Enabled", "cpp", "Ada", "Total Interactions: 1", "Session Interactions: 3", "Interactions Today: 7"} {
		if !strings.Contains(got, want) {
			t.Errorf("status missing %q:\n%s", want, got)
		}
	}

	got, _ = s.Handle(ctx, Request{Utterance: "help", Session: sess})
	if got != helpText {
		t.Fatalf("unexpected help text")
	}
}

type usageFunc func() (int, error)

func (f usageFunc) InteractionsToday() (int, error) { return f() }

func TestGeneralHandler(t *testing.T) {
	mem := newStore(t)
	g := NewGeneral(mem, llm.NewAssistant(&fakeLLM{resp: "42"}, time.Second))
	ctx := context.Background()

	got, _ := g.Handle(ctx, Request{Utterance: "who are you", Session: offline()})
	if !strings.HasPrefix(got, "I'm JARVIS, your personal AI assistant.") {
		t.Fatalf("unexpected %q", got)
	}
	got, _ = g.Handle(ctx, Request{Utterance: "meaning of life", Session: offline()})
	if !strings.Contains(got, "enable online mode") {
		t.Fatalf("unexpected %q", got)
	}
	got, _ = g.Handle(ctx, Request{Utterance: "meaning of life", Session: online()})
	if got != "42" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestRegistryFallsBackToGeneral(t *testing.T) {
	called := ""
	r := Registry{
		intent.General: HandlerFunc(func(context.Context, Request) (string, error) {
			called = "general"
			return "", nil
		}),
	}
	_, _ = r.For(intent.Web).Handle(context.Background(), Request{})
	if called != "general" {
		t.Fatalf("expected general fallback")
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]string{
		"help with javascript promises": "javascript",
		"java streams":                  "java",
		"c++ templates":                 "cpp",
		"a c# delegate":                 "c#",
	}
	for in, want := range cases {
		if got, ok := DetectLanguage(in); !ok || got != want {
			t.Errorf("DetectLanguage(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := DetectLanguage("recursion"); ok {
		t.Error("no language expected")
	}
}
