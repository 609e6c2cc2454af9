package handlers

import (
	"context"
	"fmt"
	log "log/slog"
	"regexp"
	"strings"

	"jarvis/internal/intent"
	"jarvis/internal/llm"
	"jarvis/internal/memory"
)

var (
	debugCodeRe  = regexp.MustCompile(`(?is)code[:\s]*(.*?)(?:error|$)`)
	debugErrorRe = regexp.MustCompile(`(?is)error[:\s]*(.*?)(?:code|$)`)
)

// Programming answers coding questions, online through the provider and
// offline from the local knowledge in OfflineCoder.
type Programming struct {
	memory    *memory.Store
	assistant *llm.Assistant
	coder     *OfflineCoder
	log       *log.Logger
}

func NewProgramming(mem *memory.Store, assistant *llm.Assistant, coder *OfflineCoder, logger *log.Logger) *Programming {
	if logger == nil {
		logger = log.Default()
	}
	return &Programming{memory: mem, assistant: assistant, coder: coder, log: logger}
}

func (p *Programming) Handle(ctx context.Context, req Request) (string, error) {
	language := req.language()
	if l, ok := DetectLanguage(req.Utterance); ok {
		language = l
		p.memory.AddKnownLanguage(l)
	}
	p.log.Info("programming request", "language", language, "online", req.online())

	if req.online() {
		return p.online(ctx, req.Utterance, language), nil
	}
	return p.offline(ctx, req.Utterance, language), nil
}

func (p *Programming) online(ctx context.Context, utterance, language string) string {
	history := p.memory.RecentContext(5) + "\nProgramming knowledge: " + formatKnowledge(p.memory.ProgrammingContext(language))

	var (
		resp string
		err  error
	)
	if code, errText, ok := extractDebug(utterance); ok {
		resp, err = p.assistant.DebugCode(ctx, code, errText, language)
	} else {
		resp, err = p.assistant.ProgrammingHelp(ctx, utterance, language, history)
	}
	if err != nil {
		p.log.Warn("provider failed", "err", err)
		return llm.Describe(err)
	}

	lower := strings.ToLower(utterance)
	if strings.Contains(lower, "error") || strings.Contains(lower, "fix") {
		p.memory.RecordProgrammingKnowledge(language, utterance, resp)
	}
	return resp
}

func (p *Programming) offline(ctx context.Context, utterance, language string) string {
	lower := strings.ToLower(utterance)

	switch {
	case intent.ContainsAny(lower, "run code", "execute"):
		p.memory.RecordProgrammingKnowledge(language, utterance, "")
		code := codeAfterColon(utterance)
		if code == "" {
			return "🤔 Share the code after a colon, for example: run code: print('hi')"
		}
		return p.coder.RunPython(ctx, code, language)
	case intent.ContainsAny(lower, "error", "bug", "fix", "debug"):
		p.memory.RecordProgrammingKnowledge(language, utterance, "")
		return p.debug(ctx, utterance, language)
	case intent.ContainsAny(lower, "how to", "create", "make", "build"):
		p.memory.RecordProgrammingKnowledge(language, utterance, "")
		return p.howTo(lower, language)
	case intent.ContainsAny(lower, "explain", "what is", "concept"):
		// Explain records the concept itself when it is found.
		for _, c := range Concepts {
			if strings.Contains(lower, c) {
				return p.coder.Explain(c, language)
			}
		}
		p.memory.RecordProgrammingKnowledge(language, utterance, "")
		return "📚 I can explain programming concepts offline. Try asking about: functions, classes, loops, or specific language features."
	case intent.ContainsAny(lower, "example", "code sample"):
		p.memory.RecordProgrammingKnowledge(language, utterance, "")
		return "💻 I can provide code examples. Please enable online mode for comprehensive code samples with explanations."
	default:
		p.memory.RecordProgrammingKnowledge(language, utterance, "")
		return fmt.Sprintf("💬 I can help with %s programming including debugging, explanations, and code examples. For detailed AI assistance, enable online mode.", language)
	}
}

func (p *Programming) debug(ctx context.Context, utterance, language string) string {
	code, errText, ok := extractDebug(utterance)
	if !ok {
		return "🤔 I can help debug your code. Please share both the code and the error message for better assistance."
	}

	a := p.coder.AnalyzeCode(ctx, code, language)
	switch a.Status {
	case StatusInvalid:
		return fmt.Sprintf("🔧 Offline Analysis:\n%s\n💡 Suggestion: %s", a.Message, a.Suggestion)
	case StatusValid:
		return fmt.Sprintf("🔍 The syntax looks valid offline.\n💡 Based on the error: %s\nFor detailed debugging with AI, please enable online mode.", SuggestFix(errText))
	default:
		return "🔍 I analyzed your code offline. For detailed debugging with AI, please enable online mode."
	}
}

func (p *Programming) howTo(lower, language string) string {
	for _, pattern := range []string{"function", "class", "loop", "conditional"} {
		if !strings.Contains(lower, pattern) && !(pattern == "conditional" && strings.Contains(lower, "if statement")) {
			continue
		}
		tmpl, ok := p.coder.Template(pattern, language)
		if !ok {
			return fmt.Sprintf("💡 I don't have a %s template for %s offline. Enable online mode for AI assistance.", pattern, language)
		}
		return fmt.Sprintf("📝 Here's a basic %s template in %s:\n\n```%s\n%s\n```", pattern, language, language, tmpl)
	}
	return fmt.Sprintf("💡 I can help with %s programming. For specific how-to guidance, please enable online mode for AI assistance.", language)
}

// extractDebug pulls the code and error text out of a request like
// "debug code: x = (1 error: SyntaxError". Both parts must be present.
func extractDebug(utterance string) (code, errText string, ok bool) {
	cm := debugCodeRe.FindStringSubmatch(utterance)
	em := debugErrorRe.FindStringSubmatch(utterance)
	if cm == nil || em == nil {
		return "", "", false
	}
	code, errText = strings.TrimSpace(cm[1]), strings.TrimSpace(em[1])
	if code == "" || errText == "" {
		return "", "", false
	}
	return code, errText, true
}

func codeAfterColon(utterance string) string {
	_, code, found := strings.Cut(utterance, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(code)
}

func formatKnowledge(k memory.Knowledge) string {
	const keep = 3
	var fixed, learned []string
	for _, e := range tail(k.ErrorsFixed, keep) {
		fixed = append(fixed, e.Concept)
	}
	for _, c := range tail(k.ConceptsLearned, keep) {
		learned = append(learned, c.Concept)
	}
	return fmt.Sprintf("errors fixed: [%s]; concepts learned: [%s]", strings.Join(fixed, "; "), strings.Join(learned, "; "))
}

func tail[T any](s []T, n int) []T {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
