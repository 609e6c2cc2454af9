package main

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"jarvis/internal/intent"
	"jarvis/internal/memory"
	"jarvis/internal/router"
	"jarvis/internal/session"
)

type AskParams struct {
	Text string `json:"text" mcp:"what the user says to JARVIS"`
}

type ClassifyParams struct {
	Text string `json:"text" mcp:"utterance to classify"`
}

type MemoryStatusParams struct{}

// JarvisMCPServer exposes the router as MCP tools. Calls are serialized so
// only one utterance is in flight at a time.
type JarvisMCPServer struct {
	mu      sync.Mutex
	router  *router.Router
	memory  *memory.Store
	session *session.State
}

func NewJarvisMCPServer(r *router.Router, mem *memory.Store, sess *session.State) *JarvisMCPServer {
	return &JarvisMCPServer{router: r, memory: mem, session: sess}
}

func textResult(text string, isError bool) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: isError,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func (s *JarvisMCPServer) Ask(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[AskParams]) (*mcp.CallToolResultFor[any], error) {
	text := strings.TrimSpace(params.Arguments.Text)
	if text == "" {
		return textResult("❌ text is required", true), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	log.Info("MCP ask", "len", len(text))
	resp, _ := s.router.Process(ctx, text)
	return textResult(resp, false), nil
}

func (s *JarvisMCPServer) Classify(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ClassifyParams]) (*mcp.CallToolResultFor[any], error) {
	if strings.TrimSpace(params.Arguments.Text) == "" {
		return textResult("❌ text is required", true), nil
	}
	return textResult(string(intent.Classify(params.Arguments.Text)), false), nil
}

func (s *JarvisMCPServer) MemoryStatus(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[MemoryStatusParams]) (*mcp.CallToolResultFor[any], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.memory.Snapshot()
	user := st.UserInfo.Name
	if user == "" {
		user = "Not set"
	}
	languages := "none"
	if len(st.UserInfo.ProgrammingLanguages) > 0 {
		languages = strings.Join(st.UserInfo.ProgrammingLanguages, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User: %s\n", user)
	fmt.Fprintf(&b, "Online Mode: %t\n", s.session.OnlineMode)
	fmt.Fprintf(&b, "Current Language: %s\n", s.session.CurrentLanguage)
	fmt.Fprintf(&b, "Conversation History: %d\n", len(st.ConversationHistory))
	fmt.Fprintf(&b, "Total Interactions: %d\n", st.SystemData.TotalInteractions)
	fmt.Fprintf(&b, "Known Languages: %s", languages)
	return textResult(b.String(), false), nil
}

func registerTools(server *mcp.Server, s *JarvisMCPServer) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask",
		Description: "Sends an utterance to JARVIS and returns its reply",
	}, s.Ask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify",
		Description: "Returns the intent JARVIS would route an utterance to",
	}, s.Classify)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "memory_status",
		Description: "Summarizes what JARVIS remembers about the user",
	}, s.MemoryStatus)
}
