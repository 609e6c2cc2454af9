package llm

import "context"

type Message struct {
	Role    string
	Content string
}

type Request struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
