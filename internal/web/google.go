package web

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// Google answers with the top Custom Search result snippet.
type Google struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogle builds the client. Extra options are appended after the API key,
// which lets callers point it at another endpoint.
func NewGoogle(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*Google, error) {
	o := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, o...)
	if err != nil {
		return nil, fmt.Errorf("custom search: %w", err)
	}
	return &Google{svc: svc, cx: cx}, nil
}

func (g *Google) Summary(ctx context.Context, query string) (Result, error) {
	res, err := g.svc.Cse.List().Cx(g.cx).Q(query).Num(1).Context(ctx).Do()
	if err != nil {
		return Result{}, fmt.Errorf("custom search %q: %w", query, err)
	}
	if len(res.Items) == 0 || res.Items[0].Snippet == "" {
		return Result{}, ErrNoResult
	}
	top := res.Items[0]
	return Result{Source: "Google", Text: FirstSentences(top.Snippet, 2), URL: top.Link}, nil
}
