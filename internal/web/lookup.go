// Package web provides the short-summary lookups and browser launching used
// by the web capability.
package web

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoResult means the provider answered but had nothing for the query.
var ErrNoResult = errors.New("no result")

// Result is a short textual answer and the name of the source it came from.
type Result struct {
	Source string
	Text   string
	URL    string
}

type Summarizer interface {
	Summary(ctx context.Context, query string) (Result, error)
}

// Chain tries each summarizer in order and returns the first success.
type Chain []Summarizer

func (c Chain) Summary(ctx context.Context, query string) (Result, error) {
	if len(c) == 0 {
		return Result{}, ErrNoResult
	}
	var errs []error
	for _, s := range c {
		if s == nil {
			continue
		}
		r, err := s.Summary(ctx, query)
		if err == nil {
			return r, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		errs = append(errs, err)
	}
	return Result{}, fmt.Errorf("lookup %q: %w", query, errors.Join(errs...))
}

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+(\s|$)`)

// FirstSentences keeps at most n sentences of text.
func FirstSentences(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if n <= 0 {
		return text
	}
	idx := sentenceRe.FindAllStringIndex(text, n)
	if len(idx) < n {
		return text
	}
	return strings.TrimSpace(text[:idx[n-1][1]])
}
