package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const DefaultWikipediaURL = "https://en.wikipedia.org"

// Wikipedia resolves a query to an article with opensearch and returns the
// first sentences of its summary.
type Wikipedia struct {
	baseURL   string
	client    *http.Client
	sentences int
}

func NewWikipedia(baseURL string, client *http.Client) *Wikipedia {
	if baseURL == "" {
		baseURL = DefaultWikipediaURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Wikipedia{baseURL: strings.TrimRight(baseURL, "/"), client: client, sentences: 2}
}

type pageSummary struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ExtractHTML string `json:"extract_html"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

func (w *Wikipedia) Summary(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrNoResult
	}
	title, err := w.search(ctx, query)
	if err != nil {
		return Result{}, err
	}

	var page pageSummary
	endpoint := w.baseURL + "/api/rest_v1/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	if err := w.getJSON(ctx, endpoint, &page); err != nil {
		return Result{}, err
	}
	if page.Type == "disambiguation" {
		return Result{}, fmt.Errorf("wikipedia: %q is ambiguous: %w", title, ErrNoResult)
	}

	text := page.Extract
	if page.ExtractHTML != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.ExtractHTML))
		if err == nil {
			text = doc.Text()
		}
	}
	text = FirstSentences(text, w.sentences)
	if text == "" {
		return Result{}, ErrNoResult
	}
	return Result{Source: "Wikipedia", Text: text, URL: page.ContentURLs.Desktop.Page}, nil
}

// search returns the best matching article title.
func (w *Wikipedia) search(ctx context.Context, query string) (string, error) {
	v := url.Values{}
	v.Set("action", "opensearch")
	v.Set("search", query)
	v.Set("limit", "1")
	v.Set("namespace", "0")
	v.Set("format", "json")

	var out []json.RawMessage
	if err := w.getJSON(ctx, w.baseURL+"/w/api.php?"+v.Encode(), &out); err != nil {
		return "", err
	}
	if len(out) < 2 {
		return "", ErrNoResult
	}
	var titles []string
	if err := json.Unmarshal(out[1], &titles); err != nil {
		return "", fmt.Errorf("wikipedia: decode titles: %w", err)
	}
	if len(titles) == 0 {
		return "", ErrNoResult
	}
	return titles[0], nil
}

func (w *Wikipedia) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "jarvis-assistant/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("wikipedia: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNoResult
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("wikipedia: decode: %w", err)
	}
	return nil
}
