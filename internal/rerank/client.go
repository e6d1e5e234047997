// Package rerank talks to an OpenAI-compatible rerank/score HTTP service
// (such as a vLLM reranker deployment) through pooled client handles.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"rerankbench/internal/clientpool"
)

const (
	rerankPath = "/rerank"
	scorePath  = "/score"

	maxErrorBodyBytes = 1024
)

// HTTPError reports a non-2xx response with a truncated body snippet. The
// server's error text is preserved because it is the fastest way to diagnose
// schema mismatches.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("HTTP %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

// RankedDoc is one document's relevance score.
type RankedDoc struct {
	Index int
	Score float64
	Doc   string
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n,omitempty"`
}

type scoreRequest struct {
	Model string   `json:"model,omitempty"`
	Text1 string   `json:"text_1"`
	Text2 []string `json:"text_2"`
}

// Rerank calls POST {base}/rerank and returns the server-ranked documents in
// descending relevance order. An empty result set is a validation failure.
func Rerank(ctx context.Context, h *clientpool.Handle, query string, documents []string, topN int) ([]RankedDoc, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	body, err := postJSON(ctx, h, rerankPath, rerankRequest{
		Query:     query,
		Documents: documents,
		TopN:      topN,
	})
	if err != nil {
		return nil, err
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return nil, fmt.Errorf("unexpected %s response: results is not a list", rerankPath)
	}

	var ranked []RankedDoc
	for _, r := range results.Array() {
		idx := int(r.Get("index").Int())
		doc := r.Get("document.text").String()
		if doc == "" && idx >= 0 && idx < len(documents) {
			doc = documents[idx]
		}
		ranked = append(ranked, RankedDoc{
			Index: idx,
			Score: r.Get("relevance_score").Float(),
			Doc:   doc,
		})
	}

	if len(ranked) == 0 {
		return nil, fmt.Errorf("empty rerank result")
	}
	return ranked, nil
}

// Score calls POST {base}/score and returns one score per input document,
// aligned to input order. Missing or partial alignment is a validation
// failure.
func Score(ctx context.Context, h *clientpool.Handle, model, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	body, err := postJSON(ctx, h, scorePath, scoreRequest{
		Model: model,
		Text1: query,
		Text2: documents,
	})
	if err != nil {
		return nil, err
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, fmt.Errorf("unexpected %s response: data is not a list", scorePath)
	}

	scores := make([]float64, len(documents))
	seen := make([]bool, len(documents))
	returned := 0
	for _, x := range data.Array() {
		returned++
		idx := int(x.Get("index").Int())
		if idx < 0 || idx >= len(documents) {
			continue
		}
		scores[idx] = x.Get("score").Float()
		seen[idx] = true
	}

	if returned != len(documents) {
		return nil, fmt.Errorf("score len mismatch: %d != %d", returned, len(documents))
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("incomplete scores: missing index %d", i)
		}
	}
	return scores, nil
}

func postJSON(ctx context.Context, h *clientpool.Handle, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}

	url := h.Config.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON from %s: %s", url, truncate(string(body), 500))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
