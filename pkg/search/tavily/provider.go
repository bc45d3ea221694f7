package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rag-chatbot-be/pkg/search"
)

const (
	defaultBaseURL = "https://api.tavily.com"
	maxQueryLength = 390
)

type Provider struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
}

var _ search.Provider = &Provider{}

func NewProvider(apiKey string, maxResults int) *Provider {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Provider{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		maxResults: maxResults,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL points the client at another host, used by tests.
func (p *Provider) WithBaseURL(url string) *Provider {
	p.baseURL = url
	return p
}

type searchRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// truncateQuery keeps queries inside the API limit.
func truncateQuery(q string) string {
	runes := []rune(q)
	if len(runes) <= maxQueryLength {
		return q
	}
	return string(runes[:maxQueryLength]) + "..."
}

func (p *Provider) Search(ctx context.Context, query string, mode search.Mode) ([]search.Result, error) {
	reqBody := searchRequest{
		APIKey:         p.apiKey,
		Query:          truncateQuery(query),
		MaxResults:     p.maxResults,
		IncludeDomains: mode.IncludeDomains(),
	}
	if mode == search.ModeAcademic {
		reqBody.SearchDepth = "advanced"
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/search", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp searchResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]search.Result, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		results = append(results, search.Result{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	return results, nil
}
