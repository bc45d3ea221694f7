package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot-be/pkg/search"
)

func newServer(t *testing.T, captured *searchRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		_, _ = w.Write([]byte(`{"results":[{"title":"Go","url":"https://go.dev","content":"The Go language","score":0.9}]}`))
	}))
}

func TestProvider_SearchModes(t *testing.T) {
	tests := []struct {
		mode        search.Mode
		depth       string
		wantDomain  string
		wantDomains bool
	}{
		{search.ModeWeb, "", "", false},
		{search.ModeAcademic, "advanced", "arxiv.org", true},
		{search.ModeSocial, "", "reddit.com", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			var captured searchRequest
			server := newServer(t, &captured)
			defer server.Close()

			p := NewProvider("tvly-key", 0).WithBaseURL(server.URL)
			results, err := p.Search(context.Background(), "golang", tt.mode)

			require.NoError(t, err)
			assert.Equal(t, []search.Result{{Title: "Go", URL: "https://go.dev", Content: "The Go language"}}, results)
			assert.Equal(t, "tvly-key", captured.APIKey)
			assert.Equal(t, 5, captured.MaxResults)
			assert.Equal(t, tt.depth, captured.SearchDepth)
			if tt.wantDomains {
				assert.Contains(t, captured.IncludeDomains, tt.wantDomain)
			} else {
				assert.Empty(t, captured.IncludeDomains)
			}
		})
	}
}

func TestProvider_TruncatesLongQuery(t *testing.T) {
	var captured searchRequest
	server := newServer(t, &captured)
	defer server.Close()

	_, err := NewProvider("k", 3).WithBaseURL(server.URL).Search(context.Background(), strings.Repeat("a", 500), search.ModeWeb)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 390)+"...", captured.Query)
	assert.Equal(t, 3, captured.MaxResults)
}

func TestProvider_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid key"}`))
	}))
	defer server.Close()

	_, err := NewProvider("bad", 5).WithBaseURL(server.URL).Search(context.Background(), "q", search.ModeWeb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
