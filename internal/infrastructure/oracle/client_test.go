package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingredientlens/backend/internal/domain"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// newFakeCompletionServer answers every chat completion with content
func newFakeCompletionServer(t *testing.T, content string, seen *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 10, "total_tokens": 20},
		})
	}))
}

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: baseURL + "/v1",
		Timeout: 5 * time.Second,
		Logger:  zerolog.Nop(),
	})
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{APIKey: "k", Logger: zerolog.Nop()})

	assert.Equal(t, DefaultModel, client.model)
	assert.Equal(t, DefaultTimeout, client.timeout)
	assert.NotNil(t, client.client)
}

func TestClassifyIngredients(t *testing.T) {
	var seen chatRequest
	server := newFakeCompletionServer(t, `[["water", "natural"], ["glycerin", "synthetic"], ["mica", "mineral"]]`, &seen)
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.ClassifyIngredients(context.Background(), []string{"water", "glycerin", "mica"})

	require.NoError(t, err)
	assert.Equal(t, []domain.Classification{
		{Ingredient: "water", Label: "natural"},
		{Ingredient: "glycerin", Label: "synthetic"},
		{Ingredient: "mica", Label: "mineral"},
	}, got)

	assert.Equal(t, "gpt-4", seen.Model)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.Contains(t, seen.Messages[0].Content, "natural or synthetic")
	assert.Equal(t, "user", seen.Messages[1].Role)
	assert.Equal(t, "water, glycerin, mica", seen.Messages[1].Content)
}

func TestClassifyIngredients_CodeFence(t *testing.T) {
	server := newFakeCompletionServer(t, "```json\n[[\"water\", \"natural\"]]\n```", nil)
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.ClassifyIngredients(context.Background(), []string{"water"})

	require.NoError(t, err)
	assert.Equal(t, []domain.Classification{{Ingredient: "water", Label: "natural"}}, got)
}

func TestClassifyIngredients_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"prose", "Water is natural and glycerin is synthetic."},
		{"object instead of array", `{"water": "natural"}`},
		{"null", "null"},
		{"truncated array", `[["water", "natural"]`},
		{"short pair", `[["water"]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newFakeCompletionServer(t, tt.content, nil)
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.ClassifyIngredients(context.Background(), []string{"water"})

			assert.ErrorIs(t, err, domain.ErrAnalysisParse)
			assert.NotErrorIs(t, err, domain.ErrAnalysisRequest)
		})
	}
}

func TestClassifyIngredients_RequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ClassifyIngredients(context.Background(), []string{"water"})

	assert.ErrorIs(t, err, domain.ErrAnalysisRequest)
}

func TestClassifyIngredients_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ClassifyIngredients(context.Background(), []string{"water"})

	assert.ErrorIs(t, err, domain.ErrAnalysisRequest)
}

func TestClassifyIngredients_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
		Timeout: 50 * time.Millisecond,
		Logger:  zerolog.Nop(),
	})

	start := time.Now()
	_, err := client.ClassifyIngredients(context.Background(), []string{"water"})

	assert.ErrorIs(t, err, domain.ErrAnalysisRequest)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAnalyzeEnvironmentalImpact(t *testing.T) {
	content := `[{"ingredient":"water","impact":{"biodegradability":"high","toxicity":"low","sustainability":"sustainable","notes":"abundant"}},
		{"ingredient":"dimethicone","impact":{"biodegradability":"low","toxicity":"moderate","sustainability":"unsustainable","notes":"persistent"}}]`
	var seen chatRequest
	server := newFakeCompletionServer(t, content, &seen)
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.AnalyzeEnvironmentalImpact(context.Background(), []string{"water", "dimethicone"})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "water", got[0].Ingredient)
	assert.Equal(t, domain.EnvironmentalImpact{
		Biodegradability: "high",
		Toxicity:         "low",
		Sustainability:   "sustainable",
		Notes:            "abundant",
	}, got[0].Impact)
	assert.Equal(t, "unsustainable", got[1].Impact.Sustainability)
	assert.Contains(t, seen.Messages[0].Content, "Biodegradability (high/medium/low)")
}

func TestAnalyzeEnvironmentalImpact_NotArray(t *testing.T) {
	server := newFakeCompletionServer(t, `{"ingredient":"water"}`, nil)
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.AnalyzeEnvironmentalImpact(context.Background(), []string{"water"})

	var analysisErr *domain.AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, domain.CodeAnalysisParseError, analysisErr.Code)
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", `[1,2]`, `[1,2]`, false},
		{"padded", "  \n[1]\n ", `[1]`, false},
		{"json fence", "```json\n[1]\n```", `[1]`, false},
		{"bare fence", "```\n[1]\n```", `[1]`, false},
		{"empty array", `[]`, `[]`, false},
		{"object", `{}`, "", true},
		{"empty", ``, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONArray(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short input is unchanged", "water", 10, "water"},
		{"ascii cut", "glycerin", 4, "glyc..."},
		{"cut inside a two-byte rune backs off", "crème", 3, "cr..."},
		{"cut inside a three-byte rune backs off", "水水水", 4, "水..."},
		{"cut on a rune boundary", "水水水", 3, "水..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) = %q is not valid UTF-8", tt.in, tt.n, got)
			}
		})
	}
}

func TestTruncate_LongMultiByteContent(t *testing.T) {
	content := strings.Repeat("é", 150)
	got := truncate(content, 200)

	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), 200+len("..."))
}
