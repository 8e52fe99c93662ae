// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aiassist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/link2ref/internal/csl"
	"github.com/pdiddy/link2ref/pkg/types"
)

var excerpt = strings.Repeat("Climate adaptation finance in small island states. ", 4)

func chatReply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func newTestBackend(url string) *ChatBackend {
	return &ChatBackend{URL: url, APIKey: "sk-test", Model: "test-model", Timeout: time.Second, MaxTextLength: 4000}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Suggestion
	}{
		{
			name:    "plain object",
			content: `{"title":"Adaptation Gap Report","authors":"Smith, Jane; Doe, John","year":2023,"publisher":"UNEP","abstract":null,"documentType":"report"}`,
			want:    &Suggestion{Title: "Adaptation Gap Report", Authors: "Smith, Jane; Doe, John", Year: 2023, Publisher: "UNEP", DocumentType: "report"},
		},
		{
			name:    "code fence and prose",
			content: "Here you go:\n```json\n{\"title\":\"Fenced\",\"year\":\"2019\"}\n```",
			want:    &Suggestion{Title: "Fenced", Year: 2019},
		},
		{
			name:    "implausible year dropped",
			content: `{"title":"T","year":23}`,
			want:    &Suggestion{Title: "T"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResponseNoAnswer(t *testing.T) {
	for _, content := range []string{
		"",
		"I cannot help with that.",
		`{"title":null,"authors":"Smith, Jane"}`,
		`{"title":"   "}`,
		`{"title": "broken"`,
	} {
		_, err := ParseResponse(content)
		assert.ErrorIs(t, err, ErrNoAnswer, "content %q", content)
	}
}

func TestChatBackendSuggest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Zero(t, req.Temperature)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "Return ONLY valid JSON")
		assert.Contains(t, req.Messages[0].Content, "small island states")

		w.Write([]byte(chatReply(`{"title":"Island Finance","authors":"Roe, Ann","year":2021,"documentType":"report"}`)))
	}))
	defer ts.Close()

	s, err := newTestBackend(ts.URL).Suggest(context.Background(), excerpt)
	require.NoError(t, err)
	assert.Equal(t, "Island Finance", s.Title)
	assert.Equal(t, 2021, s.Year)
}

func TestChatBackendTruncatesText(t *testing.T) {
	long := strings.Repeat("a", 5000) + "TAIL"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotContains(t, req.Messages[0].Content, "TAIL")
		w.Write([]byte(chatReply(`{"title":"T"}`)))
	}))
	defer ts.Close()

	_, err := newTestBackend(ts.URL).Suggest(context.Background(), long)
	require.NoError(t, err)
}

func TestChatBackendShortTextNotSent(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer ts.Close()

	_, err := newTestBackend(ts.URL).Suggest(context.Background(), "  too short  ")
	assert.ErrorIs(t, err, ErrNoAnswer)
	assert.Zero(t, calls.Load())
}

func TestChatBackendFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-200", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "quota", http.StatusTooManyRequests) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("not json")) }},
		{"no choices", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"choices":[]}`)) }},
		{"missing title", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(chatReply(`{"authors":"X, Y"}`))) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()
			s, err := newTestBackend(ts.URL).Suggest(context.Background(), excerpt)
			assert.Error(t, err)
			assert.Nil(t, s)
		})
	}
}

func TestChatBackendTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	b := newTestBackend(ts.URL)
	b.Timeout = 50 * time.Millisecond
	_, err := b.Suggest(context.Background(), excerpt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewChatBackendDisabled(t *testing.T) {
	s := NewChatBackend(types.AIConfig{}, nil, nil)
	_, ok := s.(Nop)
	assert.True(t, ok)

	_, err := s.Suggest(context.Background(), excerpt)
	assert.ErrorIs(t, err, ErrNoAnswer)
}

func TestApply(t *testing.T) {
	f := csl.Fields{
		Type:      types.TypeReport,
		Title:     "REGEX TITLE",
		Authors:   "Regex Person",
		Issued:    "1999",
		Publisher: "Regex Press",
		Abstract:  "kept",
	}
	s := &Suggestion{Title: "Real Title", Authors: "Roe, Ann", Year: 2021, Publisher: "World Bank", DocumentType: "thesis"}
	s.Apply(&f)

	assert.Equal(t, "Real Title", f.Title)
	assert.Equal(t, "Roe, Ann", f.Authors)
	assert.Equal(t, "2021", f.Issued)
	assert.Equal(t, "World Bank", f.Publisher)
	assert.Equal(t, "kept", f.Abstract)
	assert.Equal(t, types.TypeThesis, f.Type)

	var none *Suggestion
	none.Apply(&f)
	assert.Equal(t, "Real Title", f.Title)
}
