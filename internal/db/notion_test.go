package db

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/catsflats/backend/internal/apperr"
)

func newTestNotionClient(handler http.HandlerFunc) (*NotionClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewNotionClient("secret_test")
	client.baseURL = server.URL
	return client, server
}

func TestNotionClientSendsAuthHeaders(t *testing.T) {
	var gotAuth, gotVersion string
	client, server := newTestNotionClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Notion-Version")
		w.Write([]byte(`{"results":[]}`))
	})
	defer server.Close()

	if _, err := client.QueryDatabase(context.Background(), "db1", map[string]any{"page_size": 1}); err != nil {
		t.Fatalf("QueryDatabase() = %v", err)
	}
	if gotAuth != "Bearer secret_test" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotVersion != notionVersion {
		t.Fatalf("Notion-Version = %q, want %q", gotVersion, notionVersion)
	}
}

func TestNotionClientErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind apperr.Kind
	}{
		{"unauthorized", http.StatusUnauthorized, apperr.KindUnauthorized},
		{"forbidden", http.StatusForbidden, apperr.KindForbidden},
		{"not-found", http.StatusNotFound, apperr.KindNotFound},
		{"rate-limited", http.StatusTooManyRequests, apperr.KindRateLimited},
		{"server-error", http.StatusInternalServerError, apperr.KindDependency},
		{"bad-gateway", http.StatusBadGateway, apperr.KindDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := newTestNotionClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(notionErrorBody{Code: "err", Message: "boom"})
			})
			defer server.Close()

			_, err := client.RetrievePage(context.Background(), "page1")
			if !apperr.IsKind(err, tt.wantKind) {
				t.Fatalf("RetrievePage() = %v, want kind %s", err, tt.wantKind)
			}
		})
	}
}

func TestNotionClientRetryAfterHint(t *testing.T) {
	client, server := newTestNotionClient(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2.5")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := client.RetrievePage(context.Background(), "page1")
	hint, ok := apperr.RetryAfterHint(err)
	if !ok {
		t.Fatalf("RetryAfterHint(%v) missing", err)
	}
	if hint != 2500*time.Millisecond {
		t.Fatalf("hint = %s, want 2.5s", hint)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"", 0},
		{"abc", 0},
		{"-1", 0},
		{"3", 3 * time.Second},
		{"0.5", 500 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.input); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestTextFragmentsTruncation(t *testing.T) {
	if got := textFragments(""); len(got) != 0 {
		t.Fatalf("textFragments(\"\") = %v, want empty slice", got)
	}

	long := make([]rune, maxRichTextChars+100)
	for i := range long {
		long[i] = 'ش' // multi-byte rune, the cap counts runes not bytes
	}
	got := textFragments(string(long))
	if len(got) != 1 {
		t.Fatalf("len(fragments) = %d, want 1", len(got))
	}
	content := got[0].(map[string]any)["text"].(map[string]any)["content"].(string)
	if runeCount := len([]rune(content)); runeCount != maxRichTextChars {
		t.Fatalf("content runes = %d, want %d", runeCount, maxRichTextChars)
	}
}

func TestPagePropertyHelpers(t *testing.T) {
	num := 42.0
	checked := true

	if got := plainText(PageProperty{RichText: []RichText{{PlainText: "hi"}}}); got != "hi" {
		t.Fatalf("plainText(rich_text) = %q", got)
	}
	if got := plainText(PageProperty{Title: []RichText{{PlainText: "name"}}}); got != "name" {
		t.Fatalf("plainText(title) = %q", got)
	}
	if got := plainText(PageProperty{}); got != "" {
		t.Fatalf("plainText(empty) = %q", got)
	}
	if got := propNumber(PageProperty{Number: &num}); got != 42 {
		t.Fatalf("propNumber = %d", got)
	}
	if got := propNumber(PageProperty{}); got != 0 {
		t.Fatalf("propNumber(empty) = %d", got)
	}
	if !propCheckbox(PageProperty{Checkbox: &checked}) {
		t.Fatal("propCheckbox(true) = false")
	}
	if propCheckbox(PageProperty{}) {
		t.Fatal("propCheckbox(empty) = true")
	}
}
