// Notion API와 통신하는 저수준 클라이언트 정의
//
// 환경변수:
//   - NOTION_TOKEN: Notion integration token (secret_...)
//
// 모든 호출은 10초 타임아웃으로 감싸며, 응답 상태 코드를 apperr 분류로
// 변환합니다. 429 응답의 Retry-After 헤더는 재시도 힌트로 전달됩니다.

package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/catsflats/backend/internal/apperr"
)

const (
	notionBaseURL    = "https://api.notion.com/v1"
	notionVersion    = "2022-06-28"
	notionTimeout    = 10 * time.Second
	maxRichTextChars = 1900
)

type NotionClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewNotionClient(token string) *NotionClient {
	return &NotionClient{
		token:   token,
		baseURL: notionBaseURL,
		httpClient: &http.Client{
			Timeout: notionTimeout,
		},
	}
}

// Page is the subset of a Notion page the repos read back.
type Page struct {
	ID         string                  `json:"id"`
	Properties map[string]PageProperty `json:"properties"`
}

type PageProperty struct {
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	Number   *float64   `json:"number,omitempty"`
	Checkbox *bool      `json:"checkbox,omitempty"`
}

type RichText struct {
	PlainText string `json:"plain_text"`
}

type QueryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// Database carries the property schema of a Notion database.
type Database struct {
	ID         string                     `json:"id"`
	Properties map[string]json.RawMessage `json:"properties"`
}

type notionErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *NotionClient) QueryDatabase(ctx context.Context, databaseID string, body map[string]any) (*QueryResponse, error) {
	var resp QueryResponse
	path := fmt.Sprintf("/databases/%s/query", databaseID)
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *NotionClient) CreatePage(ctx context.Context, databaseID string, properties map[string]any) (*Page, error) {
	var page Page
	body := map[string]any{
		"parent":     map[string]any{"database_id": databaseID},
		"properties": properties,
	}
	if err := c.do(ctx, http.MethodPost, "/pages", body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *NotionClient) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *NotionClient) UpdatePage(ctx context.Context, pageID string, properties map[string]any) (*Page, error) {
	var page Page
	body := map[string]any{"properties": properties}
	if err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *NotionClient) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodGet, "/databases/"+databaseID, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

func (c *NotionClient) UpdateDatabase(ctx context.Context, databaseID string, properties map[string]any) (*Database, error) {
	var db Database
	body := map[string]any{"properties": properties}
	if err := c.do(ctx, http.MethodPatch, "/databases/"+databaseID, body, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

func (c *NotionClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal notion request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to create notion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", notionVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return apperr.Dependency("notion request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Dependency("failed to read notion response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapNotionError(resp, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return apperr.Dependency("failed to parse notion response", err)
		}
	}
	return nil
}

// mapNotionError converts a non-2xx Notion response into the closed error
// taxonomy so callers never see the raw body.
func mapNotionError(resp *http.Response, data []byte) error {
	var body notionErrorBody
	_ = json.Unmarshal(data, &body)
	message := body.Message
	if message == "" {
		message = fmt.Sprintf("notion request failed (%d)", resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return apperr.Unauthorized("notion: " + message)
	case http.StatusForbidden:
		return apperr.Forbidden("notion: " + message)
	case http.StatusNotFound:
		return apperr.NotFound("notion: " + message)
	case http.StatusTooManyRequests:
		return apperr.RateLimited("notion: "+message, parseRetryAfter(resp.Header.Get("Retry-After")))
	default:
		return apperr.Dependency(fmt.Sprintf("notion request failed (%d): %s", resp.StatusCode, message), nil)
	}
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// richTextProp builds a rich_text write property, truncating to Notion's
// content limit. An empty value clears the property.
func richTextProp(value string) map[string]any {
	return map[string]any{"rich_text": textFragments(value)}
}

func titleProp(value string) map[string]any {
	return map[string]any{"title": textFragments(value)}
}

func numberProp(value int64) map[string]any {
	return map[string]any{"number": value}
}

func checkboxProp(value bool) map[string]any {
	return map[string]any{"checkbox": value}
}

func textFragments(value string) []any {
	if value == "" {
		return []any{}
	}
	runes := []rune(value)
	if len(runes) > maxRichTextChars {
		value = string(runes[:maxRichTextChars])
	}
	return []any{
		map[string]any{
			"type": "text",
			"text": map[string]any{"content": value},
		},
	}
}

func plainText(prop PageProperty) string {
	if len(prop.RichText) > 0 {
		return prop.RichText[0].PlainText
	}
	if len(prop.Title) > 0 {
		return prop.Title[0].PlainText
	}
	return ""
}

func propNumber(prop PageProperty) int64 {
	if prop.Number == nil {
		return 0
	}
	return int64(*prop.Number)
}

func propCheckbox(prop PageProperty) bool {
	return prop.Checkbox != nil && *prop.Checkbox
}
