// 외부 Telegram Bot API와 통신하는 클라이언트 정의
//
// 환경변수:
//   - BOT_TOKEN: Telegram Bot Token (123456:ABC-...)
//
// 채널 게시와 미디어 업로드, long-poll 업데이트 수신을 담당합니다.
// 429 응답의 retry_after는 재시도 힌트로 apperr에 전달됩니다.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/catsflats/backend/internal/apperr"
)

const telegramAPIBase = "https://api.telegram.org"

type TelegramClient struct {
	botToken   string
	baseURL    string
	httpClient *http.Client
}

func NewTelegramClient(botToken string) *TelegramClient {
	return &TelegramClient{
		botToken: botToken,
		baseURL:  telegramAPIBase,
		httpClient: &http.Client{
			// GetUpdates long-polls for up to 30s; leave headroom on top.
			Timeout: 40 * time.Second,
		},
	}
}

type Message struct {
	MessageID int64       `json:"message_id"`
	Photo     []PhotoSize `json:"photo,omitempty"`
}

type PhotoSize struct {
	FileID string `json:"file_id"`
}

type Update struct {
	UpdateID int64            `json:"update_id"`
	Message  *IncomingMessage `json:"message,omitempty"`
}

type IncomingMessage struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type InputMediaPhoto struct {
	Type      string `json:"type"`
	Media     string `json:"media"`
	Caption   string `json:"caption,omitempty"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

// SendMessage posts a MarkdownV2 text message.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID any, text string) (*Message, error) {
	var msg Message
	err := c.call(ctx, "sendMessage", map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "MarkdownV2",
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendPhoto posts a photo by Telegram file id with a MarkdownV2 caption.
func (c *TelegramClient) SendPhoto(ctx context.Context, chatID any, fileID, caption string) (*Message, error) {
	var msg Message
	err := c.call(ctx, "sendPhoto", map[string]any{
		"chat_id":    chatID,
		"photo":      fileID,
		"caption":    caption,
		"parse_mode": "MarkdownV2",
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// UploadPhoto sends raw photo bytes as a multipart upload. Used to obtain a
// reusable file id for later channel posts.
func (c *TelegramClient) UploadPhoto(ctx context.Context, chatID any, data []byte, filename, caption string, silent bool) (*Message, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("chat_id", fmt.Sprint(chatID)); err != nil {
		return nil, err
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return nil, err
		}
	}
	if silent {
		if err := writer.WriteField("disable_notification", "true"); err != nil {
			return nil, err
		}
	}
	part, err := writer.CreateFormFile("photo", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendPhoto"), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var msg Message
	if err := c.send(req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendMediaGroup posts an album and returns the created messages.
func (c *TelegramClient) SendMediaGroup(ctx context.Context, chatID any, media []InputMediaPhoto) ([]Message, error) {
	var messages []Message
	err := c.call(ctx, "sendMediaGroup", map[string]any{
		"chat_id": chatID,
		"media":   media,
	}, &messages)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *TelegramClient) DeleteMessage(ctx context.Context, chatID any, messageID int64) error {
	return c.call(ctx, "deleteMessage", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}, nil)
}

// GetUpdates long-polls the Bot API for new updates past offset.
func (c *TelegramClient) GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         timeoutSeconds,
		"allowed_updates": []string{"message"},
	}, &updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *TelegramClient) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
}

func (c *TelegramClient) call(ctx context.Context, method string, params map[string]any, out any) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req, out)
}

func (c *TelegramClient) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return apperr.Dependency("telegram request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Dependency("failed to read telegram response", err)
	}

	var tgResp telegramResponse
	if err := json.Unmarshal(data, &tgResp); err != nil {
		return apperr.Dependency("failed to parse telegram response", err)
	}

	if !tgResp.OK {
		return mapTelegramError(tgResp)
	}

	if out != nil && len(tgResp.Result) > 0 {
		if err := json.Unmarshal(tgResp.Result, out); err != nil {
			return apperr.Dependency("failed to parse telegram result", err)
		}
	}
	return nil
}

func mapTelegramError(resp telegramResponse) error {
	if resp.ErrorCode == http.StatusTooManyRequests {
		var retryAfter time.Duration
		if resp.Parameters != nil && resp.Parameters.RetryAfter > 0 {
			retryAfter = time.Duration(resp.Parameters.RetryAfter) * time.Second
		}
		return apperr.RateLimited("telegram: "+resp.Description, retryAfter)
	}
	return apperr.Dependency("telegram API error ("+strconv.Itoa(resp.ErrorCode)+"): "+resp.Description, nil)
}
