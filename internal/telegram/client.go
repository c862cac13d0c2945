package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ladiossato/k2-inventory/pkg/logger"
	"github.com/ladiossato/k2-inventory/pkg/metrics"
	"github.com/ladiossato/k2-inventory/pkg/retry"
)

const defaultBaseURL = "https://api.telegram.org"

// Client talks to the Telegram Bot API.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	retryPolicy retry.Policy
	pollTimeout time.Duration
	log         *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithRetryPolicy overrides the send retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.retryPolicy = p }
}

// NewClient creates a Bot API client.
func NewClient(token string, pollTimeout time.Duration, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		token:       token,
		retryPolicy: retry.DefaultPolicy(),
		pollTimeout: pollTimeout,
		log:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		// must outlast the long poll
		c.httpClient = &http.Client{Timeout: c.pollTimeout + 15*time.Second}
	}
	return c
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// GetUpdates long-polls for new updates past offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(int(c.pollTimeout.Seconds())))
	params.Set("allowed_updates", `["message","callback_query"]`)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("getUpdates")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build getUpdates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read getUpdates response: %w", err)
	}

	var envelope struct {
		apiResponse
		Result []Update `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode getUpdates response: %w", err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("getUpdates: telegram error %d: %s", envelope.ErrorCode, envelope.Description)
	}
	return envelope.Result, nil
}

type sendMessageRequest struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessage delivers HTML-formatted text, retrying transient
// failures. If Telegram rejects the formatting, one plain-text
// fallback is attempted so the user still sees something.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) error {
	start := time.Now()
	payload := sendMessageRequest{
		ChatID:      chatID,
		Text:        SanitizeHTML(text),
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	}

	err := c.retryPolicy.Do(ctx, func() error {
		sendErr := c.call(ctx, "sendMessage", payload)
		if sendErr != nil && isFormattingError(sendErr) {
			return retry.Permanent(sendErr)
		}
		return sendErr
	})

	if err != nil && isFormattingError(err) {
		c.log.Warn("html send rejected, falling back to plain text",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		plain := sendMessageRequest{ChatID: chatID, Text: stripTags(text), ReplyMarkup: markup}
		err = c.call(ctx, "sendMessage", plain)
	}

	if err != nil {
		metrics.RecordSend("error", time.Since(start).Seconds())
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	metrics.RecordSend("ok", time.Since(start).Seconds())
	return nil
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing a spinner.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	payload := map[string]string{"callback_query_id": callbackID}
	if err := c.call(ctx, "answerCallbackQuery", payload); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("%s: telegram error %d: %s", method, envelope.ErrorCode, envelope.Description)
	}
	return nil
}

// isFormattingError detects Telegram's HTML parse rejections, which
// retrying verbatim cannot fix.
func isFormattingError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "can't parse entities") || strings.Contains(msg, "unsupported start tag")
}

// stripTags removes the allowed markup for the plain-text fallback.
func stripTags(s string) string {
	for _, tag := range allowedTags {
		s = strings.ReplaceAll(s, "<"+tag+">", "")
		s = strings.ReplaceAll(s, "</"+tag+">", "")
	}
	return s
}
