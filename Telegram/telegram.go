package Telegram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrNoCredentials means delivery was never attempted; the caller routes
// straight to local export instead of reporting a delivery failure.
var ErrNoCredentials = errors.New("telegram credentials not configured")

// Client holds the bot token, target chat and base URL
type Client struct {
	Token   string
	ChatID  string
	BaseURL string
	HTTP    *http.Client
}

// Response represents the Bot API response envelope
type Response struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// NewClient creates a new Telegram client
func NewClient(token, chatID string) *Client {
	return &Client{
		Token:   token,
		ChatID:  chatID,
		BaseURL: "https://api.telegram.org",
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether both token and chat id are present.
func (c *Client) Configured() bool {
	return c.Token != "" && c.ChatID != ""
}

// SendDocument pushes a file to the configured chat via the sendDocument
// method. A delivery failure is distinct from missing credentials.
func (c *Client) SendDocument(filename string, data []byte, caption string) error {
	if !c.Configured() {
		return ErrNoCredentials
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("chat_id", c.ChatID); err != nil {
		return err
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return err
		}
	}
	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendDocument", c.BaseURL, c.Token)
	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("telegram delivery failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram delivery failed: %w", err)
	}

	var result Response
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("telegram delivery failed: unexpected response (%d)", resp.StatusCode)
	}
	if !result.OK {
		if result.Description != "" {
			return fmt.Errorf("telegram delivery failed: %s", result.Description)
		}
		return fmt.Errorf("telegram delivery failed with code %d", result.ErrorCode)
	}
	return nil
}
