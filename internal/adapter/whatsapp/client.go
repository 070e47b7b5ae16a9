// Package whatsapp implements the outbound transport primitives against
// the WhatsApp Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nanaosei-dev/chatvendor/internal/adapter/logger"
	"github.com/nanaosei-dev/chatvendor/internal/config"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

type Client struct {
	baseURL       string
	phoneNumberID string
	accessToken   string
	publicBaseURL string
	httpc         *http.Client
	logger        logger.Logger
}

func NewClient(cfg config.WhatsAppConfig, publicBaseURL string, lgr logger.Logger) interfaces.Transport {
	return &Client{
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		httpc:         &http.Client{Timeout: 15 * time.Second},
		logger:        lgr,
	}
}

func (c *Client) SendText(ctx context.Context, to, body string) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	}
	return c.post(ctx, payload)
}

func (c *Client) SendMedia(ctx context.Context, to, mediaURL, caption string) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "image",
		"image": map[string]string{
			"link":    c.resolveMediaURL(mediaURL),
			"caption": caption,
		},
	}
	return c.post(ctx, payload)
}

// resolveMediaURL turns relative image paths into absolute URLs against
// the public base, leaving absolute URLs untouched.
func (c *Client) resolveMediaURL(mediaURL string) string {
	if strings.HasPrefix(mediaURL, "http://") || strings.HasPrefix(mediaURL, "https://") {
		return mediaURL
	}
	return c.publicBaseURL + "/" + strings.TrimPrefix(mediaURL, "/")
}

func (c *Client) post(ctx context.Context, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("transport returned status %d: %s", resp.StatusCode, string(raw))
	}

	return nil
}
