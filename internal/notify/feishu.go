package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/chatrelay/chatrelay/internal"
)

// DefaultBaseURL is the open-platform API root.
const DefaultBaseURL = "https://open.feishu.cn"

// FeishuClient sends text messages through the Feishu bot API. It
// caches the tenant access token until shortly before expiry.
type FeishuClient struct {
	appID     string
	appSecret string
	baseURL   string
	client    *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewFeishuClient creates a client for the given app credentials. An
// empty baseURL uses DefaultBaseURL.
func NewFeishuClient(appID, appSecret, baseURL string) *FeishuClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FeishuClient{
		appID:     appID,
		appSecret: appSecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type tenantTokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

type sendMessageResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Notify sends a plain text message to the chat identity (open_id).
func (c *FeishuClient) Notify(ctx context.Context, recipient, text string) error {
	token, err := c.tenantAccessToken(ctx)
	if err != nil {
		return err
	}

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode message content: %w", err)
	}
	body, err := json.Marshal(map[string]string{
		"receive_id": recipient,
		"msg_type":   "text",
		"content":    string(content),
	})
	if err != nil {
		return fmt.Errorf("failed to encode message request: %w", err)
	}

	url := c.baseURL + "/open-apis/im/v1/messages?receive_id_type=open_id"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed sendMessageResponse
	if err := decodeBody(resp.Body, &parsed); err != nil {
		return err
	}
	if parsed.Code != 0 {
		return fmt.Errorf("failed to send message: %d - %s", parsed.Code, parsed.Msg)
	}

	internal.Logger.WithField("recipient", recipient).Info("Message sent")
	return nil
}

// tenantAccessToken returns a cached token or fetches a fresh one.
func (c *FeishuClient) tenantAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"app_id":     c.appID,
		"app_secret": c.appSecret,
	})
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/open-apis/auth/v3/tenant_access_token/internal"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch tenant access token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed tenantTokenResponse
	if err := decodeBody(resp.Body, &parsed); err != nil {
		return "", err
	}
	if parsed.Code != 0 {
		return "", fmt.Errorf("failed to fetch tenant access token: %d - %s", parsed.Code, parsed.Msg)
	}

	c.token = parsed.TenantAccessToken
	// Renew a minute early so in-flight sends never race expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(parsed.Expire)*time.Second - time.Minute)
	return c.token, nil
}

func decodeBody(r io.Reader, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse response body: %w", err)
	}
	return nil
}
