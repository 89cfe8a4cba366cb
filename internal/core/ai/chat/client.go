package chat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"recipe-suggester/internal/core/ai/provider"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const completionsPath = "/chat/completions"

// Client chat-completion API 客戶端
type Client struct {
	client  *resty.Client
	model   string
	timeout time.Duration
}

var _ provider.Provider = (*Client)(nil)

// NewClient 創建新的 chat-completion 客戶端
func NewClient(cfg config.AIConfig) *Client {
	// 連線逾時只限制撥號與 TLS 握手，總逾時由 resty 控制
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetTransport(transport)

	return &Client{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Generate 發送 chat-completion 請求
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if req.Model == "" {
		req.Model = c.model
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post(completionsPath)
	if err != nil {
		common.LogAICall(req.Model, time.Since(start), err)
		return nil, common.NewTierError(common.TierGenerative, common.FailureNetwork, 0,
			fmt.Errorf("failed to send request: %w", err))
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		reason := common.FailureNetwork
		if len(strings.TrimSpace(string(body))) > 0 {
			reason = ClassifyFailure(resp.StatusCode(), body)
		}
		tierErr := common.NewTierError(common.TierGenerative, reason, resp.StatusCode(),
			errors.New(errorDetail(body)))
		common.LogAICall(req.Model, time.Since(start), tierErr)
		return nil, tierErr
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() || strings.TrimSpace(content.String()) == "" {
		tierErr := common.NewTierError(common.TierGenerative, common.FailureParse, resp.StatusCode(),
			fmt.Errorf("empty content in response: %s", common.Truncate(string(body), 200)))
		common.LogAICall(req.Model, time.Since(start), tierErr)
		return nil, tierErr
	}

	out := &provider.Response{Content: content.String()}
	out.Usage.PromptTokens = int(gjson.GetBytes(body, "usage.prompt_tokens").Int())
	out.Usage.CompletionTokens = int(gjson.GetBytes(body, "usage.completion_tokens").Int())
	out.Usage.TotalTokens = int(gjson.GetBytes(body, "usage.total_tokens").Int())

	common.LogAICall(req.Model, time.Since(start), nil)
	common.LogDebug("chat completion received",
		zap.Int("content_length", len(out.Content)),
		zap.Int("total_tokens", out.Usage.TotalTokens),
	)
	return out, nil
}

// ClassifyFailure 依狀態碼與錯誤內容判斷失敗類型
func ClassifyFailure(status int, body []byte) common.FailureReason {
	text := strings.ToLower(string(body))
	switch {
	case containsAny(text, "insufficient_quota", "quota", "billing"):
		return common.FailureQuotaExceeded
	case status == http.StatusUnauthorized || containsAny(text, "invalid_api_key", "incorrect api key", "invalid api key"):
		return common.FailureInvalidCredential
	case status == http.StatusTooManyRequests && containsAny(text, "rate limit", "rate_limit"):
		return common.FailureRateLimited
	default:
		return common.FailureUpstream
	}
}

func containsAny(text string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// errorDetail 取出錯誤訊息，沒有結構化內容時截斷原文
func errorDetail(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() && msg.String() != "" {
		return msg.String()
	}
	if len(body) == 0 {
		return "empty response body"
	}
	return common.Truncate(string(body), 200)
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.model
}

// GetTimeout 獲取總逾時
func (c *Client) GetTimeout() time.Duration {
	return c.timeout
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
