package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/guzus/llm-mafia-game/internal/config"
	apperrors "github.com/guzus/llm-mafia-game/internal/errors"
	"github.com/guzus/llm-mafia-game/internal/logger"
)

// Client OpenRouter聊天接口客户端，实现game.Invoker。
// 调用方负责把错误降级为弃权，这里只如实返回
type Client struct {
	apiKey        string
	apiURL        string
	maxTokens     int
	timeout       time.Duration
	modelTimeouts map[string]time.Duration
	httpClient    *http.Client
	log           *zap.Logger
}

// NewClient 从配置创建客户端
func NewClient(cfg config.OpenRouterConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.New(apperrors.ErrMissingAPIKey)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 400
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "https://openrouter.ai/api/v1/chat/completions"
	}

	return &Client{
		apiKey:        cfg.APIKey,
		apiURL:        apiURL,
		maxTokens:     maxTokens,
		timeout:       timeout,
		modelTimeouts: cfg.ModelTimeouts,
		// 超时由每次调用的context控制，按模型可覆盖
		httpClient: &http.Client{},
		log:        logger.GetModuleLogger("llm"),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// timeoutFor 返回模型的调用超时，支持按模型覆盖
func (c *Client) timeoutFor(model string) time.Duration {
	if t, ok := c.modelTimeouts[model]; ok && t > 0 {
		return t
	}
	return c.timeout
}

// Invoke 发送单轮对话请求并返回模型回复
func (c *Client) Invoke(ctx context.Context, model, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:     model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: c.maxTokens,
	}
	buf, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrLLMRequest)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeoutFor(model))
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.apiURL, bytes.NewReader(buf))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrLLMRequest)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return "", apperrors.Wrapf(err, apperrors.ErrLLMTimeout, "模型%s调用超时", model)
		}
		return "", apperrors.Wrap(err, apperrors.ErrLLMRequest)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.log.Warn("OpenRouter返回异常状态",
			zap.String("model", model),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return "", apperrors.Newf(apperrors.ErrLLMStatus, "状态码%d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrLLMDecode)
	}

	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return "", apperrors.Newf(apperrors.ErrLLMEmptyReply, "模型%s返回空回复", model)
	}

	return cr.Choices[0].Message.Content, nil
}
