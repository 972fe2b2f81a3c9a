package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"kidquest-server/internal/config"
	"kidquest-server/internal/models"
)

// Цены OpenRouter за 1М токенов в USD (для оценочной метрики стоимости).
const (
	pricePerMillionInputTokensUSD  = 0.1
	pricePerMillionOutputTokensUSD = 0.4
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kidquest_ai_requests_total",
			Help: "Total number of requests to the AI API.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kidquest_ai_request_duration_seconds",
			Help:    "Histogram of AI API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kidquest_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.LinearBuckets(250, 250, 20),
		},
		[]string{"model"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kidquest_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(100, 100, 20),
		},
		[]string{"model"},
	)
	aiEstimatedCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kidquest_ai_estimated_cost_usd_total",
			Help: "Estimated total cost of AI requests in USD.",
		},
		[]string{"model"},
	)
)

// GenerationParams — параметры генерации. Указатели отличают
// "не задано" от нулевого значения.
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
}

// UsageInfo содержит информацию об использовании токенов и стоимости.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64
}

// AIClient — граница взаимодействия с генерационным оракулом.
// Ответ — свободный текст; вся структура извлекается постфактум,
// и любой ответ считается потенциально некорректным.
type AIClient interface {
	GenerateText(ctx context.Context, userID string, prompt string, params GenerationParams) (string, UsageInfo, error)
}

func calculateCost(promptTokens, completionTokens int) float64 {
	inputCost := float64(promptTokens) * pricePerMillionInputTokensUSD / 1_000_000.0
	outputCost := float64(completionTokens) * pricePerMillionOutputTokensUSD / 1_000_000.0
	return inputCost + outputCost
}

// --- OpenAI-совместимый клиент (OpenRouter, OpenAI) ---

type openAIClient struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

func (c *openAIClient) GenerateText(ctx context.Context, userID string, prompt string, params GenerationParams) (string, UsageInfo, error) {
	usage := UsageInfo{}
	if strings.TrimSpace(prompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("%w: пустой промт", models.ErrAIGenerationFailed)
	}

	start := time.Now()
	c.logger.Debug("Отправка запроса к AI",
		zap.String("model", c.model),
		zap.Int("promptBytes", len(prompt)),
		zap.String("userID", userID),
	)

	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: c.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32Val(params.Temperature),
		MaxTokens:   intVal(params.MaxTokens),
		TopP:        float32Val(params.TopP),
	})
	duration := time.Since(start)

	if err != nil {
		c.logger.Warn("Ошибка от AI API", zap.Duration("duration", duration), zap.String("userID", userID), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("%w: %v", models.ErrAIGenerationFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response"}).Inc()
		return "", usage, fmt.Errorf("%w: получен пустой ответ", models.ErrAIGenerationFailed)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model}).Observe(duration.Seconds())

	generated := resp.Choices[0].Message.Content
	usage = c.usageFromResponse(resp.Usage, prompt, generated)
	if usage.TotalTokens > 0 {
		aiPromptTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usage.PromptTokens))
		aiCompletionTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usage.CompletionTokens))
		if usage.EstimatedCostUSD > 0 {
			aiEstimatedCostUSD.With(prometheus.Labels{"model": c.model}).Add(usage.EstimatedCostUSD)
		}
	}

	c.logger.Debug("Ответ от AI API получен",
		zap.Duration("duration", duration),
		zap.Int("responseLen", len(generated)),
		zap.Int("totalTokens", usage.TotalTokens),
		zap.String("userID", userID),
	)
	return generated, usage, nil
}

// usageFromResponse заполняет UsageInfo из ответа API. OpenRouter на части
// моделей не возвращает usage — тогда оцениваем токены через tiktoken.
func (c *openAIClient) usageFromResponse(u openaigo.Usage, prompt, completion string) UsageInfo {
	usage := UsageInfo{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		tke, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			c.logger.Warn("Не удалось получить токенизатор для оценки usage", zap.Error(err))
			return usage
		}
		usage.PromptTokens = len(tke.Encode(prompt, nil, nil))
		usage.CompletionTokens = len(tke.Encode(completion, nil, nil))
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	usage.EstimatedCostUSD = calculateCost(usage.PromptTokens, usage.CompletionTokens)
	return usage
}

// --- Ollama клиент (локальная модель) ---

type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func newOllamaClient(cfg *config.Config, logger *zap.Logger) (AIClient, error) {
	// api.NewClient требует URL без суффикса /v1.
	baseURL := strings.TrimSuffix(strings.TrimSuffix(cfg.AIBaseURL, "/"), "/v1")
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга Ollama Base URL '%s': %w", baseURL, err)
	}
	client := api.NewClient(parsedURL, &http.Client{Timeout: cfg.AITimeout})
	logger.Info("Ollama клиент создан",
		zap.String("baseURL", baseURL),
		zap.String("model", cfg.AIModel),
		zap.Duration("timeout", cfg.AITimeout),
	)
	return &ollamaClient{
		client:  client,
		model:   cfg.AIModel,
		timeout: cfg.AITimeout,
		logger:  logger,
	}, nil
}

func (c *ollamaClient) GenerateText(ctx context.Context, userID string, prompt string, params GenerationParams) (string, UsageInfo, error) {
	usage := UsageInfo{}
	if strings.TrimSpace(prompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("%w: пустой промт", models.ErrAIGenerationFailed)
	}

	options := map[string]interface{}{}
	if params.Temperature != nil {
		options["temperature"] = *params.Temperature
	}
	if params.TopP != nil {
		options["top_p"] = *params.TopP
	}
	if params.MaxTokens != nil {
		options["num_predict"] = *params.MaxTokens
	}

	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Options:  options,
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	var resp api.ChatResponse
	err := c.client.Chat(requestCtx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		c.logger.Warn("Ошибка от Ollama API", zap.Duration("duration", duration), zap.String("userID", userID), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("%w: %v", models.ErrAIGenerationFailed, err)
	}
	if resp.Message.Content == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response"}).Inc()
		return "", usage, fmt.Errorf("%w: получен пустой ответ", models.ErrAIGenerationFailed)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model}).Observe(duration.Seconds())

	usage.PromptTokens = resp.PromptEvalCount
	usage.CompletionTokens = resp.EvalCount
	usage.TotalTokens = resp.PromptEvalCount + resp.EvalCount
	// Оллама локальная, стоимость не считаем.
	if usage.TotalTokens > 0 {
		aiPromptTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usage.PromptTokens))
		aiCompletionTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usage.CompletionTokens))
	}
	return resp.Message.Content, usage, nil
}

// --- Фабрика ---

// NewAIClient создает AI клиент в зависимости от конфигурации.
func NewAIClient(cfg *config.Config, logger *zap.Logger) (AIClient, error) {
	switch strings.ToLower(cfg.AIClientType) {
	case "openai":
		openaiConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
		openaiConfig.BaseURL = cfg.AIBaseURL
		openaiConfig.HTTPClient = &http.Client{Timeout: cfg.AITimeout}
		logger.Info("OpenAI клиент создан",
			zap.String("baseURL", cfg.AIBaseURL),
			zap.String("model", cfg.AIModel),
			zap.Duration("timeout", cfg.AITimeout),
		)
		return &openAIClient{
			client: openaigo.NewClientWithConfig(openaiConfig),
			model:  cfg.AIModel,
			logger: logger,
		}, nil
	case "ollama":
		return newOllamaClient(cfg, logger)
	default:
		return nil, fmt.Errorf("неизвестный тип AI клиента: '%s'", cfg.AIClientType)
	}
}

func float32Val(f64 *float64) float32 {
	if f64 == nil {
		return 0
	}
	return float32(*f64)
}

func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
