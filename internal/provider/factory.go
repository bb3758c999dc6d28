package provider

import (
	"context"
	"fmt"

	"lexi-backend/internal/config"
	"lexi-backend/internal/utils"
	"lexi-backend/pkg/logger"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"
)

// New builds the answer provider selected by cfg.Provider.Type.
func New(ctx context.Context, cfg *config.Config) (AnswerProvider, error) {
	switch cfg.Provider.Type {
	case "", "stub":
		logger.Infof("Using stub answer provider, delay %s", cfg.Provider.Delay)
		return NewStubProvider(cfg.Provider.Delay), nil
	case "doubao":
		cm, err := newDoubaoModel(ctx, cfg.Doubao)
		if err != nil {
			return nil, err
		}
		return NewModelProvider("doubao", cm, cfg.Provider.SystemPrompt), nil
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an api key")
		}
		logger.Infof("Using OpenAI model: %s", cfg.OpenAI.Model)
		return NewModelProvider("openai", newOpenAIChatModel(cfg.OpenAI), cfg.Provider.SystemPrompt), nil
	case "qwen":
		cm, err := newQwenModel(ctx, cfg.Qwen)
		if err != nil {
			return nil, err
		}
		return NewModelProvider("qwen", cm, cfg.Provider.SystemPrompt), nil
	default:
		return nil, fmt.Errorf("unsupported answer provider: %s", cfg.Provider.Type)
	}
}

func newDoubaoModel(ctx context.Context, cfg config.DoubaoConfig) (einoModel.ChatModel, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("doubao provider requires api_key and model")
	}
	logger.Infof("Using Doubao model: %s, key %s", cfg.Model, maskKey(cfg.APIKey))

	arkConfig := &ark.ChatModelConfig{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
		CustomHeader: map[string]string{
			"X-Ark-Thinking-Mode": "disable",
		},
	}
	if cfg.BaseURL != "" {
		arkConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		timeout := cfg.Timeout
		arkConfig.Timeout = &timeout
	}

	chatModel, err := ark.NewChatModel(ctx, arkConfig)
	if err != nil {
		return nil, fmt.Errorf("create doubao model: %w", err)
	}
	return chatModel, nil
}

func newQwenModel(ctx context.Context, cfg config.QwenConfig) (einoModel.ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("qwen provider requires an api key")
	}
	logger.Infof("Using Qwen model: %s, BaseURL: %s, key %s", cfg.Model, cfg.BaseURL, maskKey(cfg.APIKey))

	httpClient := utils.NewHTTPClient(cfg.Timeout)
	httpClient.Transport = NewDebugTransport(httpClient.Transport, "qwen", cfg.DebugRequest)

	chatModel, err := qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   &cfg.MaxTokens,
		Temperature: &cfg.Temperature,
		TopP:        &cfg.TopP,
		Timeout:     cfg.Timeout,
		HTTPClient:  httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create qwen model: %w", err)
	}
	return chatModel, nil
}

func maskKey(key string) string {
	if len(key) > 10 {
		return key[:10] + "..."
	}
	return "***"
}
