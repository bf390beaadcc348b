package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// CompletionService adapts the provider factory to the completion
// contract used by the reasoning loop and the quality evaluator.
type CompletionService struct {
	factory *ProviderFactory
	logger  arbor.ILogger
	timeout time.Duration
}

// NewCompletionService creates a completion service over the provider
// factory. The per-call timeout comes from the default provider's config.
func NewCompletionService(config *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (*CompletionService, error) {
	factory := NewProviderFactory(&config.Gemini, &config.Claude, &config.LLM, kvStorage, logger)

	timeoutStr := config.Gemini.Timeout
	if config.LLM.DefaultProvider == common.LLMProviderClaude {
		timeoutStr = config.Claude.Timeout
	}
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid completion timeout '%s': %w", timeoutStr, err)
	}

	logger.Info().
		Str("default_provider", string(config.LLM.DefaultProvider)).
		Dur("timeout", timeout).
		Msg("Completion service initialized")

	return &CompletionService{
		factory: factory,
		logger:  logger,
		timeout: timeout,
	}, nil
}

// Factory exposes the underlying provider factory for callers that need
// model selection helpers.
func (s *CompletionService) Factory() *ProviderFactory {
	return s.factory
}

// Complete generates one completion for the request. Errors are wrapped
// with the completion sentinels so callers can classify availability
// failures without string matching.
func (s *CompletionService) Complete(ctx context.Context, request *interfaces.CompletionRequest) (string, error) {
	if len(request.Messages) == 0 {
		return "", fmt.Errorf("completion request has no messages")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := s.factory.GenerateContent(timeoutCtx, &ContentRequest{
		Messages:          request.Messages,
		Model:             request.Model,
		Temperature:       request.Temperature,
		MaxTokens:         request.MaxTokens,
		SystemInstruction: request.SystemInstruction,
		OutputSchema:      request.OutputSchema,
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("message_count", len(request.Messages)).
			Msg("Completion failed")
		return "", err
	}

	s.logger.Debug().
		Str("provider", string(resp.Provider)).
		Str("model", resp.Model).
		Int("response_length", len(resp.Text)).
		Dur("duration", time.Since(startTime)).
		Msg("Completion succeeded")

	return resp.Text, nil
}

// Close releases provider clients
func (s *CompletionService) Close() error {
	s.logger.Debug().Msg("Closing completion service")
	return s.factory.Close()
}
