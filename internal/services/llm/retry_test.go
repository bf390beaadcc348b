package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "429 status code",
			err:      errors.New("Error 429, Message: quota exceeded"),
			expected: true,
		},
		{
			name:     "RESOURCE_EXHAUSTED status",
			err:      errors.New("Status: RESOURCE_EXHAUSTED"),
			expected: true,
		},
		{
			name:     "quota keyword",
			err:      errors.New("request exceeds quota for this project"),
			expected: true,
		},
		{
			name:     "unrelated error",
			err:      errors.New("connection refused"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRateLimitError(tt.err))
		})
	}
}

func TestExtractRetryDelay(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected time.Duration
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: 0,
		},
		{
			name:     "please retry format",
			err:      errors.New("Error 429, Message: ... Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED"),
			expected: time.Duration(45.387061394 * float64(time.Second)),
		},
		{
			name:     "retryDelay format",
			err:      errors.New("retryDelay: 30s"),
			expected: 30 * time.Second,
		},
		{
			name:     "no delay in message",
			err:      errors.New("Error 429, Message: quota exceeded"),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractRetryDelay(tt.err))
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	config := NewDefaultRetryConfig()

	t.Run("first attempt uses initial backoff", func(t *testing.T) {
		backoff := config.CalculateBackoff(0, 0)
		assert.Equal(t, config.InitialBackoff, backoff)
	})

	t.Run("api delay overrides initial backoff", func(t *testing.T) {
		backoff := config.CalculateBackoff(0, 30*time.Second)
		assert.Equal(t, 35*time.Second, backoff)
	})

	t.Run("backoff grows with attempts", func(t *testing.T) {
		first := config.CalculateBackoff(0, 0)
		second := config.CalculateBackoff(1, 0)
		assert.Greater(t, second, first)
	})

	t.Run("backoff capped at max", func(t *testing.T) {
		backoff := config.CalculateBackoff(10, 0)
		assert.Equal(t, config.MaxBackoff, backoff)
	})
}
