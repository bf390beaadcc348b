package interfaces

import (
	"context"
	"errors"
)

// Completion error taxonomy. Providers classify transport failures into these
// sentinels so callers can distinguish hard outages from transient throttling.
var (
	// ErrCompletionUnavailable indicates the completion backend cannot be
	// reached (network, auth, service down). Treated as fatal by the
	// reasoning loop.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrCompletionRateLimited indicates transient throttling. Providers
	// retry with backoff internally before surfacing this.
	ErrCompletionRateLimited = errors.New("completion service rate limited")
)

// Message represents a single message in a completion conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// CompletionRequest is a provider-agnostic content generation request.
type CompletionRequest struct {
	Messages          []Message
	Model             string
	Temperature       float32
	MaxTokens         int
	SystemInstruction string
	// OutputSchema is a JSON schema the response must conform to.
	// Providers with constrained generation enforce it server-side;
	// others embed it in the prompt and rely on the caller's parser.
	OutputSchema map[string]interface{}
}

// CompletionService abstracts a large language model used as a best-effort
// oracle: the reasoning loop, the sentiment tool, and the reflection
// evaluator all go through this interface. Two calls with the same prompt
// under the same model config return semantically comparable (not identical)
// outputs.
type CompletionService interface {
	// Complete generates a single completion for the request.
	// Failures are classified with ErrCompletionUnavailable or
	// ErrCompletionRateLimited where the cause is known.
	Complete(ctx context.Context, request *CompletionRequest) (string, error)

	// Close releases provider resources.
	Close() error
}
