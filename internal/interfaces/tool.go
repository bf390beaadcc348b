package interfaces

import (
	"context"
)

// Tool is a single information-gathering capability the agent can invoke.
// Implementations must treat their own failures as values: a tool-specific
// error returned from Invoke is recoverable evidence for the reasoning loop,
// never a loop-ending fault.
type Tool interface {
	// Name returns the unique tool name used for dispatch.
	Name() string

	// Description returns a prompt-facing description of what the tool does
	// and when the agent should use it.
	Description() string

	// InputSchema returns the JSON schema for the tool's arguments.
	// Arguments are validated against it before dispatch.
	InputSchema() map[string]interface{}

	// Invoke executes the tool and returns an observation text for the
	// reasoning transcript.
	Invoke(ctx context.Context, args map[string]interface{}) (string, error)
}
