// Package tools provides the analysis tool registry and the built-in
// tool implementations dispatched by the reasoning loop.
package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/airalabs/aira/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// Registry maps tool names to implementations. Registration happens at
// process start; dispatch is read-only after that.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]interfaces.Tool
	logger arbor.ILogger
}

// NewRegistry creates an empty tool registry
func NewRegistry(logger arbor.ILogger) *Registry {
	return &Registry{
		tools:  make(map[string]interfaces.Tool),
		logger: logger,
	}
}

// Register adds a tool to the registry. Registering a duplicate name is
// a programming error.
func (r *Registry) Register(tool interfaces.Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool '%s' is already registered", name)
	}

	r.tools[name] = tool
	r.logger.Debug().Str("tool", name).Msg("Tool registered")
	return nil
}

// Get returns a tool by name
func (r *Registry) Get(name string) (interfaces.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tools sorted by name
func (r *Registry) List() []interfaces.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	tools := make([]interfaces.Tool, 0, len(names))
	for _, name := range names {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Describe returns a prompt-ready description of every registered tool
// including its input schema fields.
func (r *Registry) Describe() string {
	var b strings.Builder
	for _, tool := range r.List() {
		b.WriteString(fmt.Sprintf("- %s: %s\n", tool.Name(), tool.Description()))
		schema := tool.InputSchema()
		if props, ok := schema["properties"].(map[string]interface{}); ok {
			names := make([]string, 0, len(props))
			for name := range props {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if prop, ok := props[name].(map[string]interface{}); ok {
					desc, _ := prop["description"].(string)
					typ, _ := prop["type"].(string)
					b.WriteString(fmt.Sprintf("    %s (%s): %s\n", name, typ, desc))
				}
			}
		}
	}
	return b.String()
}

// Invoke validates the arguments against the tool's declared schema and
// dispatches the call. Unknown tools and schema mismatches return errors
// that the reasoning loop records as observations.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (string, time.Duration, error) {
	tool, ok := r.Get(name)
	if !ok {
		return "", 0, fmt.Errorf("unknown tool '%s'", name)
	}

	if err := validateArgs(tool.InputSchema(), args); err != nil {
		return "", 0, fmt.Errorf("invalid arguments for tool '%s': %w", name, err)
	}

	start := time.Now()
	observation, err := tool.Invoke(ctx, args)
	latency := time.Since(start)

	if err != nil {
		r.logger.Warn().
			Str("tool", name).
			Dur("latency", latency).
			Err(err).
			Msg("Tool invocation failed")
		return "", latency, err
	}

	r.logger.Debug().
		Str("tool", name).
		Dur("latency", latency).
		Int("observation_length", len(observation)).
		Msg("Tool invocation succeeded")

	return observation, latency, nil
}

// validateArgs checks required fields and primitive types against a
// JSON-schema-shaped map. Unknown argument names are rejected so the
// model cannot smuggle unsupported parameters past a tool.
func validateArgs(schema map[string]interface{}, args map[string]interface{}) error {
	props, _ := schema["properties"].(map[string]interface{})

	if required, ok := schema["required"].([]string); ok {
		for _, name := range required {
			if _, present := args[name]; !present {
				return fmt.Errorf("missing required argument '%s'", name)
			}
		}
	}

	for name, value := range args {
		propRaw, known := props[name]
		if !known {
			return fmt.Errorf("unknown argument '%s'", name)
		}
		prop, _ := propRaw.(map[string]interface{})
		expected, _ := prop["type"].(string)
		if expected == "" {
			continue
		}
		if !matchesType(expected, value) {
			return fmt.Errorf("argument '%s' must be of type %s", name, expected)
		}
	}

	return nil
}

func matchesType(expected string, value interface{}) bool {
	switch expected {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer", "number":
		switch value.(type) {
		case int, int32, int64, float32, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	default:
		return true
	}
}
