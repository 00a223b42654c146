// Package gateway normalizes LLM providers behind a minimal Gateway interface
// so behaviors and the orchestrator never touch vendor SDKs directly. Provider
// adapters live in subpackages; this package holds the contract, shared error
// classification and the structured-output parsing helper.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/astraeum/oraclecore/core"
)

// Request is a normalized single-turn generation request.
type Request struct {
	Prompt       string
	SystemPrompt string
	Model        string
	Temperature  float64
	MaxTokens    int64

	// JSONMode asks the provider for structured output where supported.
	// Callers still validate the payload; the flag is advisory.
	JSONMode bool
}

// Gateway is the inference contract. Generate returns the raw completion text;
// Embed returns a dense vector for semantic memory. Adapters that cannot
// embed return an error wrapping core.ErrInferenceMalformed from Embed.
type Gateway interface {
	Generate(ctx context.Context, req Request) (string, error)
	Embed(ctx context.Context, text string) ([]float64, error)
}

// ClassifyError maps transport failures onto the engine's sentinel errors so
// callers can branch on recoverability without vendor knowledge.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", core.ErrInferenceTimeout, err)
	}
	return err
}

// ParseJSON decodes a model completion into v. Models frequently wrap JSON in
// markdown fences or prepend prose; the helper strips fences and scans forward
// to the first brace before decoding. A failed decode wraps
// core.ErrInferenceMalformed so callers can fall back to templates.
func ParseJSON(raw string, v any) error {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	if i := strings.IndexAny(s, "{["); i > 0 {
		s = s[i:]
	}
	s = strings.TrimSpace(s)
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInferenceMalformed, err)
	}
	return nil
}

// MockGateway is a scriptable Gateway for tests. Responses are consumed in
// order; when exhausted the last one repeats. Safe for concurrent use.
type MockGateway struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	EmbedDim  int
	Calls     []Request
	next      int
}

// NewMockGateway creates a mock returning the given completions in order.
func NewMockGateway(responses ...string) *MockGateway {
	return &MockGateway{Responses: responses, EmbedDim: 8}
}

// Generate returns the next scripted completion or the configured error.
func (m *MockGateway) Generate(_ context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", fmt.Errorf("%w: no scripted response", core.ErrInferenceMalformed)
	}
	i := m.next
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	m.next++
	return m.Responses[i], nil
}

// Embed returns a deterministic vector derived from the text bytes so cosine
// ranking in tests is stable.
func (m *MockGateway) Embed(_ context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	dim := m.EmbedDim
	if dim <= 0 {
		dim = 8
	}
	vec := make([]float64, dim)
	for i, b := range []byte(text) {
		vec[i%dim] += float64(b) / 255
	}
	return vec, nil
}

// CallCount returns the number of Generate calls observed.
func (m *MockGateway) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
