// internal/pipeline/check-contradictions/handler_test.go
package checkcontradictions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-orchestrator/internal/models"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t testing.TB
}

func NewTestLogger(t testing.TB) *TestLogger { return &TestLogger{t: t} }

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}
func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, fields)
}
func (l *TestLogger) With(fields map[string]interface{}) Logger { return l }

// ==========================
// Fake Completer
// ==========================

type fakeCompleter struct {
	text  string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

func twoResponses() []models.NormalizedResponse {
	return []models.NormalizedResponse{
		{Angle: "a", Content: "X is growing"},
		{Angle: "b", Content: "X is shrinking"},
	}
}

// ==========================
// Tests
// ==========================

func TestHandler_Execute_SingleResponseSkipsAnalysis(t *testing.T) {
	completer := &fakeCompleter{}
	handler := NewHandler(completer, NewTestLogger(t))

	responses := []models.NormalizedResponse{{Angle: "only", Content: "text"}}

	out := handler.Execute(context.Background(), responses)

	require.Len(t, out, 1)
	assert.Nil(t, out[0].ContradictionAnalysis)
	assert.Zero(t, completer.calls, "a single response has nothing to compare against")
}

func TestHandler_Execute_EmptyBatchSkipsAnalysis(t *testing.T) {
	completer := &fakeCompleter{}
	handler := NewHandler(completer, NewTestLogger(t))

	out := handler.Execute(context.Background(), nil)

	assert.Empty(t, out)
	assert.Zero(t, completer.calls)
}

func TestHandler_Execute_AttachesSameAnalysisToAll(t *testing.T) {
	completer := &fakeCompleter{
		text: `{"has_contradictions": true, "contradictions": ["growth figures disagree"], "confidence": 0.8}`,
	}
	handler := NewHandler(completer, NewTestLogger(t))

	out := handler.Execute(context.Background(), twoResponses())

	require.Len(t, out, 2)
	require.NotNil(t, out[0].ContradictionAnalysis)
	assert.Same(t, out[0].ContradictionAnalysis, out[1].ContradictionAnalysis)
	assert.True(t, out[0].ContradictionAnalysis.HasContradictions)
	assert.Equal(t, []string{"growth figures disagree"}, out[0].ContradictionAnalysis.Contradictions)
	assert.InDelta(t, 0.8, out[0].ContradictionAnalysis.Confidence, 1e-9)
	assert.Empty(t, out[0].ContradictionAnalysis.Error)
	assert.Equal(t, 1, completer.calls)
}

func TestHandler_Execute_CompleterFailureDegrades(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("rate limited")}
	handler := NewHandler(completer, NewTestLogger(t))

	out := handler.Execute(context.Background(), twoResponses())

	require.Len(t, out, 2)
	require.NotNil(t, out[0].ContradictionAnalysis)
	assert.Equal(t, "Error analyzing contradictions: rate limited", out[0].ContradictionAnalysis.Error)
	assert.False(t, out[0].ContradictionAnalysis.HasContradictions)
}

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		structured bool
	}{
		{
			name:       "plain json",
			text:       `{"has_contradictions": false, "contradictions": [], "confidence": 0.95}`,
			structured: true,
		},
		{
			name:       "fenced json",
			text:       "```json\n{\"has_contradictions\": false, \"contradictions\": [], \"confidence\": 0.95}\n```",
			structured: true,
		},
		{
			name:       "prose answer",
			text:       "I did not find contradictions between the responses.",
			structured: false,
		},
		{
			name:       "missing required field",
			text:       `{"has_contradictions": false, "confidence": 0.5}`,
			structured: false,
		},
		{
			name:       "confidence out of range",
			text:       `{"has_contradictions": false, "contradictions": [], "confidence": 1.5}`,
			structured: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := parseAnalysis(tt.text)

			require.NotNil(t, analysis)
			assert.Equal(t, tt.text, analysis.Raw, "original text always survives in Raw")
			if tt.structured {
				assert.InDelta(t, 0.95, analysis.Confidence, 1e-9)
				assert.NotNil(t, analysis.Contradictions)
			} else {
				assert.Zero(t, analysis.Confidence)
				assert.Nil(t, analysis.Contradictions)
			}
		})
	}
}

func TestBuildPrompt_IncludesAllResponses(t *testing.T) {
	prompt := buildPrompt(twoResponses())

	assert.Contains(t, prompt, "Angle: a")
	assert.Contains(t, prompt, "X is growing")
	assert.Contains(t, prompt, "Angle: b")
	assert.Contains(t, prompt, "X is shrinking")
	assert.Contains(t, prompt, `"has_contradictions"`)
}
