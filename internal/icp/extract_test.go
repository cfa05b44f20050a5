package icp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/avisanghavi/clout/internal/llm"
	"github.com/avisanghavi/clout/internal/types"
)

const validResponse = `Here is the profile:
{
  "icp": {"industry": "Healthcare", "company_size": "200-2000 employees", "geography": "US", "other_criteria": ["HIPAA"]},
  "buyer_persona": {"title": "CIO", "role": "Decision maker", "pain_points": ["Legacy EHR"], "search_terms": "CIO hospital"},
  "user_persona": {"title": "Nurse Manager", "role": "End user", "pain_points": ["Scheduling"], "search_terms": "Nurse Manager"}
}`

func fixedClient(text string, err error) llm.Client {
	return llm.ClientFunc(func(context.Context, string, llm.Params) (string, error) {
		return text, err
	})
}

func TestExtract_ParsesValidResponse(t *testing.T) {
	e := NewExtractor(fixedClient(validResponse, nil), llm.Params{Model: "m"}, nil)

	bundle := e.Extract(context.Background(), "An EHR scheduling add-on")

	assert.Equal(t, "Healthcare", bundle.ICP.Industry)
	assert.Equal(t, []string{"HIPAA"}, bundle.ICP.OtherCriteria)
	assert.Equal(t, "CIO", bundle.BuyerPersona.Title)
	assert.Equal(t, "Nurse Manager", bundle.UserPersona.Title)
}

func TestExtract_PromptCarriesDescriptionAndParams(t *testing.T) {
	var gotPrompt string
	var gotParams llm.Params
	client := llm.ClientFunc(func(_ context.Context, prompt string, params llm.Params) (string, error) {
		gotPrompt, gotParams = prompt, params
		return validResponse, nil
	})

	e := NewExtractor(client, llm.Params{Model: "gemini-x", Temperature: 0.4}, nil)
	e.Extract(context.Background(), "Payroll for remote teams")

	assert.Contains(t, gotPrompt, "Payroll for remote teams")
	assert.Contains(t, gotPrompt, "Return ONLY valid JSON")
	assert.Equal(t, "gemini-x", gotParams.Model)
	assert.InDelta(t, 0.4, float64(gotParams.Temperature), 1e-6)
}

func TestExtract_UnparseableResponseReturnsDefault(t *testing.T) {
	e := NewExtractor(fixedClient("I'm sorry, I can't produce JSON today.", nil), llm.Params{}, nil)

	bundle := e.Extract(context.Background(), "anything")

	assert.Equal(t, "Technology", bundle.ICP.Industry)
	assert.Equal(t, types.DefaultICPPersonaBundle(), bundle)
}

func TestExtract_FailuresReturnDefault(t *testing.T) {
	tests := []struct {
		name   string
		client llm.Client
	}{
		{"service error", fixedClient("", errors.New("503 service unavailable"))},
		{"auth error", fixedClient("", &llm.APICallError{Message: "invalid API key"})},
		{"malformed JSON", fixedClient(`{"icp": {"industry": "X",}`, nil)},
		{"incomplete bundle", fixedClient(`{"icp": {"industry": "Retail"}}`, nil)},
		{"nil client", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(tt.client, llm.Params{}, nil)
			bundle := e.Extract(context.Background(), "anything")
			assert.Equal(t, types.DefaultICPPersonaBundle(), bundle)
		})
	}
}

func TestExtract_SingleCallNoRetry(t *testing.T) {
	calls := 0
	client := llm.ClientFunc(func(context.Context, string, llm.Params) (string, error) {
		calls++
		return "", errors.New("timeout")
	})

	NewExtractor(client, llm.Params{}, nil).Extract(context.Background(), "x")
	assert.Equal(t, 1, calls)
}

func TestExtract_LogsWarningOnFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := NewExtractor(fixedClient("", errors.New("boom")), llm.Params{Model: "m"}, zap.New(core))

	e.Extract(context.Background(), "x")

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "default bundle")
}

func TestParseBundle_Errors(t *testing.T) {
	_, err := ParseBundle("no json here")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)

	_, err = ParseBundle(`{"icp": 5}`)
	require.ErrorAs(t, err, &parseErr)
}
