// Package icp derives an Ideal Customer Profile and buyer/user personas from a product description.
package icp

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/avisanghavi/clout/internal/llm"
	"github.com/avisanghavi/clout/internal/prompts"
	"github.com/avisanghavi/clout/internal/types"
)

// Extractor turns free-text product descriptions into ICPPersonaBundles.
type Extractor struct {
	client llm.Client
	params llm.Params
	logger *zap.Logger
}

// NewExtractor creates an Extractor. A nil client behaves as if generation is unavailable;
// a nil logger discards output.
func NewExtractor(client llm.Client, params llm.Params, logger *zap.Logger) *Extractor {
	if client == nil {
		client = llm.Unavailable
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{client: client, params: params, logger: logger}
}

// Extract issues a single generation call and returns the parsed bundle.
// Any failure (service error, timeout, unparseable or incomplete JSON) yields the
// default bundle instead of an error. There are no retries.
func (e *Extractor) Extract(ctx context.Context, productDescription string) types.ICPPersonaBundle {
	prompt := buildPrompt(productDescription)

	responseText, err := e.client.Complete(ctx, prompt, e.params)
	if err != nil {
		e.logger.Warn("ICP generation failed, using default bundle",
			zap.String("model", e.params.Model),
			zap.Error(err))
		return types.DefaultICPPersonaBundle()
	}

	bundle, err := ParseBundle(responseText)
	if err != nil {
		e.logger.Warn("ICP response unusable, using default bundle", zap.Error(err))
		return types.DefaultICPPersonaBundle()
	}

	return *bundle
}

// ParseBundle extracts the first balanced JSON object from an LLM response and
// decodes it into a complete bundle.
func ParseBundle(responseText string) (*types.ICPPersonaBundle, error) {
	jsonText := llm.ExtractJSONObject(llm.CleanJSONBlock(responseText))
	if jsonText == "" {
		return nil, &ParseError{Message: "no JSON object in response"}
	}

	var bundle types.ICPPersonaBundle
	if err := json.Unmarshal([]byte(jsonText), &bundle); err != nil {
		return nil, &ParseError{Message: "failed to parse JSON response", Cause: err}
	}

	if err := bundle.Validate(); err != nil {
		return nil, &ParseError{Message: "incomplete bundle", Cause: err}
	}

	return &bundle, nil
}

// buildPrompt constructs the extraction prompt
func buildPrompt(productDescription string) string {
	template := prompts.MustGet("icp.json", "extract-icp-personas")
	return prompts.Format(template, map[string]string{
		"ProductDescription": productDescription,
	})
}
