package outreach

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/avisanghavi/clout/internal/llm"
	"github.com/avisanghavi/clout/internal/prompts"
	"github.com/avisanghavi/clout/internal/types"
)

const (
	// DefaultMaxOutputTokens caps generated message length.
	DefaultMaxOutputTokens = 800

	productContextLimit = 500
	notSpecified        = "Not specified"
)

// wrappingQuotes pairs opening and closing quote characters that are stripped from replies.
var wrappingQuotes = [][2]string{
	{`"`, `"`},
	{`'`, `'`},
	{"“", "”"},
	{"‘", "’"},
}

var errEmptyMessage = errors.New("generated message is empty")

// Composer drafts outreach messages for ranked leads.
type Composer struct {
	client llm.Client
	params llm.Params
	logger *zap.Logger
}

// NewComposer creates a Composer. A nil client always uses the fallback templates.
// A zero MaxOutputTokens is replaced with DefaultMaxOutputTokens.
func NewComposer(client llm.Client, params llm.Params, logger *zap.Logger) *Composer {
	if client == nil {
		client = llm.Unavailable
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if params.MaxOutputTokens == 0 {
		params.MaxOutputTokens = DefaultMaxOutputTokens
	}
	return &Composer{client: client, params: params, logger: logger}
}

// Compose drafts one message for profile. evidence is the preferred connection path and may be nil.
// Generation failures are logged and replaced by a template; Compose never fails.
func (c *Composer) Compose(ctx context.Context, profile types.CandidateProfile, productDescription string, evidence *types.MutualConnectionEvidence) types.OutreachMessage {
	msgType := Classify(&profile)
	id := ParseIdentity(profile.Name, profile.Headline)

	// Intro requests always name an introducer.
	introducer := evidence
	if msgType == types.MessageIntroRequest && introducer == nil {
		first := profile.MutualConnections[0]
		introducer = &first
	}

	recipient := profile.Name
	if msgType == types.MessageIntroRequest {
		recipient = introducer.Name
	}

	msg := types.OutreachMessage{
		ProfileID:   profile.ID,
		MessageType: msgType,
		Recipient:   recipient,
	}

	text, err := c.generate(ctx, msgType, id, &profile, productDescription, introducer)
	if err != nil {
		c.logger.Warn("message generation failed, using fallback template",
			zap.String("profile", profile.Name),
			zap.String("message_type", string(msgType)),
			zap.Error(err))
		msg.Text = fallbackMessage(msgType, id, profile.Name, recipient, introducer)
		msg.GeneratedBy = types.GeneratedByFallback
		return msg
	}

	msg.Text = text
	msg.GeneratedBy = types.GeneratedByAI
	return msg
}

// ComposeAll drafts a message for every profile with at most workers concurrent generations.
// Results are in input order and do not depend on the worker count. The only error is
// cancellation of ctx.
func (c *Composer) ComposeAll(ctx context.Context, profiles []types.CandidateProfile, productDescription string, workers int) ([]types.OutreachMessage, error) {
	if workers < 1 {
		workers = 1
	}

	messages := make([]types.OutreachMessage, len(profiles))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range profiles {
		i := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			profile := profiles[i]
			messages[i] = c.Compose(gCtx, profile, productDescription, SelectConnectionPath(&profile))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("composing messages: %w", err)
	}
	return messages, nil
}

func (c *Composer) generate(ctx context.Context, msgType types.MessageType, id Identity, profile *types.CandidateProfile, productDescription string, introducer *types.MutualConnectionEvidence) (string, error) {
	prompt := buildPrompt(msgType, id, profile, productDescription, introducer)

	text, err := c.client.Complete(ctx, prompt, c.params)
	if err != nil {
		return "", err
	}

	text = stripWrappingQuotes(strings.TrimSpace(text))
	if strings.TrimSpace(text) == "" {
		return "", errEmptyMessage
	}

	if msgType == types.MessageColdOutreach {
		text = truncateCold(text)
	}
	return text, nil
}

// stripWrappingQuotes removes a single pair of matching quotes around text.
func stripWrappingQuotes(text string) string {
	for _, q := range wrappingQuotes {
		if len(text) >= len(q[0])+len(q[1]) && strings.HasPrefix(text, q[0]) && strings.HasSuffix(text, q[1]) {
			return text[len(q[0]) : len(text)-len(q[1])]
		}
	}
	return text
}

func buildPrompt(msgType types.MessageType, id Identity, profile *types.CandidateProfile, productDescription string, introducer *types.MutualConnectionEvidence) string {
	company := id.Company
	if company == "" {
		company = notSpecified
	}
	location := profile.Location
	if location == "" {
		location = notSpecified
	}
	level := string(profile.ConnectionLevel)
	if level == "" {
		level = notSpecified
	}

	connectionContext := "No direct mutual connections."
	if introducer != nil {
		connectionContext = fmt.Sprintf("I noticed we're both connected with %s.", introducer.Name)
		if introducer.InTNL {
			connectionContext = fmt.Sprintf("I noticed we're both connected with %s, who I work closely with.", introducer.Name)
		}
	}

	valueAngle := "potential collaboration opportunities"
	if strings.TrimSpace(productDescription) != "" {
		valueAngle = "how our solution helps"
	}

	prompt := prompts.Format(prompts.MustGet("outreach.json", "base"), map[string]string{
		"FullName":          profile.Name,
		"Role":              id.Role,
		"AtCompany":         atCompany(id.Company),
		"Company":           company,
		"Location":          location,
		"ConnectionLevel":   level,
		"MutualCount":       strconv.Itoa(len(profile.MutualConnections)),
		"ProductContext":    firstRunes(productDescription, productContextLimit),
		"ConnectionContext": connectionContext,
		"ValueAngle":        valueAngle,
	})

	switch msgType {
	case types.MessageDirectExisting:
		prompt += prompts.Format(prompts.MustGet("outreach.json", "direct-existing"), map[string]string{
			"CharLimit": strconv.Itoa(GuidedLimit),
		})
	case types.MessageIntroRequest:
		prompt += prompts.Format(prompts.MustGet("outreach.json", "intro-request"), map[string]string{
			"Introducer": introducer.Name,
			"FullName":   profile.Name,
			"CharLimit":  strconv.Itoa(GuidedLimit),
		})
	default:
		prompt += prompts.Format(prompts.MustGet("outreach.json", "cold-outreach"), map[string]string{
			"CharLimit": strconv.Itoa(ColdOutreachLimit),
		})
	}

	return prompt
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
