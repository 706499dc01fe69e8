package llm

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// Options for a single Generate call
type Options struct {
	Tone        string
	MaxTokens   int
	Temperature *float32 // nil keeps the provider default, 0 is a valid override

	// UseKnowledge folds BusinessContext.Knowledge into the system prompt
	UseKnowledge bool
}

// Response is the outcome of a successful Generate call
type Response struct {
	Content      string
	ProviderUsed string
	Model        string
	TokensUsed   int
	Cost         float64

	// Estimated is true when TokensUsed was derived from the output length
	Estimated bool
	FellBack  bool
}

// Responder calls the primary provider and falls back to the secondary once
type Responder struct {
	primary   LLMProvider
	secondary LLMProvider
}

// NewResponder wires two providers; secondary may be nil to disable fallback
func NewResponder(primary, secondary LLMProvider) *Responder {
	return &Responder{primary: primary, secondary: secondary}
}

// Providers returns the configured provider names in attempt order
func (r *Responder) Providers() []string {
	names := []string{}
	if r.primary != nil {
		names = append(names, r.primary.GetProviderName())
	}
	if r.secondary != nil {
		names = append(names, r.secondary.GetProviderName())
	}
	return names
}

// Generate answers prompt using the business context. On primary failure it
// retries exactly once with the secondary; if that fails too it returns a
// *ProviderError listing both failures.
func (r *Responder) Generate(ctx context.Context, prompt string, bc BusinessContext, opts Options) (*Response, error) {
	if opts.Tone != "" {
		bc.Tone = opts.Tone
	}
	systemPrompt := BuildSystemPrompt(bc, opts.UseKnowledge)
	genOpts := GenerateOptions{MaxTokens: opts.MaxTokens, Temperature: opts.Temperature}

	perr := &ProviderError{}

	for i, p := range []LLMProvider{r.primary, r.secondary} {
		if p == nil {
			continue
		}
		// parent context gone, a second attempt cannot succeed either
		if ctxErr := ctx.Err(); ctxErr != nil {
			perr.Failures = append(perr.Failures, ProviderFailure{Provider: p.GetProviderName(), Err: ctxErr})
			break
		}

		completion, err := p.GenerateResponse(ctx, systemPrompt, prompt, genOpts)
		if err != nil {
			log.Warn().Err(err).Str("provider", p.GetProviderName()).Msg("⚠️ AI provider failed")
			perr.Failures = append(perr.Failures, ProviderFailure{Provider: p.GetProviderName(), Err: err})
			continue
		}

		resp := &Response{
			Content:      completion.Content,
			ProviderUsed: p.GetProviderName(),
			Model:        completion.Model,
			TokensUsed:   completion.TokensUsed,
			FellBack:     i > 0,
		}
		if resp.TokensUsed <= 0 {
			resp.TokensUsed = EstimateTokens(completion.Content)
			resp.Estimated = true
		}
		resp.Cost = Cost(resp.ProviderUsed, resp.TokensUsed)
		return resp, nil
	}

	if len(perr.Failures) == 0 {
		return nil, &ProviderError{Failures: []ProviderFailure{{Provider: "none", Err: errors.New("no AI provider configured")}}}
	}
	return nil, perr
}
