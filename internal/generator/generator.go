package generator

import (
	"context"
	"fmt"

	"github.com/telun/repodoc/internal/config"
	"github.com/telun/repodoc/internal/domain"
)

// Generator turns an analysis into documentation text. Standard mode is
// deterministic markdown rendering; AI mode delegates the prose to an
// OpenAI-compatible model. AI failures are reported, never silently
// downgraded to standard output.
type Generator struct {
	model string
	ai    *OpenAIClient
}

// New creates a Generator. The AI backend is only wired when an API key is
// configured.
func New(cfg *config.GeneratorConfig) *Generator {
	g := &Generator{model: cfg.Model}
	if cfg.APIKey != "" {
		g.ai = NewOpenAIClient(cfg)
	}
	return g
}

// Generate produces the documentation payload for a completed analysis.
func (g *Generator) Generate(ctx context.Context, sub domain.Submission, an *domain.Analysis) (*domain.Documentation, error) {
	mode := sub.Mode
	if mode == "" {
		mode = domain.ModeStandard
	}

	switch mode {
	case domain.ModeStandard:
		return &domain.Documentation{
			Markdown:    renderMarkdown(sub, an),
			GeneratedBy: domain.ModeStandard,
		}, nil

	case domain.ModeAI:
		if g.ai == nil {
			return nil, fmt.Errorf("ai mode requested but no generator api key is configured")
		}
		markdown, err := g.ai.GenerateMarkdown(ctx, sub, an)
		if err != nil {
			return nil, fmt.Errorf("ai generation failed: %w", err)
		}
		return &domain.Documentation{
			Markdown:    markdown,
			GeneratedBy: g.model,
		}, nil

	default:
		return nil, fmt.Errorf("unknown generation mode %q", mode)
	}
}
