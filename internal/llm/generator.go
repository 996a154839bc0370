package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civic-report/report-assistant/internal/model"
	"github.com/civic-report/report-assistant/pkg/metrics"
)

const (
	replySystemPrompt = `You are a friendly assistant for a neighbourhood reporting service. ` +
		`Residents use it to report local problems such as broken street lamps, clogged drains, ` +
		`fallen trees, garbage or noise. Answer briefly in the resident's language. ` +
		`Never claim that a report was created or sent.`

	titleSystemPrompt = `Write a short title, at most eight words, for the following neighbourhood ` +
		`problem report. Reply with the title only, on one line, without quotes.`
)

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// Generator produces free-form replies and report titles. A Generator with no
// client is valid and reports itself unavailable.
type Generator struct {
	client Client
	cfg    GeneratorConfig
	logger *zap.Logger
}

// NewGenerator wraps client. client may be nil.
func NewGenerator(client Client, cfg GeneratorConfig, logger *zap.Logger) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, cfg: cfg, logger: logger}
}

// Available reports whether a provider is configured.
func (g *Generator) Available() bool {
	return g != nil && g.client != nil
}

// Complete returns a reply to the conversation so far.
func (g *Generator) Complete(ctx context.Context, turns []model.ConversationTurn) (string, error) {
	messages := make([]ChatMessage, 0, len(turns))
	for _, t := range turns {
		if t.Role == model.RoleSystem {
			continue
		}
		messages = append(messages, ChatMessage{Role: string(t.Role), Content: t.Content})
	}
	return g.complete(ctx, &CompletionRequest{
		System:      replySystemPrompt,
		Messages:    messages,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: 0.4,
	})
}

// Summarize returns a one-line title for report text.
func (g *Generator) Summarize(ctx context.Context, text string) (string, error) {
	return g.complete(ctx, &CompletionRequest{
		System:      titleSystemPrompt,
		Messages:    []ChatMessage{{Role: string(model.RoleUser), Content: text}},
		MaxTokens:   40,
		Temperature: 0.2,
	})
}

func (g *Generator) complete(ctx context.Context, req *CompletionRequest) (string, error) {
	if !g.Available() {
		return "", ErrUnavailable
	}
	req.Model = g.cfg.Model

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := g.client.Complete(ctx, req)
	if err != nil {
		metrics.RecordLLM(g.client.Name(), req.Model, "error", 0, 0)
		g.logger.Warn("completion failed",
			zap.String("provider", g.client.Name()),
			zap.Error(err),
		)
		return "", err
	}
	metrics.RecordLLM(g.client.Name(), resp.Model, "success", resp.TokensIn, resp.TokensOut)

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", errors.New("empty completion")
	}
	return content, nil
}
