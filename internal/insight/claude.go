package insight

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/landscope/internal/resilience"
	"github.com/sells-group/landscope/pkg/anthropic"
)

// Provider produces insight records. Implementations must be safe for
// concurrent use.
type Provider interface {
	SoilInsight(ctx context.Context, q Query) (*AgriculturalInsight, error)
	ContaminationGuide(ctx context.Context, q Query) (*ContaminationGuide, error)
	CrisisAnalysis(ctx context.Context, q CrisisQuery) (*CrisisAnalysis, error)
}

// ErrNoInsight means the model answered but no usable soil insight could be
// parsed from the reply.
var ErrNoInsight = eris.New("insight: no insight in model reply")

// ClaudeConfig tunes a ClaudeProvider.
type ClaudeConfig struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	// CacheTTL enables prompt caching of the system prompt ("5m" or "1h").
	CacheTTL string
	Guard    resilience.GuardConfig
}

// ClaudeProvider implements Provider on the Anthropic Messages API.
type ClaudeProvider struct {
	client anthropic.Client
	cfg    ClaudeConfig
	guard  *resilience.Guard
}

// NewClaudeProvider wraps client. Only transient failures count against the
// circuit breaker.
func NewClaudeProvider(client anthropic.Client, cfg ClaudeConfig) *ClaudeProvider {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Guard.Breaker.Counts == nil {
		cfg.Guard.Breaker.Counts = resilience.IsTransient
	}
	if cfg.Guard.Retry.OnRetry == nil {
		cfg.Guard.Retry.OnRetry = resilience.LogRetry("anthropic", "create_message")
	}
	return &ClaudeProvider{
		client: client,
		cfg:    cfg,
		guard:  resilience.NewGuard(cfg.Guard),
	}
}

// SoilInsight implements Provider.
func (p *ClaudeProvider) SoilInsight(ctx context.Context, q Query) (*AgriculturalInsight, error) {
	text, err := p.ask(ctx, "soil_insight", soilPrompt(q))
	if err != nil {
		return nil, err
	}
	var out AgriculturalInsight
	if !decode(text, &out) {
		zap.L().Warn("insight: unparseable soil insight", zap.Int("reply_len", len(text)))
		return nil, ErrNoInsight
	}
	return &out, nil
}

// ContaminationGuide implements Provider. An unparseable reply yields
// FallbackGuide.
func (p *ClaudeProvider) ContaminationGuide(ctx context.Context, q Query) (*ContaminationGuide, error) {
	if q.Cell == nil {
		return nil, eris.New("insight: contamination guide requires a cell")
	}
	text, err := p.ask(ctx, "contamination_guide", guidePrompt(q))
	if err != nil {
		return nil, err
	}
	var out ContaminationGuide
	if !decode(text, &out) {
		zap.L().Warn("insight: unparseable guide, using fallback", zap.String("cell_id", q.Cell.ID))
		return FallbackGuide(), nil
	}
	return &out, nil
}

// CrisisAnalysis implements Provider. An unparseable reply yields
// FallbackCrisis.
func (p *ClaudeProvider) CrisisAnalysis(ctx context.Context, q CrisisQuery) (*CrisisAnalysis, error) {
	text, err := p.ask(ctx, "crisis_analysis", crisisPrompt(q))
	if err != nil {
		return nil, err
	}
	var out CrisisAnalysis
	if !decode(text, &out) {
		zap.L().Warn("insight: unparseable crisis analysis, using fallback", zap.String("cell_id", q.Cell.ID))
		return FallbackCrisis(), nil
	}
	return &out, nil
}

func (p *ClaudeProvider) ask(ctx context.Context, op, prompt string) (string, error) {
	req := anthropic.MessageRequest{
		Model:     p.cfg.Model,
		MaxTokens: p.cfg.MaxTokens,
		System:    []anthropic.SystemBlock{{Text: systemPrompt}},
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	}
	if p.cfg.CacheTTL != "" {
		req.System = anthropic.CachedSystem(systemPrompt, p.cfg.CacheTTL)
	}
	if p.cfg.Temperature > 0 {
		temp := p.cfg.Temperature
		req.Temperature = &temp
	}

	start := time.Now()
	resp, err := resilience.Call(ctx, p.guard, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		resp, err := p.client.CreateMessage(ctx, req)
		if err != nil {
			if code := anthropic.StatusCode(err); resilience.TransientStatus(code) {
				return nil, resilience.Transient(err, code)
			}
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return "", eris.Wrapf(err, "insight: %s", op)
	}

	resp.Usage.LogCost(p.cfg.Model, op)
	zap.L().Debug("insight: model reply",
		zap.String("operation", op),
		zap.String("stop_reason", resp.StopReason),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp.Text(), nil
}

func decode(text string, v any) bool {
	raw, ok := extractJSON(text)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}
