package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/landscope/internal/access"
	"github.com/sells-group/landscope/internal/grid"
	"github.com/sells-group/landscope/internal/insight"
	"github.com/sells-group/landscope/internal/resilience"
	"github.com/sells-group/landscope/internal/timeline"
	"github.com/sells-group/landscope/internal/zone"
	"github.com/sells-group/landscope/pkg/anthropic"
)

// loadRegistry returns the configured scenario, or the embedded one.
func loadRegistry() (*zone.Registry, error) {
	if cfg.Scenario.File == "" {
		return zone.Default()
	}
	reg, err := zone.LoadFile(cfg.Scenario.File)
	if err != nil {
		return nil, err
	}
	zap.L().Info("loaded scenario",
		zap.String("file", cfg.Scenario.File),
		zap.String("name", reg.Name()),
		zap.Int("version", reg.Version()),
	)
	return reg, nil
}

// loadCheckpoints returns the configured timeline, or the default one.
func loadCheckpoints() ([]timeline.Checkpoint, error) {
	if len(cfg.Scenario.Checkpoints) == 0 {
		return timeline.DefaultCheckpoints(), nil
	}
	out := make([]timeline.Checkpoint, 0, len(cfg.Scenario.Checkpoints))
	for _, cp := range cfg.Scenario.Checkpoints {
		out = append(out, timeline.Checkpoint{
			Label:          cp.Label,
			Year:           cp.Year,
			RecoveryFactor: cp.RecoveryFactor,
		})
	}
	if err := timeline.Validate(out); err != nil {
		return nil, eris.Wrap(err, "scenario checkpoints")
	}
	return out, nil
}

// gridParams resolves --year and --recovery, defaulting to the operational
// checkpoint when a flag is not set.
func gridParams(cmd *cobra.Command) (year, recovery int, err error) {
	cps, err := loadCheckpoints()
	if err != nil {
		return 0, 0, err
	}
	op, _ := timeline.Operational(cps)
	year, recovery = op.Year, op.RecoveryFactor

	if cmd.Flags().Changed("year") {
		year, _ = cmd.Flags().GetInt("year")
	}
	if cmd.Flags().Changed("recovery") {
		recovery, _ = cmd.Flags().GetInt("recovery")
	}
	return year, recovery, nil
}

func addGridFlags(cmd *cobra.Command) {
	cmd.Flags().Int("year", 0, "grid year (default: operational checkpoint)")
	cmd.Flags().Int("recovery", 0, "recovery factor (default: operational checkpoint)")
}

func newGridCache(reg *zone.Registry) *grid.Cache {
	return grid.NewCache(grid.New(reg), cfg.Grid.CacheEntries, time.Duration(cfg.Grid.CacheTTLMins)*time.Minute)
}

// claudeConfig maps the anthropic and insight config sections onto the
// provider settings.
func claudeConfig(onBreaker func(from, to resilience.State)) insight.ClaudeConfig {
	retry := resilience.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.Insight.MaxAttempts
	retry.InitialBackoff = time.Duration(cfg.Insight.InitialBackoffMs) * time.Millisecond
	retry.MaxBackoff = time.Duration(cfg.Insight.MaxBackoffMs) * time.Millisecond

	return insight.ClaudeConfig{
		Model:       cfg.Anthropic.Model,
		MaxTokens:   cfg.Anthropic.MaxTokens,
		Temperature: cfg.Anthropic.Temperature,
		CacheTTL:    cfg.Anthropic.CacheTTL,
		Guard: resilience.GuardConfig{
			RatePerSecond: cfg.Insight.RatePerSecond,
			Burst:         cfg.Insight.Burst,
			Retry:         retry,
			Breaker: resilience.BreakerConfig{
				Threshold: cfg.Insight.BreakerThreshold,
				Cooldown:  time.Duration(cfg.Insight.BreakerCooldownSecs) * time.Second,
				OnChange:  onBreaker,
			},
		},
	}
}

// newInsightService builds the insight service. Without an API key the
// service has no provider and every request reports it as unavailable.
func newInsightService(reg *zone.Registry, onBreaker func(from, to resilience.State)) *insight.Service {
	classifier := access.FromRegistry(reg)
	if cfg.Anthropic.Key == "" {
		zap.L().Warn("anthropic.key not set, insight disabled")
		return insight.NewService(nil, classifier)
	}
	client := anthropic.NewClient(cfg.Anthropic.Key, anthropic.Options{
		BaseURL: cfg.Anthropic.BaseURL,
		Timeout: time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second,
	})
	return insight.NewService(insight.NewClaudeProvider(client, claudeConfig(onBreaker)), classifier)
}

// logBreaker logs breaker transitions and forwards them to next.
func logBreaker(next func(from, to resilience.State)) func(from, to resilience.State) {
	return func(from, to resilience.State) {
		zap.L().Warn("insight: circuit breaker state change",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
		if next != nil {
			next(from, to)
		}
	}
}
