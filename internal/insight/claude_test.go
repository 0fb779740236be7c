package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/landscope/internal/access"
	"github.com/sells-group/landscope/internal/geo"
	"github.com/sells-group/landscope/internal/grid"
	"github.com/sells-group/landscope/internal/resilience"
	"github.com/sells-group/landscope/pkg/anthropic"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func reply(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		ID:         "msg_1",
		Content:    []anthropic.ContentBlock{{Type: "text", Text: text}},
		StopReason: "end_turn",
		Usage:      anthropic.TokenUsage{InputTokens: 100, OutputTokens: 50},
	}
}

func testCell() grid.HazardProfile {
	return grid.HazardProfile{
		ID:                "gz-grid-7-2026",
		SectorID:          "GZ-8",
		Center:            geo.Coordinate{Lat: 31.4, Lng: 34.4},
		Toxicity:          grid.ToxicityHigh,
		Contaminant:       grid.WhitePhosphorus,
		PersistenceMonths: 48,
		WaterSource:       "Brackish Well",
		HealthRisks:       []string{"Leishmaniasis", "Gastroenteritis"},
	}
}

func newTestProvider(client anthropic.Client) *ClaudeProvider {
	return NewClaudeProvider(client, ClaudeConfig{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 1024,
		CacheTTL:  "1h",
		Guard: resilience.GuardConfig{
			Retry: resilience.RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
		},
	})
}

func TestSoilInsight(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-sonnet-4-5-20250929" &&
			len(req.System) == 1 && req.System[0].CacheControl != nil &&
			len(req.Messages) == 1 &&
			assert.Contains(t, req.Messages[0].Content, "DANGER - MILITARY ZONE")
	})).Return(reply("Here you go:\n```json\n{\"soilType\":\"Sandy Regosol\",\"salinityRisk\":\"High\",\"primaryCrops\":[\"Barley\"]}\n```"), nil)

	p := newTestProvider(client)
	ins, err := p.SoilInsight(context.Background(), Query{
		Point:  geo.Coordinate{Lat: 31.56, Lng: 34.53},
		Access: access.Result{Level: access.Restricted},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sandy Regosol", ins.SoilType)
	assert.Equal(t, "High", ins.SalinityRisk)
	assert.Equal(t, []string{"Barley"}, ins.PrimaryCrops)
	client.AssertExpectations(t)
}

func TestSoilInsight_Unparseable(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(reply("I cannot help with that."), nil)

	_, err := newTestProvider(client).SoilInsight(context.Background(), Query{Point: geo.Coordinate{Lat: 31.4, Lng: 34.4}})
	assert.ErrorIs(t, err, ErrNoInsight)
}

func TestContaminationGuide(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return assert.Contains(t, req.Messages[0].Content, "White Phosphorus") &&
			assert.Contains(t, req.Messages[0].Content, "Toxicity: HIGH")
	})).Return(reply(`{"hazardExplanation":"x","plantingSteps":["a","b","c","d","e"],"safetyProtocol":"y"}`), nil)

	cell := testCell()
	g, err := newTestProvider(client).ContaminationGuide(context.Background(), Query{Cell: &cell})
	require.NoError(t, err)
	assert.Len(t, g.PlantingSteps, 5)
	assert.Equal(t, "y", g.SafetyProtocol)
}

func TestContaminationGuide_Fallback(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(reply(`{"plantingSteps": [`), nil)

	cell := testCell()
	g, err := newTestProvider(client).ContaminationGuide(context.Background(), Query{Cell: &cell})
	require.NoError(t, err)
	assert.Equal(t, FallbackGuide(), g)
	assert.Equal(t, []string{"Contact central NGO support"}, g.PlantingSteps)
}

func TestContaminationGuide_NoCell(t *testing.T) {
	client := &mockClient{}
	_, err := newTestProvider(client).ContaminationGuide(context.Background(), Query{})
	assert.Error(t, err)
	client.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestCrisisAnalysis(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		content := req.Messages[0].Content
		return assert.Contains(t, content, "sector GZ-8") &&
			assert.Contains(t, content, "Safety protocol: wear masks") &&
			assert.Contains(t, content, "No soil insights available.")
	})).Return(reply(`{"overallAssessment":"urgent","immediateActions":["fence"],"riskFactors":["UXO"]}`), nil)

	guide := &ContaminationGuide{SafetyProtocol: "wear masks", PlantingSteps: []string{"a"}}
	out, err := newTestProvider(client).CrisisAnalysis(context.Background(), CrisisQuery{Cell: testCell(), Guide: guide})
	require.NoError(t, err)
	assert.Equal(t, "urgent", out.OverallAssessment)
	assert.Equal(t, []string{"UXO"}, out.RiskFactors)
}

func TestCrisisAnalysis_Fallback(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(reply(""), nil)

	out, err := newTestProvider(client).CrisisAnalysis(context.Background(), CrisisQuery{Cell: testCell()})
	require.NoError(t, err)
	assert.Equal(t, FallbackCrisis(), out)
}

func TestAsk_RetriesTransient(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, resilience.Transient(errors.New("overloaded"), 529)).Once()
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(reply(`{"soilType":"Loess"}`), nil).Once()

	ins, err := newTestProvider(client).SoilInsight(context.Background(), Query{Point: geo.Coordinate{Lat: 31.4, Lng: 34.4}})
	require.NoError(t, err)
	assert.Equal(t, "Loess", ins.SoilType)
	client.AssertNumberOfCalls(t, "CreateMessage", 2)
}

func TestAsk_PermanentErrorNotRetried(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("invalid api key"))

	_, err := newTestProvider(client).SoilInsight(context.Background(), Query{Point: geo.Coordinate{Lat: 31.4, Lng: 34.4}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insight: soil_insight")
	client.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"prose", `Sure! {"a":{"b":2}} Hope this helps.`, `{"a":{"b":2}}`, true},
		{"none", "no json here", "", false},
		{"reversed", "} {", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSON(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
