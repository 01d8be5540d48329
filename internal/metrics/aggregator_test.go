package metrics

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/eloca-metrics/internal/metrics/mocks"
	"github.com/godilite/eloca-metrics/internal/repository/models"
)

func emptyStore() *mocks.MockDailyStore {
	return &mocks.MockDailyStore{
		GetServiceTimesByDayFunc: func(ctx context.Context) ([]models.DailyServiceTimes, error) { return nil, nil },
		GetSLAByDayFunc:          func(ctx context.Context) ([]models.DailySLA, error) { return nil, nil },
	}
}

func onTime(b bool) sql.NullBool { return sql.NullBool{Bool: b, Valid: true} }

func ticket(id, agent, day string, serviceSeconds float64) models.TicketRecord {
	return models.TicketRecord{
		TicketID:          id,
		Agent:             agent,
		Day:               day,
		ServiceSeconds:    serviceSeconds,
		WaitSeconds:       math.NaN(),
		ResolutionSeconds: math.NaN(),
	}
}

func findAgent(t *testing.T, rows []AgentMetricRow, name string) AgentMetricRow {
	t.Helper()
	for _, r := range rows {
		if r.Agent == name {
			return r
		}
	}
	t.Fatalf("agent %q not found", name)
	return AgentMetricRow{}
}

func TestNewAggregator(t *testing.T) {
	t.Run("nil store panics", func(t *testing.T) {
		assert.Panics(t, func() { NewAggregator(nil, DefaultSettings(), zap.NewNop()) })
	})

	t.Run("nil logger is allowed", func(t *testing.T) {
		agg := NewAggregator(emptyStore(), DefaultSettings(), nil)
		assert.NotNil(t, agg.logger)
	})
}

func TestAggregateAgentSummary(t *testing.T) {
	agg := NewAggregator(emptyStore(), DefaultSettings(), zap.NewNop())

	t.Run("three tickets over two days with one deduplicated survey", func(t *testing.T) {
		in := Input{
			Tickets: []models.TicketRecord{
				ticket("T1", "Ana", "2024-04-08", 600),
				ticket("T2", "Ana", "2024-04-08", 1200),
				ticket("T3", "Ana", "2024-04-09", math.NaN()),
			},
			Surveys: []models.SurveyRecord{
				{TicketID: "T1", Agent: "Ana", Rating: "Bom", Positive: true},
			},
			HasSLAFirst:      true,
			HasSLAResolution: true,
		}

		res, err := agg.Aggregate(context.Background(), in)
		require.NoError(t, err)

		ana := findAgent(t, res.Agents, "Ana")
		assert.Equal(t, 3, ana.UniqueTickets)
		assert.Equal(t, 100.0, ana.CSATPercent)
		assert.Equal(t, 1, ana.CSATResponses)
		assert.Equal(t, 1.5, ana.DailyMean)
		assert.Equal(t, 900.0, ana.MeanServiceSeconds)
		assert.Equal(t, 33.0, ana.ResponseRate)
		assert.True(t, ana.MeetsServiceGoal)
		assert.True(t, ana.MeetsCSATGoal)
		assert.True(t, ana.MeetsResponseGoal)
	})

	t.Run("agent without surveys has zero csat and response rate", func(t *testing.T) {
		res, err := agg.Aggregate(context.Background(), Input{
			Tickets:          []models.TicketRecord{ticket("T1", "Bruno", "2024-04-08", math.NaN())},
			HasSLAFirst:      true,
			HasSLAResolution: true,
		})
		require.NoError(t, err)

		bruno := findAgent(t, res.Agents, "Bruno")
		assert.Equal(t, 0.0, bruno.CSATPercent)
		assert.Equal(t, 0.0, bruno.ResponseRate)
		assert.True(t, math.IsNaN(bruno.MeanServiceSeconds))
		assert.False(t, bruno.MeetsServiceGoal)
		assert.False(t, bruno.MeetsCSATGoal)
	})

	t.Run("undated rows count as tickets but not as days", func(t *testing.T) {
		res, err := agg.Aggregate(context.Background(), Input{
			Tickets: []models.TicketRecord{
				ticket("T1", "Caio", "2024-04-08", 60),
				ticket("T2", "Caio", "", 60),
				ticket("T1", "Caio", "2024-04-08", 60),
			},
			HasSLAFirst:      true,
			HasSLAResolution: true,
		})
		require.NoError(t, err)

		caio := findAgent(t, res.Agents, "Caio")
		assert.Equal(t, 2, caio.UniqueTickets)
		assert.Equal(t, 3, caio.TicketRows)
		assert.Equal(t, 1.0, caio.DailyMean)
	})

	t.Run("agents are sorted and names trimmed", func(t *testing.T) {
		res, err := agg.Aggregate(context.Background(), Input{
			Tickets: []models.TicketRecord{
				ticket("T1", "  Zeca ", "2024-04-08", 60),
				ticket("T2", "Ana", "2024-04-08", 60),
				ticket("T3", "zeca", "2024-04-08", 60),
				ticket("T4", "", "2024-04-08", 60),
			},
		})
		require.NoError(t, err)

		require.Len(t, res.Agents, 2)
		assert.Equal(t, "Ana", res.Agents[0].Agent)
		assert.Equal(t, "Zeca", res.Agents[1].Agent)
		assert.Equal(t, 2, res.Agents[1].UniqueTickets)
	})
}

func TestAggregateSLA(t *testing.T) {
	agg := NewAggregator(emptyStore(), DefaultSettings(), zap.NewNop())

	t.Run("computed from flags", func(t *testing.T) {
		t1 := ticket("T1", "Ana", "2024-04-08", 60)
		t1.SLAFirstResponse = onTime(true)
		t1.SLAResolution = onTime(false)
		t2 := ticket("T2", "Ana", "2024-04-08", 60)
		t2.SLAFirstResponse = onTime(true)
		t2.SLAResolution = onTime(true)
		t3 := ticket("T3", "Ana", "2024-04-08", 60)
		t3.SLAFirstResponse = onTime(false)

		res, err := agg.Aggregate(context.Background(), Input{
			Tickets:          []models.TicketRecord{t1, t2, t3},
			HasSLAFirst:      true,
			HasSLAResolution: true,
		})
		require.NoError(t, err)

		ana := findAgent(t, res.Agents, "Ana")
		assert.Equal(t, Percent{Value: 67}, ana.SLAFirstResponse)
		assert.Equal(t, Percent{Value: 50}, ana.SLAResolution)
		assert.Empty(t, res.Warnings)
	})

	t.Run("missing columns are flagged as estimated", func(t *testing.T) {
		res, err := agg.Aggregate(context.Background(), Input{
			Tickets: []models.TicketRecord{ticket("T1", "Ana", "2024-04-08", 60)},
		})
		require.NoError(t, err)

		ana := findAgent(t, res.Agents, "Ana")
		assert.Equal(t, Percent{Value: 90, Estimated: true}, ana.SLAFirstResponse)
		assert.Equal(t, Percent{Value: 93, Estimated: true}, ana.SLAResolution)
		assert.Len(t, res.Warnings, 2)
	})
}

func TestAggregateRosters(t *testing.T) {
	agg := NewAggregator(emptyStore(), DefaultSettings(), zap.NewNop())

	res, err := agg.Aggregate(context.Background(), Input{
		Tickets: []models.TicketRecord{
			ticket("T1", "Elô Souza", "2024-04-08", 60),
			ticket("T2", "Pedro", "2024-04-08", 60),
			ticket("T3", "Rosana", "2024-04-08", 60),
			ticket("T4", "Outsider", "2024-04-08", 60),
		},
		Surveys:          []models.SurveyRecord{{TicketID: "T2", Agent: "Pedro", Positive: true}},
		HasSLAFirst:      true,
		HasSLAResolution: true,
	})
	require.NoError(t, err)

	require.Len(t, res.ChartOne, 4)
	assert.Equal(t, []string{"Elô", "Kauan", "Pedro", "Mateus"}, agentNames(res.ChartOne))
	assert.Equal(t, 1, res.ChartOne[0].UniqueTickets)
	assert.Equal(t, 100.0, res.ChartOne[2].CSATPercent)

	kauan := res.ChartOne[1]
	assert.Equal(t, 0, kauan.UniqueTickets)
	assert.Equal(t, 0.0, kauan.CSATPercent)
	assert.Equal(t, 0.0, kauan.ResponseRate)
	assert.True(t, math.IsNaN(kauan.MeanServiceSeconds))

	require.Len(t, res.ChartTwo, 6)
	assert.Equal(t, 1, res.ChartTwo[1].UniqueTickets)
	assert.NotContains(t, append(agentNames(res.ChartOne), agentNames(res.ChartTwo)...), "Outsider")
}

func TestAggregateRosterSurveysWithoutTickets(t *testing.T) {
	agg := NewAggregator(emptyStore(), DefaultSettings(), zap.NewNop())

	res, err := agg.Aggregate(context.Background(), Input{
		Tickets: []models.TicketRecord{ticket("T1", "Pedro", "2024-04-08", 60)},
		Surveys: []models.SurveyRecord{
			{TicketID: "T7", Agent: "Kauan", Positive: true},
			{TicketID: "T8", Agent: "Kauan", Positive: false},
			{TicketID: "T9", Agent: "Mateus Lima", Positive: true},
		},
		HasSLAFirst:      true,
		HasSLAResolution: true,
	})
	require.NoError(t, err)

	kauan := res.ChartOne[1]
	assert.Equal(t, "Kauan", kauan.Agent)
	assert.Equal(t, 0, kauan.UniqueTickets)
	assert.Equal(t, 2, kauan.CSATResponses)
	assert.Equal(t, 50.0, kauan.CSATPercent)
	assert.False(t, kauan.MeetsCSATGoal)

	mateus := res.ChartOne[3]
	assert.Equal(t, 100.0, mateus.CSATPercent)
	assert.True(t, mateus.MeetsCSATGoal)

	elo := res.ChartOne[0]
	assert.Equal(t, 0, elo.CSATResponses)
	assert.Equal(t, 0.0, elo.CSATPercent)
}

func agentNames(rows []AgentMetricRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Agent)
	}
	return out
}

func TestAggregateDailySeries(t *testing.T) {
	var staged []models.TicketRecord
	store := &mocks.MockDailyStore{
		StageFunc: func(ctx context.Context, records []models.TicketRecord) error {
			staged = records
			return nil
		},
		GetServiceTimesByDayFunc: func(ctx context.Context) ([]models.DailyServiceTimes, error) {
			return []models.DailyServiceTimes{
				{Day: "2024-04-08", Tickets: 2, ServiceMinutes: sql.NullFloat64{Float64: 12.3456, Valid: true}},
				{Day: "2024-04-09", Tickets: 1},
			}, nil
		},
		GetSLAByDayFunc: func(ctx context.Context) ([]models.DailySLA, error) {
			return []models.DailySLA{
				{Day: "2024-04-08", Tickets: 2, FirstResponsePercent: sql.NullFloat64{Float64: 66.6, Valid: true}},
			}, nil
		},
	}
	agg := NewAggregator(store, DefaultSettings(), zap.NewNop())

	in := Input{
		Tickets: []models.TicketRecord{
			ticket("T1", "Ana", "2024-04-08", 60),
			ticket("T2", "Ana", "2024-04-08", 60),
			ticket("T3", "Ana", "2024-04-09", 60),
		},
		Surveys: []models.SurveyRecord{
			{TicketID: "T1", Positive: true},
			{TicketID: "T2", Positive: false},
			{TicketID: "T9", Positive: true},
		},
		HasSLAFirst: true,
	}

	res, err := agg.Aggregate(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, staged, 3)

	require.Len(t, res.ServiceTimes, 2)
	assert.Equal(t, 12.35, *res.ServiceTimes[0].ServiceMinutes)
	assert.Nil(t, res.ServiceTimes[0].WaitMinutes)
	assert.Equal(t, 50.0, *res.ServiceTimes[0].CSATPercent)
	assert.Nil(t, res.ServiceTimes[1].CSATPercent)

	require.Len(t, res.SLA, 1)
	assert.Equal(t, &Percent{Value: 67}, res.SLA[0].FirstResponse)
	assert.Equal(t, &Percent{Value: 93, Estimated: true}, res.SLA[0].Resolution)
}

func TestAggregateStoreFailure(t *testing.T) {
	store := &mocks.MockDailyStore{
		StageFunc: func(ctx context.Context, records []models.TicketRecord) error {
			return errors.New("disk full")
		},
	}
	agg := NewAggregator(store, DefaultSettings(), zap.NewNop())

	_, err := agg.Aggregate(context.Background(), Input{})

	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.Contains(t, err.Error(), "disk full")
}
