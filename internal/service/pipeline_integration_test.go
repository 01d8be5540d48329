package service_test

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/godilite/eloca-metrics/internal/metrics"
	"github.com/godilite/eloca-metrics/internal/report"
	"github.com/godilite/eloca-metrics/internal/repository"
	"github.com/godilite/eloca-metrics/internal/service"
	"github.com/godilite/eloca-metrics/internal/service/mocks"
	"github.com/godilite/eloca-metrics/internal/sheet"
	"github.com/godilite/eloca-metrics/internal/source"
	dbbuilder "github.com/godilite/eloca-metrics/pkg/database"
)

func setupPipeline(t *testing.T, operational, survey string) *service.Pipeline {
	t.Helper()

	db, err := dbbuilder.New(
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(":memory:"),
		dbbuilder.WithMaxOpenConns(1),
		dbbuilder.WithConnMaxLifetime(0),
		dbbuilder.WithConnMaxIdleTime(0),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zaptest.NewLogger(t)
	payloads := map[string]string{"operational": operational, "csat": survey}
	fetcher := &mocks.MockFetcher{
		FetchFunc: func(ctx context.Context, src source.Source) ([]byte, error) {
			return []byte(payloads[src.Name]), nil
		},
	}
	agg := metrics.NewAggregator(repository.NewDailyMetricsRepository(db), metrics.DefaultSettings(), logger)

	return service.NewPipeline(fetcher, sheet.NewLoader(logger), agg, service.Options{
		Operational: source.Source{Name: "operational", File: "operational.csv"},
		Survey:      source.Source{Name: "csat", File: "csat.csv"},
	}, logger)
}

func TestPipelineEndToEnd(t *testing.T) {
	operational := "Nº Chamado,Analista,Data de Criação,Tempo de Atendimento\n" +
		"T1,Ana,08/04/2024 09:00,00:10:00\n" +
		"T2,Ana,08/04/2024 10:00,00:20:00\n" +
		"T3,Ana,09/04/2024 11:00,00:30:00\n"
	survey := "Código do Chamado,Avaliação\n" +
		"T1,Bom\n" +
		"T1,Regular\n"

	p := setupPipeline(t, operational, survey)

	bag, err := p.Run(context.Background())
	require.NoError(t, err)

	agents, ok := bag.Table(report.TableAgentGoals)
	require.True(t, ok)
	require.Len(t, agents.Rows, 1)
	ana := agents.Rows[0]
	assert.Equal(t, "Ana", ana["Analista"])
	assert.Equal(t, 3, ana["Total Atendimentos"])
	assert.Equal(t, 100.0, ana["CSAT (%)"])
	assert.Equal(t, 1.5, ana["Atendimentos/Dia"])
	assert.Equal(t, 33.0, ana["% Resposta Pesquisa"])
	assert.Equal(t, "00:20:00", ana["TMA"])
	assert.True(t, agents.Estimated, "SLA columns are absent so SLA values are estimated")

	area, _ := bag.Table(report.TableAreaOne)
	require.Len(t, area.Rows, 2)
	assert.Equal(t, "2024-04-08", area.Rows[0]["Data"])
	assert.Equal(t, 2, area.Rows[0]["Chamados"])
	assert.Equal(t, 15.0, area.Rows[0]["TMA (min)"])
	assert.Equal(t, 100.0, area.Rows[0]["CSAT (%)"])
	assert.Nil(t, area.Rows[1]["CSAT (%)"])

	csatTbl, _ := bag.Table(report.TableCSAT)
	require.Len(t, csatTbl.Rows, 1)
	assert.Equal(t, "Bom", csatTbl.Rows[0]["Avaliação"])

	chart, _ := bag.Table(report.TableChartOne)
	assert.Len(t, chart.Rows, len(metrics.DefaultSettings().ChartOneRoster))
}

func TestPipelineEndToEndReruns(t *testing.T) {
	operational := "Nº Chamado,Analista,Data de Criação\nT1,Ana,08/04/2024\n"
	p := setupPipeline(t, operational, "")

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	second, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	area, _ := second.Table(report.TableAreaOne)
	require.Len(t, area.Rows, 1)
	assert.Equal(t, 1, area.Rows[0]["Chamados"])
}
