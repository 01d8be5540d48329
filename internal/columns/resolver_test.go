package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ratingQuestion = "Atendimento - CES e CSAT - [ANALISTA] Como você avalia a qualidade do atendimento prestado pelo analista neste chamado?"

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		logical   string
		headers   []string
		wantFound bool
		wantIndex int
		wantFuzzy bool
	}{
		{
			name:      "exact match ignores case",
			logical:   "Código do Chamado",
			headers:   []string{"código do chamado", "Analista"},
			wantFound: true,
			wantIndex: 0,
		},
		{
			name:      "exact match ignores surrounding spaces",
			logical:   "Analista",
			headers:   []string{"Código do Chamado", "  Analista "},
			wantFound: true,
			wantIndex: 1,
		},
		{
			name:      "abbreviated keyword is not found",
			logical:   "Código do Chamado",
			headers:   []string{"Cod Chamado Numero"},
			wantFound: false,
			wantIndex: -1,
		},
		{
			name:      "all keywords present gives fuzzy match",
			logical:   "Código do Chamado",
			headers:   []string{"Numero", "Codigo Chamado Interno"},
			wantFound: true,
			wantIndex: 1,
			wantFuzzy: true,
		},
		{
			name:      "first header in order wins",
			logical:   "Código do Chamado",
			headers:   []string{"Chamado Código Pai", "Código do Chamado Filho"},
			wantFound: true,
			wantIndex: 0,
			wantFuzzy: true,
		},
		{
			name:      "exact beats earlier fuzzy candidate",
			logical:   "SLA Resolução",
			headers:   []string{"SLA Resolução Anterior", "SLA Resolução"},
			wantFound: true,
			wantIndex: 1,
		},
		{
			name:      "empty headers",
			logical:   "Analista",
			headers:   nil,
			wantFound: false,
			wantIndex: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Resolve(tt.logical, tt.headers)
			assert.Equal(t, tt.wantFound, m.Found)
			assert.Equal(t, tt.wantIndex, m.Index)
			assert.Equal(t, tt.wantFuzzy, m.Fuzzy)
			if tt.wantFound {
				assert.Equal(t, tt.headers[tt.wantIndex], m.Header)
			}
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	headers := []string{"Chamado Código A", "Chamado Código B", "Código do Chamado C"}
	first := Resolve("Código do Chamado", headers)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve("Código do Chamado", headers))
	}
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"codigo", "chamado"}, Keywords("código do chamado"))
	assert.Equal(t, []string{"sla", "1º", "atendimento"}, Keywords("SLA 1º Atendimento"))
	assert.Empty(t, Keywords(" de do "))
}

func TestResolveAny(t *testing.T) {
	headers := []string{"Nome Completo do Operador Responsável", "Nº Chamado", "Data de Criação"}

	m := ResolveAny(Ticket.Aliases, headers)
	require.True(t, m.Found)
	assert.Equal(t, 1, m.Index)
	assert.False(t, m.Fuzzy)

	m = ResolveAny(Agent.Aliases, headers)
	require.True(t, m.Found)
	assert.Equal(t, 0, m.Index)
	assert.True(t, m.Fuzzy)

	m = ResolveAny(OpenedAt.Aliases, headers)
	require.True(t, m.Found)
	assert.Equal(t, "Data de Criação", m.Header)
}

func TestSchemaBind(t *testing.T) {
	t.Run("survey rating is not claimed as agent", func(t *testing.T) {
		headers := []string{"Código do Chamado", ratingQuestion, "Data da Resposta"}

		binding, missing := SurveySchema("csat").Bind(headers)

		assert.Equal(t, 0, binding.Lookup(Ticket).Index)
		assert.Equal(t, 1, binding.Lookup(Rating).Index)
		assert.False(t, binding.Has(Agent))
		require.Len(t, missing, 1)
		assert.False(t, missing[0].Required)
		assert.Empty(t, RequiredMissing(missing))
	})

	t.Run("rating found by keywords after header drift", func(t *testing.T) {
		headers := []string{"[ANALISTA] Qual a qualidade do suporte?", "Código do Chamado", "Analista"}

		binding, missing := SurveySchema("csat").Bind(headers)

		assert.Empty(t, missing)
		assert.Equal(t, 0, binding.Lookup(Rating).Index)
		assert.Equal(t, 2, binding.Lookup(Agent).Index)
	})

	t.Run("missing required column", func(t *testing.T) {
		binding, missing := OperationalSchema("operational").Bind([]string{"Analista", "Data de Abertura"})

		required := RequiredMissing(missing)
		require.Len(t, required, 1)
		assert.Equal(t, "Código do Chamado", required[0].Column)
		assert.Equal(t, "operational", required[0].Source)
		assert.True(t, binding.Has(Agent))
		assert.Equal(t, -1, binding.Lookup(Ticket).Index)
	})
}
