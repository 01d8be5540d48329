package columns

import "github.com/godilite/eloca-metrics/internal/apperr"

// Field is a logical column together with the header spellings seen across
// report versions.
type Field struct {
	Name    string
	Aliases []string
}

var (
	Ticket = Field{Name: "ticket", Aliases: []string{
		"Código do Chamado", "Nº Chamado", "Número do Chamado",
	}}
	Agent = Field{Name: "agent", Aliases: []string{
		"Analista", "Nome Completo do Operador", "Operador",
	}}
	OpenedAt = Field{Name: "opened_at", Aliases: []string{
		"Data de Abertura", "Data de Criação",
	}}
	ServiceTime = Field{Name: "service_time", Aliases: []string{
		"Tempo de Atendimento",
	}}
	WaitTime = Field{Name: "wait_time", Aliases: []string{
		"Tempo de Espera",
	}}
	ResolutionTime = Field{Name: "resolution_time", Aliases: []string{
		"Tempo de Resolução",
	}}
	SLAFirstResponse = Field{Name: "sla_first_response", Aliases: []string{
		"SLA 1º Atendimento", "SLA Primeiro Atendimento",
	}}
	SLAResolution = Field{Name: "sla_resolution", Aliases: []string{
		"SLA Resolução",
	}}
	Rating = Field{Name: "rating", Aliases: []string{
		"Atendimento - CES e CSAT - [ANALISTA] Como você avalia a qualidade do atendimento prestado pelo analista neste chamado?",
		"Analista Qualidade",
		"Analista Atendimento",
		"Avaliação",
	}}
)

// Requirement marks a field as required or optional within a Schema.
type Requirement struct {
	Field    Field
	Required bool
}

// Schema is the ordered set of fields a source is expected to carry.
// Fields bind in declaration order and a header is claimed at most once.
type Schema struct {
	Source string
	Fields []Requirement
}

// OperationalSchema describes the ticket report.
func OperationalSchema(source string) Schema {
	return Schema{Source: source, Fields: []Requirement{
		{Field: Ticket, Required: true},
		{Field: Agent, Required: true},
		{Field: OpenedAt},
		{Field: SLAFirstResponse},
		{Field: SLAResolution},
		{Field: ServiceTime},
		{Field: WaitTime},
		{Field: ResolutionTime},
	}}
}

// SurveySchema describes the satisfaction survey export. The rating binds
// before the agent so the long "[ANALISTA] ..." question is never taken as
// the agent column.
func SurveySchema(source string) Schema {
	return Schema{Source: source, Fields: []Requirement{
		{Field: Ticket, Required: true},
		{Field: Rating, Required: true},
		{Field: Agent},
	}}
}

// Binding holds the resolved header for each field of a schema.
type Binding struct {
	Source  string
	matches map[string]Match
}

// Lookup returns the match for a field, NotFound when it was not bound.
func (b Binding) Lookup(f Field) Match {
	if m, ok := b.matches[f.Name]; ok {
		return m
	}
	return NotFound()
}

// Has reports whether the field resolved to a header.
func (b Binding) Has(f Field) bool {
	return b.Lookup(f).Found
}

// Bind resolves every field of the schema against headers. Missing fields
// are reported as SchemaErrors; callers decide which are fatal.
func (s Schema) Bind(headers []string) (Binding, []*apperr.SchemaError) {
	binding := Binding{Source: s.Source, matches: make(map[string]Match, len(s.Fields))}
	claimed := make(map[int]struct{}, len(s.Fields))
	var missing []*apperr.SchemaError

	for _, req := range s.Fields {
		m := resolveAny(req.Field.Aliases, headers, claimed)
		if !m.Found {
			missing = append(missing, &apperr.SchemaError{
				Source:   s.Source,
				Column:   req.Field.Aliases[0],
				Required: req.Required,
			})
			continue
		}
		claimed[m.Index] = struct{}{}
		binding.matches[req.Field.Name] = m
	}

	return binding, missing
}

// RequiredMissing filters errs down to the required columns.
func RequiredMissing(errs []*apperr.SchemaError) []*apperr.SchemaError {
	var out []*apperr.SchemaError
	for _, e := range errs {
		if e.Required {
			out = append(out, e)
		}
	}
	return out
}
