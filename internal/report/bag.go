package report

import (
	"fmt"
	"time"
)

const (
	TableAgentGoals   = "Metas Individuais"
	TableAreaOne      = "Resultados área 1"
	TableAreaTwo      = "Resultados área 2"
	TableChartOne     = "Grafico-Individual_1"
	TableChartTwo     = "Grafico-Individual_2"
	TableCSAT         = "CSAT"
	TableCSATMetrics  = "CSAT Métricas"
	TableCSATReport   = "CSAT Relatório"
	TableCSATAudit    = "CSAT Auditoria"
	defaultTableLabel = "table"
)

// TableNames is every table a Bag carries, in display order.
var TableNames = []string{
	TableAgentGoals,
	TableAreaOne,
	TableAreaTwo,
	TableChartOne,
	TableChartTwo,
	TableCSAT,
	TableCSATMetrics,
	TableCSATReport,
	TableCSATAudit,
}

// Table is a named, display-ready result. Rows map column names to plain
// JSON values; nil is an explicit null.
type Table struct {
	Name      string           `json:"name"`
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	Estimated bool             `json:"estimated,omitempty"`
	Warnings  []string         `json:"warnings,omitempty"`
}

// NewTable returns an empty table with its columns set.
func NewTable(name string, columns ...string) Table {
	return Table{Name: name, Columns: columns, Rows: []map[string]any{}}
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Warning is a recoverable problem recorded during a run.
type Warning struct {
	Kind    string `json:"kind"`
	Source  string `json:"source,omitempty"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// SourceStatus tells the reader whether a source contributed data.
type SourceStatus struct {
	Name   string `json:"name"`
	Rows   int    `json:"rows"`
	Failed bool   `json:"failed"`
}

// Bag is the output of one pipeline run.
type Bag struct {
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Tables      map[string]Table `json:"tables"`
	Sources     []SourceStatus   `json:"sources"`
	Warnings    []Warning        `json:"warnings,omitempty"`
}

// NewBag creates a bag where every known table is present and empty.
func NewBag(runID string, at time.Time) *Bag {
	b := &Bag{RunID: runID, GeneratedAt: at, Tables: make(map[string]Table, len(TableNames))}
	for _, name := range TableNames {
		b.Tables[name] = NewTable(name)
	}
	return b
}

// Put stores t under its name.
func (b *Bag) Put(t Table) {
	if t.Name == "" {
		t.Name = defaultTableLabel
	}
	if t.Rows == nil {
		t.Rows = []map[string]any{}
	}
	b.Tables[t.Name] = t
}

// Table looks a table up by name.
func (b *Bag) Table(name string) (Table, bool) {
	t, ok := b.Tables[name]
	return t, ok
}

// Warn records a warning.
func (b *Bag) Warn(w Warning) {
	b.Warnings = append(b.Warnings, w)
}

// Validate checks that every expected table is present.
func (b *Bag) Validate(expected []string) error {
	var missing []string
	for _, name := range expected {
		if _, ok := b.Tables[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("table bag missing %v", missing)
	}
	return nil
}
