package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/godilite/eloca-metrics/internal/metrics"
)

// GoalsFile is the optional YAML override for goals, SLA defaults and
// chart rosters. Zero values keep the built-in defaults.
type GoalsFile struct {
	Goals struct {
		ServiceMinutes      float64 `yaml:"service_minutes"`
		CSATPercent         float64 `yaml:"csat_percent"`
		ResponseRatePercent float64 `yaml:"response_rate_percent"`
	} `yaml:"goals"`
	SLADefaults struct {
		FirstResponse float64 `yaml:"first_response"`
		Resolution    float64 `yaml:"resolution"`
	} `yaml:"sla_defaults"`
	Rosters struct {
		ChartOne []string `yaml:"chart_one"`
		ChartTwo []string `yaml:"chart_two"`
	} `yaml:"rosters"`
}

// LoadGoalsFile reads a goals file. An empty path yields an empty override.
func LoadGoalsFile(path string) (*GoalsFile, error) {
	if path == "" {
		return &GoalsFile{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read goals file: %w", err)
	}

	var g GoalsFile
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse goals file %s: %w", path, err)
	}
	return &g, nil
}

// Apply overlays the non-zero fields of g onto base.
func (g *GoalsFile) Apply(base metrics.Settings) metrics.Settings {
	if g == nil {
		return base
	}
	if v := g.Goals.ServiceMinutes; v > 0 {
		base.Goals.ServiceMinutes = v
	}
	if v := g.Goals.CSATPercent; v > 0 {
		base.Goals.CSATPercent = v
	}
	if v := g.Goals.ResponseRatePercent; v > 0 {
		base.Goals.ResponseRatePercent = v
	}
	if v := g.SLADefaults.FirstResponse; v > 0 {
		base.SLAFirstDefault = v
	}
	if v := g.SLADefaults.Resolution; v > 0 {
		base.SLAResolutionDefault = v
	}
	if len(g.Rosters.ChartOne) > 0 {
		base.ChartOneRoster = g.Rosters.ChartOne
	}
	if len(g.Rosters.ChartTwo) > 0 {
		base.ChartTwoRoster = g.Rosters.ChartTwo
	}
	return base
}
