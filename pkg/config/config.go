package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"monitor-reliability/pkg/calculator"
	"monitor-reliability/pkg/models"
)

// DefaultTable is the alert log table queried when a DSN is configured.
const DefaultTable = "AlertLog"

//go:embed default.yaml
var defaultYAML []byte

// File mirrors the YAML document. Dates stay strings until validated.
type File struct {
	Title          string     `yaml:"title" validate:"required"`
	Monitor        string     `yaml:"monitor" validate:"required"`
	StartDate      string     `yaml:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string     `yaml:"end_date" validate:"required,datetime=2006-01-02"`
	HitDates       []string   `yaml:"hit_dates" validate:"dive,datetime=2006-01-02"`
	Gap            *GapFile   `yaml:"gap"`
	LongestGapDays int        `yaml:"longest_gap_days" validate:"gte=0"`
	Output         string     `yaml:"output" validate:"required"`
	MetricsOut     string     `yaml:"metrics_out"`
	Source         SourceFile `yaml:"source"`
}

// GapFile is the optional highlighted period.
type GapFile struct {
	Start string `yaml:"start" validate:"required,datetime=2006-01-02"`
	End   string `yaml:"end" validate:"required,datetime=2006-01-02"`
	Label string `yaml:"label" validate:"required"`
}

// SourceFile selects the database hit source. The DSN is never read from
// YAML; it comes from the command line or the environment.
type SourceFile struct {
	Table   string `yaml:"table" validate:"omitempty,max=64"`
	Monitor string `yaml:"monitor"`
}

// Default returns the embedded configuration.
func Default() (*models.Config, error) {
	return Parse(defaultYAML)
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, validates and resolves a YAML document.
func Parse(data []byte) (*models.Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := validator.New().Struct(&f); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return resolve(&f)
}

func resolve(f *File) (*models.Config, error) {
	start, err := calculator.ParseDate(f.StartDate)
	if err != nil {
		return nil, fmt.Errorf("config: start_date: %w", err)
	}
	end, err := calculator.ParseDate(f.EndDate)
	if err != nil {
		return nil, fmt.Errorf("config: end_date: %w", err)
	}

	hits := make([]time.Time, 0, len(f.HitDates))
	for i, s := range f.HitDates {
		d, err := calculator.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("config: hit_dates[%d]: %w", i, err)
		}
		hits = append(hits, d)
	}

	cfg := &models.Config{
		Title:          f.Title,
		Monitor:        f.Monitor,
		Start:          start,
		End:            end,
		HitDates:       hits,
		LongestGapDays: f.LongestGapDays,
		Output:         f.Output,
		MetricsOut:     f.MetricsOut,
		Source: models.Source{
			Table:   f.Source.Table,
			Monitor: f.Source.Monitor,
		},
	}
	if cfg.Source.Table == "" {
		cfg.Source.Table = DefaultTable
	}
	if cfg.Source.Monitor == "" {
		cfg.Source.Monitor = f.Monitor
	}

	if f.Gap != nil {
		gs, err := calculator.ParseDate(f.Gap.Start)
		if err != nil {
			return nil, fmt.Errorf("config: gap.start: %w", err)
		}
		ge, err := calculator.ParseDate(f.Gap.End)
		if err != nil {
			return nil, fmt.Errorf("config: gap.end: %w", err)
		}
		if ge.Before(gs) {
			return nil, fmt.Errorf("config: gap: %w", &calculator.InvalidRangeError{Start: gs, End: ge})
		}
		cfg.Gap = &models.GapAnnotation{Start: gs, End: ge, Label: f.Gap.Label}
	}
	return cfg, nil
}
