package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Rules holds the path to the optional rules file. The file can
// override the routing rule table and scoring parameters and declare
// the location directory.
type Rules struct {
	Path string
}

// Flags returns CLI flags for Rules configuration
func (r *Rules) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "rules",
			Usage:       "Path to YAML rules file (routing, scoring, locations)",
			Category:    "Rules",
			Sources:     cli.EnvVars("PULSE_RULES"),
			Destination: &r.Path,
		},
	}
}

// rulesFile is the YAML layout of the rules file
type rulesFile struct {
	Routing   *model.RoutingConfig `yaml:"routing"`
	Scoring   *scoringSection      `yaml:"scoring"`
	Locations []locationEntry      `yaml:"locations"`
}

// scoringSection mirrors model.ScoringConfig with the window as a
// duration string ("30m")
type scoringSection struct {
	UrgencyWeight       float64 `yaml:"urgency_weight"`
	ImpactWeight        float64 `yaml:"impact_weight"`
	FrequencyWeight     float64 `yaml:"frequency_weight"`
	EnvironmentalWeight float64 `yaml:"environmental_weight"`
	ImpactBaseSingle    float64 `yaml:"impact_base_single"`
	ImpactBaseMulti     float64 `yaml:"impact_base_multi"`
	ImpactBoost         float64 `yaml:"impact_boost"`
	FrequencySaturation float64 `yaml:"frequency_saturation"`
	FrequencyWindow     string  `yaml:"frequency_window"`
}

type locationEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

// Loaded is the parsed content of the rules file with defaults filled
// in for absent sections
type Loaded struct {
	Routing   *model.RoutingConfig
	Scoring   *model.ScoringConfig
	Locations []*model.Location
}

// Load reads and validates the rules file. Without a path the built-in
// rule tables apply and the location directory starts empty.
func (r *Rules) Load() (*Loaded, error) {
	loaded := &Loaded{
		Routing: model.DefaultRoutingConfig(),
		Scoring: model.DefaultScoringConfig(),
	}
	if r.Path == "" {
		return loaded, nil
	}

	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read rules file", goerr.V("path", r.Path))
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse rules file", goerr.V("path", r.Path))
	}

	if file.Routing != nil {
		if err := file.Routing.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid routing rules", goerr.V("path", r.Path))
		}
		loaded.Routing = file.Routing
	}

	if file.Scoring != nil {
		scoring, err := file.Scoring.toConfig()
		if err != nil {
			return nil, goerr.Wrap(err, "invalid scoring rules", goerr.V("path", r.Path))
		}
		loaded.Scoring = scoring
	}

	for _, entry := range file.Locations {
		location := &model.Location{
			ID:   types.LocationID(entry.ID),
			Name: entry.Name,
			Kind: types.LocationKind(entry.Kind),
		}
		if err := location.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid location entry", goerr.V("path", r.Path))
		}
		loaded.Locations = append(loaded.Locations, location)
	}

	return loaded, nil
}

func (s *scoringSection) toConfig() (*model.ScoringConfig, error) {
	window := 30 * time.Minute
	if s.FrequencyWindow != "" {
		parsed, err := time.ParseDuration(s.FrequencyWindow)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid frequency window", goerr.V("window", s.FrequencyWindow))
		}
		window = parsed
	}

	config := &model.ScoringConfig{
		UrgencyWeight:       s.UrgencyWeight,
		ImpactWeight:        s.ImpactWeight,
		FrequencyWeight:     s.FrequencyWeight,
		EnvironmentalWeight: s.EnvironmentalWeight,
		ImpactBaseSingle:    s.ImpactBaseSingle,
		ImpactBaseMulti:     s.ImpactBaseMulti,
		ImpactBoost:         s.ImpactBoost,
		FrequencySaturation: s.FrequencySaturation,
		FrequencyWindow:     window,
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LogValue returns structured log value
func (r Rules) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", r.Path),
	)
}
