package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/campus-pulse/pulse/pkg/cli/config"
	"github.com/campus-pulse/pulse/pkg/domain/types"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRulesLoad_NoPathGivesDefaults(t *testing.T) {
	rules := &config.Rules{}

	loaded, err := rules.Load()
	gt.NoError(t, err)
	gt.Equal(t, loaded.Routing.DefaultAuthority, "Administrative Office")
	gt.Equal(t, loaded.Scoring.UrgencyWeight, 0.35)
	gt.Equal(t, loaded.Scoring.FrequencyWindow, 30*time.Minute)
	gt.Equal(t, len(loaded.Locations), 0)
}

func TestRulesLoad_FullFile(t *testing.T) {
	path := writeRules(t, `
routing:
  category_overrides:
    safety: Campus Police
  hostel_categories: [water, electricity]
  hostel_authority: Warden
  utility_categories: [water]
  utility_authority: Estate Office
  default_authority: Estate Office
scoring:
  urgency_weight: 0.4
  impact_weight: 0.3
  frequency_weight: 0.2
  environmental_weight: 0.1
  impact_base_single: 0.4
  impact_base_multi: 0.7
  impact_boost: 0.03
  frequency_saturation: 10
  frequency_window: 1h
locations:
  - id: hostel-a
    name: Hostel A
    kind: hostel
  - id: main-library
    name: Main Library
    kind: library
`)

	loaded, err := (&config.Rules{Path: path}).Load()
	gt.NoError(t, err)
	gt.Equal(t, loaded.Routing.CategoryOverrides["safety"], "Campus Police")
	gt.Equal(t, loaded.Routing.HostelAuthority, "Warden")
	gt.Equal(t, loaded.Scoring.UrgencyWeight, 0.4)
	gt.Equal(t, loaded.Scoring.FrequencyWindow, time.Hour)
	gt.Equal(t, len(loaded.Locations), 2)
	gt.Equal(t, loaded.Locations[0].ID, types.LocationID("hostel-a"))
	gt.Equal(t, loaded.Locations[1].Kind, types.LocationKindLibrary)
}

func TestRulesLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeRules(t, `
locations:
  - id: hostel-a
    name: Hostel A
    kind: hostel
`)

	loaded, err := (&config.Rules{Path: path}).Load()
	gt.NoError(t, err)
	gt.Equal(t, loaded.Routing.DefaultAuthority, "Administrative Office")
	gt.Equal(t, loaded.Scoring.ImpactBaseMulti, 0.7)
	gt.Equal(t, len(loaded.Locations), 1)
}

func TestRulesLoad_RejectsBadWeights(t *testing.T) {
	path := writeRules(t, `
scoring:
  urgency_weight: 0.9
  impact_weight: 0.9
  frequency_weight: 0.1
  environmental_weight: 0.1
  impact_base_single: 0.4
  impact_base_multi: 0.7
  impact_boost: 0.03
  frequency_saturation: 10
`)

	_, err := (&config.Rules{Path: path}).Load()
	gt.Error(t, err)
}

func TestRulesLoad_RejectsRoutingWithoutDefault(t *testing.T) {
	path := writeRules(t, `
routing:
  category_overrides:
    safety: Campus Police
`)

	_, err := (&config.Rules{Path: path}).Load()
	gt.Error(t, err)
}

func TestRulesLoad_RejectsIncompleteLocation(t *testing.T) {
	path := writeRules(t, `
locations:
  - id: hostel-a
`)

	_, err := (&config.Rules{Path: path}).Load()
	gt.Error(t, err)
}

func TestRulesLoad_MissingFile(t *testing.T) {
	_, err := (&config.Rules{Path: "/nonexistent/rules.yml"}).Load()
	gt.Error(t, err)
}
