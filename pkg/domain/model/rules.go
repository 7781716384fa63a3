package model

import (
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// RoutingConfig is the immutable rule table of the routing engine.
// Rules are evaluated in precedence order: category overrides always
// win, then the hostel rule, then the utility rule, then the default.
type RoutingConfig struct {
	// CategoryOverrides maps a category to an authority name
	// regardless of location. Matches are HIGH confidence.
	CategoryOverrides map[string]string `yaml:"category_overrides"`

	// HostelCategories are routed to HostelAuthority when the report
	// location is a hostel. Matches are HIGH confidence.
	HostelCategories []string `yaml:"hostel_categories"`
	HostelAuthority  string   `yaml:"hostel_authority"`

	// UtilityCategories are routed to UtilityAuthority at any other
	// location kind. Matches are MEDIUM confidence.
	UtilityCategories []string `yaml:"utility_categories"`
	UtilityAuthority  string   `yaml:"utility_authority"`

	// DefaultAuthority receives everything no rule matched.
	// MEDIUM confidence.
	DefaultAuthority string `yaml:"default_authority"`
}

// Well-known authority names used by the default rule table
const (
	AuthoritySecurity       = "Security"
	AuthorityAcademicAffair = "Academic Affairs"
	AuthorityAdminOffice    = "Administrative Office"
	AuthorityProvost        = "Provost"
)

// DefaultRoutingConfig returns the built-in rule table
func DefaultRoutingConfig() *RoutingConfig {
	return &RoutingConfig{
		CategoryOverrides: map[string]string{
			CategorySafety.String():         AuthoritySecurity,
			CategoryAcademics.String():      AuthorityAcademicAffair,
			CategorySanitation.String():     AuthorityAdminOffice,
			CategoryWifi.String():           AuthorityAdminOffice,
			CategoryInfrastructure.String(): AuthorityAdminOffice,
		},
		HostelCategories: []string{
			CategoryWater.String(),
			CategoryElectricity.String(),
			CategoryHostel.String(),
			CategoryFood.String(),
		},
		HostelAuthority: AuthorityProvost,
		UtilityCategories: []string{
			CategoryWater.String(),
			CategoryElectricity.String(),
		},
		UtilityAuthority: AuthorityAdminOffice,
		DefaultAuthority: AuthorityAdminOffice,
	}
}

// Validate validates the routing configuration
func (c *RoutingConfig) Validate() error {
	if c.DefaultAuthority == "" {
		return goerr.New("default authority is required")
	}
	if len(c.HostelCategories) > 0 && c.HostelAuthority == "" {
		return goerr.New("hostel authority is required when hostel categories are set")
	}
	if len(c.UtilityCategories) > 0 && c.UtilityAuthority == "" {
		return goerr.New("utility authority is required when utility categories are set")
	}
	for category, authority := range c.CategoryOverrides {
		if authority == "" {
			return goerr.New("category override maps to empty authority",
				goerr.V("category", category))
		}
	}
	return nil
}

// ScoringConfig holds the fixed weights and parameters of the priority
// formula. The four weights sum to 1.0.
type ScoringConfig struct {
	UrgencyWeight       float64 `yaml:"urgency_weight"`
	ImpactWeight        float64 `yaml:"impact_weight"`
	FrequencyWeight     float64 `yaml:"frequency_weight"`
	EnvironmentalWeight float64 `yaml:"environmental_weight"`

	// Impact base values by scope plus the per-extra-report boost.
	ImpactBaseSingle float64 `yaml:"impact_base_single"`
	ImpactBaseMulti  float64 `yaml:"impact_base_multi"`
	ImpactBoost      float64 `yaml:"impact_boost"`

	// FrequencySaturation is the in-window report count at which the
	// frequency component reaches its cap.
	FrequencySaturation float64 `yaml:"frequency_saturation"`

	// FrequencyWindow is the trailing interval reports are counted in.
	FrequencyWindow time.Duration `yaml:"frequency_window"`
}

// DefaultScoringConfig returns the documented scoring parameters
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		UrgencyWeight:       0.35,
		ImpactWeight:        0.30,
		FrequencyWeight:     0.25,
		EnvironmentalWeight: 0.10,
		ImpactBaseSingle:    0.4,
		ImpactBaseMulti:     0.7,
		ImpactBoost:         0.03,
		FrequencySaturation: 10,
		FrequencyWindow:     30 * time.Minute,
	}
}

// Validate validates the scoring configuration
func (c *ScoringConfig) Validate() error {
	sum := c.UrgencyWeight + c.ImpactWeight + c.FrequencyWeight + c.EnvironmentalWeight
	if sum < 0.999 || sum > 1.001 {
		return goerr.New("scoring weights must sum to 1.0", goerr.V("sum", sum))
	}
	if c.FrequencySaturation <= 0 {
		return goerr.New("frequency saturation must be positive",
			goerr.V("saturation", c.FrequencySaturation))
	}
	if c.FrequencyWindow <= 0 {
		return goerr.New("frequency window must be positive",
			goerr.V("window", c.FrequencyWindow))
	}
	return nil
}

// AuthorityNames returns the distinct authority names the rule table
// can route to
func (c *RoutingConfig) AuthorityNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, name := range c.CategoryOverrides {
		add(name)
	}
	add(c.HostelAuthority)
	add(c.UtilityAuthority)
	add(c.DefaultAuthority)

	return names
}

// contains reports whether the string slice holds the category ID
func contains(categories []string, id types.CategoryID) bool {
	for _, c := range categories {
		if c == id.String() {
			return true
		}
	}
	return false
}

// MatchesHostelRule checks the hostel rule precondition
func (c *RoutingConfig) MatchesHostelRule(category types.CategoryID, kind types.LocationKind) bool {
	return kind == types.LocationKindHostel && contains(c.HostelCategories, category)
}

// MatchesUtilityRule checks the utility rule precondition
func (c *RoutingConfig) MatchesUtilityRule(category types.CategoryID) bool {
	return contains(c.UtilityCategories, category)
}
