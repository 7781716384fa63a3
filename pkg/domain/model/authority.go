package model

import (
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Authority is a responsible party that issue groups are routed to.
// The directory of authorities is read-only for the triage core.
type Authority struct {
	ID          types.AuthorityID
	Name        string
	Description string
}

// Validate validates the authority record
func (a *Authority) Validate() error {
	if a.ID == "" {
		return goerr.New("authority ID is required")
	}
	if a.Name == "" {
		return goerr.New("authority name is required")
	}
	return nil
}

// Category is one entry of the fixed category set reports are
// classified into.
type Category struct {
	ID          types.CategoryID
	Name        string
	Description string
	// DefaultAuthority is the authority a freshly created group for
	// this category is assigned before routing runs.
	DefaultAuthority types.AuthorityID
}

// Well-known category IDs. The classifier normalizes free-form
// category strings into this set, falling back to infrastructure.
const (
	CategoryWater          types.CategoryID = "water"
	CategoryElectricity    types.CategoryID = "electricity"
	CategoryWifi           types.CategoryID = "wifi"
	CategorySanitation     types.CategoryID = "sanitation"
	CategoryAcademics      types.CategoryID = "academics"
	CategorySafety         types.CategoryID = "safety"
	CategoryInfrastructure types.CategoryID = "infrastructure"
	CategoryHostel         types.CategoryID = "hostel"
	CategoryFood           types.CategoryID = "food"
)

// KnownCategories is the fixed enumerated category set
var KnownCategories = []types.CategoryID{
	CategoryWater,
	CategoryElectricity,
	CategoryWifi,
	CategorySanitation,
	CategoryAcademics,
	CategorySafety,
	CategoryInfrastructure,
	CategoryHostel,
	CategoryFood,
}

// IsKnownCategory checks whether the ID belongs to the fixed category set
func IsKnownCategory(id types.CategoryID) bool {
	for _, c := range KnownCategories {
		if c == id {
			return true
		}
	}
	return false
}

// Location is a campus location reports can reference
type Location struct {
	ID   types.LocationID
	Name string
	Kind types.LocationKind
}

// Validate validates the location record
func (l *Location) Validate() error {
	if l.ID == "" {
		return goerr.New("location ID is required")
	}
	if l.Name == "" {
		return goerr.New("location name is required")
	}
	return nil
}
