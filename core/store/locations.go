package store

import "time"

type LocationType string

const (
	LocationTypeFacility   LocationType = "facility"
	LocationTypeDepartment LocationType = "department"
	LocationTypeZone       LocationType = "zone"
	LocationTypeBuilding   LocationType = "building"
	LocationTypeFloor      LocationType = "floor"
	LocationTypeArea       LocationType = "area"
	LocationTypeEquipment  LocationType = "equipment"
)

func ValidLocationType(t LocationType) bool {
	switch t {
	case LocationTypeFacility, LocationTypeDepartment, LocationTypeZone,
		LocationTypeBuilding, LocationTypeFloor, LocationTypeArea, LocationTypeEquipment:
		return true
	}
	return false
}

// Location is a node in the site hierarchy. ParentID empty means root. The
// parent graph must stay acyclic; the service enforces that on every reparent.
type Location struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Code        string       `json:"code"` // unique, case-insensitive
	Type        LocationType `json:"type"`
	ParentID    string       `json:"parentId,omitempty"`
	Description string       `json:"description,omitempty"`
	Order       int          `json:"order"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
