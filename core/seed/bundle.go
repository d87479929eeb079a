// Package seed supplies initial datasets for the store: a built-in demo
// bundle and a YAML loader for custom bundles.
package seed

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"osprey-ehs/core/store"
)

// FromFile reads a seed bundle from a YAML file.
func FromFile(path string) (store.SeedBundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return store.SeedBundle{}, fmt.Errorf("read seed file: %w", err)
	}
	var bundle store.SeedBundle
	if err := yaml.Unmarshal(raw, &bundle); err != nil {
		return store.SeedBundle{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return bundle, nil
}

// Default returns the built-in demo dataset: a small plant hierarchy, the
// system roles, a handful of users and a few incidents in different stages.
func Default() store.SeedBundle {
	base := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	dueSoon := base.Add(40 * day)
	overdue := base.Add(10 * day)
	completed := base.Add(16 * day)

	return store.SeedBundle{
		Permissions: []store.Permission{
			{ID: "perm-incidents-read", Code: "incidents.read", Name: "View incidents", Category: "incidents"},
			{ID: "perm-incidents-write", Code: "incidents.write", Name: "Create and edit incidents", Category: "incidents"},
			{ID: "perm-incidents-close", Code: "incidents.close", Name: "Close incidents", Category: "incidents"},
			{ID: "perm-users-manage", Code: "users.manage", Name: "Manage users", Category: "admin"},
			{ID: "perm-locations-manage", Code: "locations.manage", Name: "Manage locations", Category: "admin"},
			{ID: "perm-dictionary-manage", Code: "dictionary.manage", Name: "Manage dictionaries", Category: "admin"},
		},
		Roles: []store.Role{
			{
				ID: "role-admin", Name: "Administrator", Level: 5, IsSystem: true,
				Description: "Full access to every module",
				Permissions: []store.Permission{
					{ID: "perm-incidents-read", Code: "incidents.read", Name: "View incidents", Category: "incidents"},
					{ID: "perm-incidents-write", Code: "incidents.write", Name: "Create and edit incidents", Category: "incidents"},
					{ID: "perm-incidents-close", Code: "incidents.close", Name: "Close incidents", Category: "incidents"},
					{ID: "perm-users-manage", Code: "users.manage", Name: "Manage users", Category: "admin"},
					{ID: "perm-locations-manage", Code: "locations.manage", Name: "Manage locations", Category: "admin"},
					{ID: "perm-dictionary-manage", Code: "dictionary.manage", Name: "Manage dictionaries", Category: "admin"},
				},
				CreatedAt: base, UpdatedAt: base,
			},
			{
				ID: "role-manager", Name: "EHS Manager", Level: 4, IsSystem: true,
				Description: "Runs investigations and closes incidents",
				Permissions: []store.Permission{
					{ID: "perm-incidents-read", Code: "incidents.read", Name: "View incidents", Category: "incidents"},
					{ID: "perm-incidents-write", Code: "incidents.write", Name: "Create and edit incidents", Category: "incidents"},
					{ID: "perm-incidents-close", Code: "incidents.close", Name: "Close incidents", Category: "incidents"},
				},
				CreatedAt: base, UpdatedAt: base,
			},
			{
				ID: "role-reporter", Name: "Reporter", Level: 2,
				Description: "Can report incidents at assigned locations",
				Permissions: []store.Permission{
					{ID: "perm-incidents-read", Code: "incidents.read", Name: "View incidents", Category: "incidents"},
					{ID: "perm-incidents-write", Code: "incidents.write", Name: "Create and edit incidents", Category: "incidents"},
				},
				CreatedAt: base, UpdatedAt: base,
			},
			{
				ID: "role-viewer", Name: "Viewer", Level: 1,
				Description: "Read-only access",
				Permissions: []store.Permission{
					{ID: "perm-incidents-read", Code: "incidents.read", Name: "View incidents", Category: "incidents"},
				},
				CreatedAt: base, UpdatedAt: base,
			},
		},
		Locations: []store.Location{
			{ID: "loc-riverside", Name: "Riverside Plant", Code: "RIV", Type: store.LocationTypeFacility, Order: 1, IsActive: true, CreatedAt: base, UpdatedAt: base},
			{ID: "loc-assembly", Name: "Assembly", Code: "RIV-ASM", Type: store.LocationTypeDepartment, ParentID: "loc-riverside", Order: 1, IsActive: true, CreatedAt: base, UpdatedAt: base},
			{ID: "loc-line1", Name: "Line 1", Code: "RIV-ASM-L1", Type: store.LocationTypeZone, ParentID: "loc-assembly", Order: 1, IsActive: true, CreatedAt: base, UpdatedAt: base},
			{ID: "loc-line2", Name: "Line 2", Code: "RIV-ASM-L2", Type: store.LocationTypeZone, ParentID: "loc-assembly", Order: 2, IsActive: true, CreatedAt: base, UpdatedAt: base},
			{ID: "loc-paint", Name: "Paint Shop", Code: "RIV-PNT", Type: store.LocationTypeDepartment, ParentID: "loc-riverside", Order: 2, IsActive: true, CreatedAt: base, UpdatedAt: base},
			{ID: "loc-warehouse", Name: "Warehouse B", Code: "RIV-WHB", Type: store.LocationTypeBuilding, ParentID: "loc-riverside", Order: 3, IsActive: true, CreatedAt: base, UpdatedAt: base},
			{ID: "loc-lakeview", Name: "Lakeview Office", Code: "LKV", Type: store.LocationTypeFacility, Order: 2, IsActive: true, CreatedAt: base, UpdatedAt: base},
		},
		Users: []store.User{
			{
				ID: "user-admin", Email: "dana.kovacs@osprey.example", FirstName: "Dana", LastName: "Kovacs",
				Title: "Platform Administrator", Status: store.UserStatusActive,
				RoleAssignments: []store.RoleAssignment{
					{Role: store.Role{ID: "role-admin", Name: "Administrator", Level: 5, IsSystem: true}, AssignedAt: base},
				},
				CreatedAt: base, UpdatedAt: base,
			},
			{
				ID: "user-manager", Email: "miguel.soto@osprey.example", FirstName: "Miguel", LastName: "Soto",
				Title: "EHS Manager", Status: store.UserStatusActive,
				RoleAssignments: []store.RoleAssignment{
					{Role: store.Role{ID: "role-manager", Name: "EHS Manager", Level: 4, IsSystem: true}, LocationIDs: []string{"loc-riverside"}, AssignedBy: "user-admin", AssignedAt: base},
				},
				CreatedAt: base, UpdatedAt: base,
			},
			{
				ID: "user-reporter", Email: "iris.tan@osprey.example", FirstName: "Iris", LastName: "Tan",
				Title: "Line Supervisor", Status: store.UserStatusActive,
				RoleAssignments: []store.RoleAssignment{
					{Role: store.Role{ID: "role-reporter", Name: "Reporter", Level: 2}, LocationIDs: []string{"loc-assembly"}, AssignedBy: "user-admin", AssignedAt: base},
				},
				CreatedAt: base, UpdatedAt: base,
			},
			{
				ID: "user-viewer", Email: "viktor.hale@osprey.example", FirstName: "Viktor", LastName: "Hale",
				Title: "Auditor", Status: store.UserStatusActive,
				RoleAssignments: []store.RoleAssignment{
					{Role: store.Role{ID: "role-viewer", Name: "Viewer", Level: 1}, AssignedBy: "user-admin", AssignedAt: base},
				},
				CreatedAt: base, UpdatedAt: base,
			},
			{
				ID: "user-pending", Email: "noor.amari@osprey.example", FirstName: "Noor", LastName: "Amari",
				Status: store.UserStatusPending, CreatedAt: base.Add(30 * day), UpdatedAt: base.Add(30 * day),
			},
		},
		Incidents: []store.Incident{
			{
				ID: "inc-forklift", Number: "INC-2026-00001", Title: "Forklift near miss at loading dock",
				Description: "Forklift reversed without a spotter while a pedestrian crossed the dock aisle.",
				Status:      store.IncidentStatusInvestigation, Severity: store.SeverityHigh, Type: store.IncidentTypeNearMiss,
				LocationID: "loc-warehouse", ReporterID: "user-reporter", AssigneeID: "user-manager",
				LocationName: "Warehouse B", ReporterName: "Iris Tan", AssigneeName: "Miguel Soto",
				OccurredAt: base.Add(14 * day), DueAt: &dueSoon,
				CreatedAt: base.Add(14 * day), UpdatedAt: base.Add(15 * day),
			},
			{
				ID: "inc-solvent", Number: "INC-2026-00002", Title: "Solvent spill in paint shop",
				Description: "Roughly five liters of thinner spilled during transfer; contained with absorbent.",
				Status:      store.IncidentStatusReported, Severity: store.SeverityMedium, Type: store.IncidentTypeEnvironmental,
				LocationID: "loc-paint", ReporterID: "user-reporter",
				LocationName: "Paint Shop", ReporterName: "Iris Tan",
				OccurredAt: base.Add(5 * day), DueAt: &overdue,
				CreatedAt: base.Add(5 * day), UpdatedAt: base.Add(5 * day),
			},
			{
				ID: "inc-guard", Number: "INC-2026-00003", Title: "Missing machine guard on press 4",
				Status:     store.IncidentStatusClosed, Severity: store.SeverityCritical, Type: store.IncidentTypeInjury,
				LocationID: "loc-line1", ReporterID: "user-manager", AssigneeID: "user-manager",
				LocationName: "Line 1", ReporterName: "Miguel Soto", AssigneeName: "Miguel Soto",
				OccurredAt: base.Add(2 * day),
				CreatedAt:  base.Add(2 * day), UpdatedAt: base.Add(20 * day),
			},
		},
		Steps: []store.Step{
			{
				ID: "step-witnesses", Number: "STP-2026-00001", IncidentID: "inc-forklift",
				Title: "Interview dock personnel", Status: store.StepStatusCompleted,
				AssigneeID: "user-manager", AssigneeName: "Miguel Soto", Order: 1,
				CompletedAt: &completed, CreatedAt: base.Add(14 * day), UpdatedAt: completed,
			},
			{
				ID: "step-cctv", Number: "STP-2026-00002", IncidentID: "inc-forklift",
				Title: "Review CCTV footage", Status: store.StepStatusInProgress,
				AssigneeID: "user-manager", AssigneeName: "Miguel Soto", Order: 2,
				CreatedAt: base.Add(14 * day), UpdatedAt: base.Add(15 * day),
			},
			{
				ID: "step-traffic-plan", Number: "STP-2026-00003", IncidentID: "inc-forklift",
				Title: "Draft pedestrian traffic plan", Status: store.StepStatusPending, Order: 3,
				CreatedAt: base.Add(15 * day), UpdatedAt: base.Add(15 * day),
			},
		},
		DictionaryCategories: []store.DictionaryCategory{
			{ID: "dict-body-parts", Code: "body_parts", Name: "Body Parts", Type: store.DictionaryCategorySystem, ItemCount: 3, CreatedAt: base, UpdatedAt: base},
			{ID: "dict-hazards", Code: "hazard_types", Name: "Hazard Types", Type: store.DictionaryCategoryCustom, ItemCount: 4, CreatedAt: base, UpdatedAt: base},
		},
		DictionaryEntries: map[string][]store.DictionaryEntry{
			"dict-body-parts": {
				{ID: "bp-hand", Code: "hand", Name: "Hand", Order: 1, IsActive: true, CreatedAt: base, UpdatedAt: base},
				{ID: "bp-arm", Code: "arm", Name: "Arm", Order: 2, IsActive: true, CreatedAt: base, UpdatedAt: base},
				{ID: "bp-head", Code: "head", Name: "Head", Order: 3, IsActive: true, CreatedAt: base, UpdatedAt: base},
			},
			"dict-hazards": {
				{ID: "hz-chemical", Code: "chemical", Name: "Chemical", Order: 1, IsActive: true, CreatedAt: base, UpdatedAt: base},
				{ID: "hz-solvent", Code: "solvent", Name: "Solvent", ParentID: "hz-chemical", Order: 1, IsActive: true, CreatedAt: base, UpdatedAt: base},
				{ID: "hz-mechanical", Code: "mechanical", Name: "Mechanical", Order: 2, IsActive: true, CreatedAt: base, UpdatedAt: base},
				{ID: "hz-noise", Code: "noise", Name: "Noise", Order: 3, IsActive: false, CreatedAt: base, UpdatedAt: base},
			},
		},
		Sequences: map[store.Kind]int64{
			store.KindIncidents: 4,
			store.KindSteps:     4,
		},
	}
}
