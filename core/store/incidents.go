package store

import "time"

type IncidentStatus string

const (
	IncidentStatusDraft         IncidentStatus = "draft"
	IncidentStatusReported      IncidentStatus = "reported"
	IncidentStatusInvestigation IncidentStatus = "investigation"
	IncidentStatusReview        IncidentStatus = "review"
	IncidentStatusClosed        IncidentStatus = "closed"
)

func ValidIncidentStatus(s IncidentStatus) bool {
	switch s {
	case IncidentStatusDraft, IncidentStatusReported, IncidentStatusInvestigation,
		IncidentStatusReview, IncidentStatusClosed:
		return true
	}
	return false
}

type IncidentSeverity string

const (
	SeverityLow      IncidentSeverity = "low"
	SeverityMedium   IncidentSeverity = "medium"
	SeverityHigh     IncidentSeverity = "high"
	SeverityCritical IncidentSeverity = "critical"
)

func ValidIncidentSeverity(s IncidentSeverity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type IncidentType string

const (
	IncidentTypeInjury         IncidentType = "injury"
	IncidentTypeNearMiss       IncidentType = "near_miss"
	IncidentTypePropertyDamage IncidentType = "property_damage"
	IncidentTypeEnvironmental  IncidentType = "environmental"
	IncidentTypeSecurity       IncidentType = "security"
	IncidentTypeOther          IncidentType = "other"
)

func ValidIncidentType(t IncidentType) bool {
	switch t {
	case IncidentTypeInjury, IncidentTypeNearMiss, IncidentTypePropertyDamage,
		IncidentTypeEnvironmental, IncidentTypeSecurity, IncidentTypeOther:
		return true
	}
	return false
}

// Incident is the central workflow entity. LocationName, ReporterName and
// AssigneeName are denormalized at write time from the referenced entities.
// StepsTotal, StepsCompleted, DaysOpen and IsOverdue are derived at read time
// from the step collection and the current date; they are never persisted.
type Incident struct {
	ID           string           `json:"id"`
	Number       string           `json:"number"` // e.g. INC-2026-00042
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	Status       IncidentStatus   `json:"status"`
	Severity     IncidentSeverity `json:"severity"`
	Type         IncidentType     `json:"type"`
	LocationID   string           `json:"locationId"`
	ReporterID   string           `json:"reporterId"`
	AssigneeID   string           `json:"assigneeId,omitempty"`
	LocationName string           `json:"locationName"`
	ReporterName string           `json:"reporterName"`
	AssigneeName string           `json:"assigneeName,omitempty"`
	OccurredAt   time.Time        `json:"occurredAt"`
	DueAt        *time.Time       `json:"dueAt,omitempty"`

	StepsTotal     int  `json:"stepsTotal"`
	StepsCompleted int  `json:"stepsCompleted"`
	DaysOpen       int  `json:"daysOpen"`
	IsOverdue      bool `json:"isOverdue"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusSkipped    StepStatus = "skipped"
)

func ValidStepStatus(s StepStatus) bool {
	switch s {
	case StepStatusPending, StepStatusInProgress, StepStatusCompleted, StepStatusSkipped:
		return true
	}
	return false
}

// Step is a task belonging to one incident. Deleting the incident cascades to
// its steps.
type Step struct {
	ID           string     `json:"id"`
	Number       string     `json:"number"` // e.g. STP-2026-00107
	IncidentID   string     `json:"incidentDbId"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       StepStatus `json:"status"`
	AssigneeID   string     `json:"assigneeId,omitempty"`
	AssigneeName string     `json:"assigneeName,omitempty"`
	Order        int        `json:"order"`
	DueAt        *time.Time `json:"dueAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
