// Package incidents implements the incident workflow: incident CRUD plus the
// step sub-resource. Registration numbers come from per-kind sequence
// counters and are never reused. Progress figures (step counts, days open,
// overdue flag) are computed on every read, not stored.
package incidents

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"osprey-ehs/config"
	"osprey-ehs/core/apierr"
	"osprey-ehs/core/query"
	"osprey-ehs/core/simulate"
	"osprey-ehs/core/store"
	"osprey-ehs/core/utils"
)

var schema = query.Schema{
	Searchable: []string{"number", "title", "description"},
	Fields: map[string]query.FieldType{
		"number":     query.FieldString,
		"title":      query.FieldString,
		"status":     query.FieldString,
		"severity":   query.FieldString,
		"type":       query.FieldString,
		"locationId": query.FieldString,
		"reporterId": query.FieldString,
		"assigneeId": query.FieldString,
		"occurredAt": query.FieldTime,
		"dueAt":      query.FieldTime,
		"createdAt":  query.FieldTime,
		"updatedAt":  query.FieldTime,
	},
}

func fieldValue(inc store.Incident, field string) (any, bool) {
	switch field {
	case "number":
		return inc.Number, true
	case "title":
		return inc.Title, true
	case "description":
		return inc.Description, true
	case "status":
		return inc.Status, true
	case "severity":
		return inc.Severity, true
	case "type":
		return inc.Type, true
	case "locationId":
		return inc.LocationID, true
	case "reporterId":
		return inc.ReporterID, true
	case "assigneeId":
		return inc.AssigneeID, true
	case "occurredAt":
		return inc.OccurredAt, true
	case "dueAt":
		return inc.DueAt, true
	case "createdAt":
		return inc.CreatedAt, true
	case "updatedAt":
		return inc.UpdatedAt, true
	}
	return nil, false
}

type Service struct {
	store *store.Store
	run   *simulate.Runner
	cfg   config.SimulationConfig
	log   *zap.SugaredLogger
	now   func() time.Time // test hook
}

func NewService(st *store.Store, run *simulate.Runner, cfg config.SimulationConfig, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{store: st, run: run, cfg: cfg, log: log, now: utils.NowUTC}
}

func (s *Service) limits() query.Limits {
	return query.Limits{
		DefaultPageSize: s.cfg.Pagination.DefaultPageSize,
		MaxPageSize:     s.cfg.Pagination.MaxPageSize,
	}
}

type CreateInput struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Status      store.IncidentStatus   `json:"status,omitempty"`
	Severity    store.IncidentSeverity `json:"severity"`
	Type        store.IncidentType     `json:"type"`
	LocationID  string                 `json:"locationId"`
	ReporterID  string                 `json:"reporterId"`
	AssigneeID  string                 `json:"assigneeId,omitempty"`
	OccurredAt  time.Time              `json:"occurredAt"`
	DueAt       *time.Time             `json:"dueAt,omitempty"`
}

type UpdateInput struct {
	Title       *string                 `json:"title,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Status      *store.IncidentStatus   `json:"status,omitempty"`
	Severity    *store.IncidentSeverity `json:"severity,omitempty"`
	Type        *store.IncidentType     `json:"type,omitempty"`
	LocationID  *string                 `json:"locationId,omitempty"`
	AssigneeID  *string                 `json:"assigneeId,omitempty"`
	OccurredAt  *time.Time              `json:"occurredAt,omitempty"`
	DueAt       **time.Time             `json:"dueAt,omitempty"`
}

type StepCreateInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssigneeID  string     `json:"assigneeId,omitempty"`
	Order       int        `json:"order,omitempty"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
}

type StepUpdateInput struct {
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	Status      *store.StepStatus `json:"status,omitempty"`
	AssigneeID  *string           `json:"assigneeId,omitempty"`
	Order       *int              `json:"order,omitempty"`
	DueAt       **time.Time       `json:"dueAt,omitempty"`
}

func (s *Service) List(ctx context.Context, p query.Params) (*query.Paginated[store.Incident], error) {
	s.log.Debugw("incidents.list", "search", p.Search)
	return simulate.Run(s.run, "incidents.list", func() (*query.Paginated[store.Incident], error) {
		if err := schema.Validate(p); err != nil {
			return nil, err
		}
		all := s.store.ListIncidents()
		for i := range all {
			s.decorate(&all[i])
		}
		page, pg := query.Apply(all, p, schema, fieldValue, s.limits())
		return query.NewPaginated(page, pg), nil
	})
}

func (s *Service) Get(ctx context.Context, id string) (*query.Response[store.Incident], error) {
	s.log.Debugw("incidents.get", "id", id)
	return simulate.Run(s.run, "incidents.get", func() (*query.Response[store.Incident], error) {
		inc, ok := s.store.GetIncident(id)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindIncidents), ID: id}
		}
		s.decorate(&inc)
		return query.NewResponse(inc), nil
	})
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*query.Response[store.Incident], error) {
	s.log.Debugw("incidents.create", "title", in.Title)
	return simulate.Run(s.run, "incidents.create", func() (*query.Response[store.Incident], error) {
		if in.Status == "" {
			in.Status = store.IncidentStatusDraft
		}
		if err := validateIncident(in.Title, in.Status, in.Severity, in.Type, in.OccurredAt); err != nil {
			return nil, err
		}
		loc, ok := s.store.GetLocation(in.LocationID)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindLocations), ID: in.LocationID}
		}
		reporter, ok := s.store.GetUser(in.ReporterID)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindUsers), ID: in.ReporterID}
		}
		var assigneeName string
		if in.AssigneeID != "" {
			assignee, ok := s.store.GetUser(in.AssigneeID)
			if !ok {
				return nil, &apierr.NotFoundError{Kind: string(store.KindUsers), ID: in.AssigneeID}
			}
			assigneeName = assignee.FullName()
		}
		now := s.now()
		inc := store.Incident{
			ID:           utils.NewEntityID(),
			Number:       s.nextNumber("INC", store.KindIncidents),
			Title:        in.Title,
			Description:  in.Description,
			Status:       in.Status,
			Severity:     in.Severity,
			Type:         in.Type,
			LocationID:   in.LocationID,
			ReporterID:   in.ReporterID,
			AssigneeID:   in.AssigneeID,
			LocationName: loc.Name,
			ReporterName: reporter.FullName(),
			AssigneeName: assigneeName,
			OccurredAt:   in.OccurredAt,
			DueAt:        in.DueAt,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		s.store.SetIncident(inc)
		s.decorate(&inc)
		return query.NewResponse(inc), nil
	})
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*query.Response[store.Incident], error) {
	s.log.Debugw("incidents.update", "id", id)
	return simulate.Run(s.run, "incidents.update", func() (*query.Response[store.Incident], error) {
		inc, ok := s.store.GetIncident(id)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindIncidents), ID: id}
		}
		if in.Title != nil {
			inc.Title = *in.Title
		}
		if in.Description != nil {
			inc.Description = *in.Description
		}
		if in.Status != nil {
			inc.Status = *in.Status
		}
		if in.Severity != nil {
			inc.Severity = *in.Severity
		}
		if in.Type != nil {
			inc.Type = *in.Type
		}
		if in.OccurredAt != nil {
			inc.OccurredAt = *in.OccurredAt
		}
		if in.DueAt != nil {
			inc.DueAt = *in.DueAt
		}
		if in.LocationID != nil {
			loc, ok := s.store.GetLocation(*in.LocationID)
			if !ok {
				return nil, &apierr.NotFoundError{Kind: string(store.KindLocations), ID: *in.LocationID}
			}
			inc.LocationID = loc.ID
			inc.LocationName = loc.Name
		}
		if in.AssigneeID != nil {
			if *in.AssigneeID == "" {
				inc.AssigneeID = ""
				inc.AssigneeName = ""
			} else {
				assignee, ok := s.store.GetUser(*in.AssigneeID)
				if !ok {
					return nil, &apierr.NotFoundError{Kind: string(store.KindUsers), ID: *in.AssigneeID}
				}
				inc.AssigneeID = assignee.ID
				inc.AssigneeName = assignee.FullName()
			}
		}
		if err := validateIncident(inc.Title, inc.Status, inc.Severity, inc.Type, inc.OccurredAt); err != nil {
			return nil, err
		}
		inc.UpdatedAt = s.now()
		s.store.SetIncident(inc)
		s.decorate(&inc)
		return query.NewResponse(inc), nil
	})
}

// Delete removes the incident and every step attached to it.
func (s *Service) Delete(ctx context.Context, id string) (*query.Response[string], error) {
	s.log.Debugw("incidents.delete", "id", id)
	return simulate.Run(s.run, "incidents.delete", func() (*query.Response[string], error) {
		if _, ok := s.store.GetIncident(id); !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindIncidents), ID: id}
		}
		for _, st := range s.store.ListIncidentSteps(id) {
			s.store.DeleteStep(st.ID)
		}
		s.store.DeleteIncident(id)
		return query.NewResponse(id), nil
	})
}

// ListSteps returns the steps of one incident ordered by Order, then
// CreatedAt.
func (s *Service) ListSteps(ctx context.Context, incidentID string) (*query.Response[[]store.Step], error) {
	s.log.Debugw("incidents.listSteps", "incidentId", incidentID)
	return simulate.Run(s.run, "incidents.listSteps", func() (*query.Response[[]store.Step], error) {
		if _, ok := s.store.GetIncident(incidentID); !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindIncidents), ID: incidentID}
		}
		steps := s.store.ListIncidentSteps(incidentID)
		sort.SliceStable(steps, func(i, j int) bool {
			if steps[i].Order != steps[j].Order {
				return steps[i].Order < steps[j].Order
			}
			return steps[i].CreatedAt.Before(steps[j].CreatedAt)
		})
		if steps == nil {
			steps = []store.Step{}
		}
		return query.NewResponse(steps), nil
	})
}

func (s *Service) CreateStep(ctx context.Context, incidentID string, in StepCreateInput) (*query.Response[store.Step], error) {
	s.log.Debugw("incidents.createStep", "incidentId", incidentID, "title", in.Title)
	return simulate.Run(s.run, "incidents.createStep", func() (*query.Response[store.Step], error) {
		if _, ok := s.store.GetIncident(incidentID); !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindIncidents), ID: incidentID}
		}
		fe := apierr.FieldErrors{}
		if strings.TrimSpace(in.Title) == "" {
			fe.Add("title", "is required")
		}
		if err := fe.Err(); err != nil {
			return nil, err
		}
		assigneeName, err := s.resolveAssignee(in.AssigneeID)
		if err != nil {
			return nil, err
		}
		now := s.now()
		st := store.Step{
			ID:           utils.NewEntityID(),
			Number:       s.nextNumber("STP", store.KindSteps),
			IncidentID:   incidentID,
			Title:        in.Title,
			Description:  in.Description,
			Status:       store.StepStatusPending,
			AssigneeID:   in.AssigneeID,
			AssigneeName: assigneeName,
			Order:        in.Order,
			DueAt:        in.DueAt,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		s.store.SetStep(st)
		return query.NewResponse(st), nil
	})
}

func (s *Service) UpdateStep(ctx context.Context, incidentID, stepID string, in StepUpdateInput) (*query.Response[store.Step], error) {
	s.log.Debugw("incidents.updateStep", "incidentId", incidentID, "stepId", stepID)
	return simulate.Run(s.run, "incidents.updateStep", func() (*query.Response[store.Step], error) {
		st, ok := s.store.GetStep(stepID)
		if !ok || st.IncidentID != incidentID {
			return nil, &apierr.NotFoundError{Kind: string(store.KindSteps), ID: stepID}
		}
		if in.Title != nil {
			st.Title = *in.Title
		}
		if in.Description != nil {
			st.Description = *in.Description
		}
		if in.Order != nil {
			st.Order = *in.Order
		}
		if in.DueAt != nil {
			st.DueAt = *in.DueAt
		}
		if in.AssigneeID != nil {
			name, err := s.resolveAssignee(*in.AssigneeID)
			if err != nil {
				return nil, err
			}
			st.AssigneeID = *in.AssigneeID
			st.AssigneeName = name
		}
		if in.Status != nil {
			if !store.ValidStepStatus(*in.Status) {
				fe := apierr.FieldErrors{}
				fe.Add("status", "must be one of pending, in_progress, completed, skipped")
				return nil, fe.Err()
			}
			// entering completed stamps the completion time, leaving it
			// clears the stamp
			if *in.Status == store.StepStatusCompleted && st.Status != store.StepStatusCompleted {
				done := s.now()
				st.CompletedAt = &done
			}
			if *in.Status != store.StepStatusCompleted {
				st.CompletedAt = nil
			}
			st.Status = *in.Status
		}
		fe := apierr.FieldErrors{}
		if strings.TrimSpace(st.Title) == "" {
			fe.Add("title", "is required")
		}
		if err := fe.Err(); err != nil {
			return nil, err
		}
		st.UpdatedAt = s.now()
		s.store.SetStep(st)
		return query.NewResponse(st), nil
	})
}

func (s *Service) DeleteStep(ctx context.Context, incidentID, stepID string) (*query.Response[string], error) {
	s.log.Debugw("incidents.deleteStep", "incidentId", incidentID, "stepId", stepID)
	return simulate.Run(s.run, "incidents.deleteStep", func() (*query.Response[string], error) {
		st, ok := s.store.GetStep(stepID)
		if !ok || st.IncidentID != incidentID {
			return nil, &apierr.NotFoundError{Kind: string(store.KindSteps), ID: stepID}
		}
		s.store.DeleteStep(stepID)
		return query.NewResponse(stepID), nil
	})
}

// nextNumber issues the next registration number for the kind, e.g.
// INC-2026-00042.
func (s *Service) nextNumber(prefix string, kind store.Kind) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, s.now().Year(), s.store.NextSequence(kind))
}

// decorate fills the derived read-time fields from the step collection and
// the current date.
func (s *Service) decorate(inc *store.Incident) {
	steps := s.store.ListIncidentSteps(inc.ID)
	inc.StepsTotal = len(steps)
	completed := 0
	for _, st := range steps {
		if st.Status == store.StepStatusCompleted {
			completed++
		}
	}
	inc.StepsCompleted = completed
	now := s.now()
	inc.DaysOpen = int(now.Sub(inc.CreatedAt).Hours() / 24)
	if inc.DaysOpen < 0 {
		inc.DaysOpen = 0
	}
	inc.IsOverdue = inc.DueAt != nil && now.After(*inc.DueAt) && inc.Status != store.IncidentStatusClosed
}

func (s *Service) resolveAssignee(id string) (string, error) {
	if id == "" {
		return "", nil
	}
	u, ok := s.store.GetUser(id)
	if !ok {
		return "", &apierr.NotFoundError{Kind: string(store.KindUsers), ID: id}
	}
	return u.FullName(), nil
}

func validateIncident(title string, status store.IncidentStatus, severity store.IncidentSeverity, typ store.IncidentType, occurredAt time.Time) error {
	fe := apierr.FieldErrors{}
	if strings.TrimSpace(title) == "" {
		fe.Add("title", "is required")
	}
	if !store.ValidIncidentStatus(status) {
		fe.Add("status", "must be one of draft, reported, investigation, review, closed")
	}
	if !store.ValidIncidentSeverity(severity) {
		fe.Add("severity", "must be one of low, medium, high, critical")
	}
	if !store.ValidIncidentType(typ) {
		fe.Add("type", "must be one of injury, near_miss, property_damage, environmental, security, other")
	}
	if occurredAt.IsZero() {
		fe.Add("occurredAt", "is required")
	}
	return fe.Err()
}
