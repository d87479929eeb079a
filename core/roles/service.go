// Package roles implements role CRUD plus the permission reference list.
// System roles are read-only. Role.UserCount is a cached figure: it is only
// refreshed when RecalculateUserCounts is called, so it can lag behind the
// users' role assignments in between.
package roles

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"osprey-ehs/config"
	"osprey-ehs/core/apierr"
	"osprey-ehs/core/query"
	"osprey-ehs/core/simulate"
	"osprey-ehs/core/store"
	"osprey-ehs/core/utils"
)

var schema = query.Schema{
	Searchable: []string{"name", "description"},
	Fields: map[string]query.FieldType{
		"name":      query.FieldString,
		"level":     query.FieldNumber,
		"isSystem":  query.FieldBool,
		"userCount": query.FieldNumber,
		"createdAt": query.FieldTime,
		"updatedAt": query.FieldTime,
	},
}

func fieldValue(r store.Role, field string) (any, bool) {
	switch field {
	case "name":
		return r.Name, true
	case "description":
		return r.Description, true
	case "level":
		return r.Level, true
	case "isSystem":
		return r.IsSystem, true
	case "userCount":
		return r.UserCount, true
	case "createdAt":
		return r.CreatedAt, true
	case "updatedAt":
		return r.UpdatedAt, true
	}
	return nil, false
}

type Service struct {
	store *store.Store
	run   *simulate.Runner
	cfg   config.SimulationConfig
	log   *zap.SugaredLogger
}

func NewService(st *store.Store, run *simulate.Runner, cfg config.SimulationConfig, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{store: st, run: run, cfg: cfg, log: log}
}

func (s *Service) limits() query.Limits {
	return query.Limits{
		DefaultPageSize: s.cfg.Pagination.DefaultPageSize,
		MaxPageSize:     s.cfg.Pagination.MaxPageSize,
	}
}

type CreateInput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Level         int      `json:"level"`
	PermissionIDs []string `json:"permissionIds,omitempty"`
}

type UpdateInput struct {
	Name          *string   `json:"name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Level         *int      `json:"level,omitempty"`
	PermissionIDs *[]string `json:"permissionIds,omitempty"`
}

func (s *Service) List(ctx context.Context, p query.Params) (*query.Paginated[store.Role], error) {
	s.log.Debugw("roles.list", "search", p.Search)
	return simulate.Run(s.run, "roles.list", func() (*query.Paginated[store.Role], error) {
		if err := schema.Validate(p); err != nil {
			return nil, err
		}
		page, pg := query.Apply(s.store.ListRoles(), p, schema, fieldValue, s.limits())
		return query.NewPaginated(page, pg), nil
	})
}

func (s *Service) Get(ctx context.Context, id string) (*query.Response[store.Role], error) {
	s.log.Debugw("roles.get", "id", id)
	return simulate.Run(s.run, "roles.get", func() (*query.Response[store.Role], error) {
		r, ok := s.store.GetRole(id)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindRoles), ID: id}
		}
		return query.NewResponse(r), nil
	})
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*query.Response[store.Role], error) {
	s.log.Debugw("roles.create", "name", in.Name)
	return simulate.Run(s.run, "roles.create", func() (*query.Response[store.Role], error) {
		if err := validateRole(in.Name, in.Level); err != nil {
			return nil, err
		}
		if err := s.checkNameUnique(in.Name, ""); err != nil {
			return nil, err
		}
		perms, err := s.resolvePermissions(in.PermissionIDs)
		if err != nil {
			return nil, err
		}
		now := utils.NowUTC()
		r := store.Role{
			ID:          utils.NewEntityID(),
			Name:        in.Name,
			Description: in.Description,
			Level:       in.Level,
			Permissions: perms,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.store.SetRole(r)
		return query.NewResponse(r), nil
	})
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*query.Response[store.Role], error) {
	s.log.Debugw("roles.update", "id", id)
	return simulate.Run(s.run, "roles.update", func() (*query.Response[store.Role], error) {
		r, ok := s.store.GetRole(id)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindRoles), ID: id}
		}
		if r.IsSystem {
			return nil, &apierr.ForbiddenError{Reason: fmt.Sprintf("system role %q is read-only", r.Name)}
		}
		if in.Name != nil {
			r.Name = *in.Name
		}
		if in.Description != nil {
			r.Description = *in.Description
		}
		if in.Level != nil {
			r.Level = *in.Level
		}
		if in.PermissionIDs != nil {
			perms, err := s.resolvePermissions(*in.PermissionIDs)
			if err != nil {
				return nil, err
			}
			r.Permissions = perms
		}
		if err := validateRole(r.Name, r.Level); err != nil {
			return nil, err
		}
		if err := s.checkNameUnique(r.Name, id); err != nil {
			return nil, err
		}
		r.UpdatedAt = utils.NowUTC()
		s.store.SetRole(r)
		return query.NewResponse(r), nil
	})
}

func (s *Service) Delete(ctx context.Context, id string) (*query.Response[string], error) {
	s.log.Debugw("roles.delete", "id", id)
	return simulate.Run(s.run, "roles.delete", func() (*query.Response[string], error) {
		r, ok := s.store.GetRole(id)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindRoles), ID: id}
		}
		if r.IsSystem {
			return nil, &apierr.ForbiddenError{Reason: fmt.Sprintf("system role %q cannot be deleted", r.Name)}
		}
		s.store.DeleteRole(id)
		return query.NewResponse(id), nil
	})
}

// Permissions returns the static permission reference list.
func (s *Service) Permissions(ctx context.Context) (*query.Response[[]store.Permission], error) {
	s.log.Debugw("roles.permissions")
	return simulate.Run(s.run, "roles.permissions", func() (*query.Response[[]store.Permission], error) {
		return query.NewResponse(s.store.ListPermissions()), nil
	})
}

// RecalculateUserCounts refreshes the cached UserCount on every role from the
// users' current role assignments and returns the refreshed roles.
func (s *Service) RecalculateUserCounts(ctx context.Context) (*query.Response[[]store.Role], error) {
	s.log.Debugw("roles.recalculateUserCounts")
	return simulate.Run(s.run, "roles.recalculateUserCounts", func() (*query.Response[[]store.Role], error) {
		counts := map[string]int{}
		for _, u := range s.store.ListUsers() {
			for _, a := range u.RoleAssignments {
				counts[a.Role.ID]++
			}
		}
		out := make([]store.Role, 0)
		for _, r := range s.store.ListRoles() {
			s.store.UpdateRole(r.ID, func(role *store.Role) {
				role.UserCount = counts[r.ID]
			})
			r.UserCount = counts[r.ID]
			out = append(out, r)
		}
		return query.NewResponse(out), nil
	})
}

func validateRole(name string, level int) error {
	fe := apierr.FieldErrors{}
	if strings.TrimSpace(name) == "" {
		fe.Add("name", "is required")
	}
	if level < store.RoleLevelMin || level > store.RoleLevelMax {
		fe.Add("level", fmt.Sprintf("must be between %d and %d", store.RoleLevelMin, store.RoleLevelMax))
	}
	return fe.Err()
}

func (s *Service) checkNameUnique(name, excludeID string) error {
	for _, other := range s.store.ListRoles() {
		if other.ID == excludeID {
			continue
		}
		if strings.EqualFold(other.Name, name) {
			return &apierr.ConflictError{Field: "name", Value: name}
		}
	}
	return nil
}

// resolvePermissions checks each id against the reference collection and
// returns copies to store on the role.
func (s *Service) resolvePermissions(ids []string) ([]store.Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]store.Permission, 0, len(ids))
	for _, id := range ids {
		p, ok := s.store.GetPermission(id)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindPermissions), ID: id}
		}
		out = append(out, p)
	}
	return out, nil
}
