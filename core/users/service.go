// Package users implements user CRUD and role assignment on top of the
// in-memory store. Role assignments embed deep-copied role snapshots, so a
// later role edit never changes what a user was granted.
package users

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"osprey-ehs/config"
	"osprey-ehs/core/apierr"
	"osprey-ehs/core/query"
	"osprey-ehs/core/simulate"
	"osprey-ehs/core/store"
	"osprey-ehs/core/utils"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var schema = query.Schema{
	Searchable: []string{"email", "firstName", "lastName"},
	Fields: map[string]query.FieldType{
		"email":     query.FieldString,
		"firstName": query.FieldString,
		"lastName":  query.FieldString,
		"title":     query.FieldString,
		"status":    query.FieldString,
		"createdAt": query.FieldTime,
		"updatedAt": query.FieldTime,
	},
}

func fieldValue(u store.User, field string) (any, bool) {
	switch field {
	case "email":
		return u.Email, true
	case "firstName":
		return u.FirstName, true
	case "lastName":
		return u.LastName, true
	case "title":
		return u.Title, true
	case "status":
		return u.Status, true
	case "createdAt":
		return u.CreatedAt, true
	case "updatedAt":
		return u.UpdatedAt, true
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
	Email     string           `json:"email"`
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Title     string           `json:"title,omitempty"`
	Phone     string           `json:"phone,omitempty"`
	Status    store.UserStatus `json:"status,omitempty"`
}

// UpdateInput patches individual fields; nil means leave unchanged. The
// merged result is validated in full before commit.
type UpdateInput struct {
	Email     *string           `json:"email,omitempty"`
	FirstName *string           `json:"firstName,omitempty"`
	LastName  *string           `json:"lastName,omitempty"`
	Title     *string           `json:"title,omitempty"`
	Phone     *string           `json:"phone,omitempty"`
	Status    *store.UserStatus `json:"status,omitempty"`
}

type AssignRoleInput struct {
	RoleID      string   `json:"roleId"`
	LocationIDs []string `json:"locationIds,omitempty"`
	AssignedBy  string   `json:"assignedBy,omitempty"`
}

func (s *Service) List(ctx context.Context, p query.Params) (*query.Paginated[store.User], error) {
	s.log.Debugw("users.list", "search", p.Search)
	return simulate.Run(s.run, "users.list", func() (*query.Paginated[store.User], error) {
		if err := schema.Validate(p); err != nil {
			return nil, err
		}
		page, pg := query.Apply(s.store.ListUsers(), p, schema, fieldValue, s.limits())
		return query.NewPaginated(page, pg), nil
	})
}

func (s *Service) Get(ctx context.Context, id string) (*query.Response[store.User], error) {
	s.log.Debugw("users.get", "id", id)
	return simulate.Run(s.run, "users.get", func() (*query.Response[store.User], error) {
		u, ok := s.store.GetUser(id)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindUsers), ID: id}
		}
		return query.NewResponse(u), nil
	})
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*query.Response[store.User], error) {
	s.log.Debugw("users.create", "email", in.Email)
	return simulate.Run(s.run, "users.create", func() (*query.Response[store.User], error) {
		if in.Status == "" {
			in.Status = store.UserStatusPending
		}
		if err := validateUser(in.Email, in.FirstName, in.LastName, in.Status); err != nil {
			return nil, err
		}
		if err := s.checkEmailUnique(in.Email, ""); err != nil {
			return nil, err
		}
		now := utils.NowUTC()
		u := store.User{
			ID:        utils.NewEntityID(),
			Email:     in.Email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Title:     in.Title,
			Phone:     in.Phone,
			Status:    in.Status,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.store.SetUser(u)
		return query.NewResponse(u), nil
	})
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*query.Response[store.User], error) {
	s.log.Debugw("users.update", "id", id)
	return simulate.Run(s.run, "users.update", func() (*query.Response[store.User], error) {
		u, ok := s.store.GetUser(id)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindUsers), ID: id}
		}
		if in.Email != nil {
			u.Email = *in.Email
		}
		if in.FirstName != nil {
			u.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			u.LastName = *in.LastName
		}
		if in.Title != nil {
			u.Title = *in.Title
		}
		if in.Phone != nil {
			u.Phone = *in.Phone
		}
		if in.Status != nil {
			u.Status = *in.Status
		}
		if err := validateUser(u.Email, u.FirstName, u.LastName, u.Status); err != nil {
			return nil, err
		}
		if err := s.checkEmailUnique(u.Email, id); err != nil {
			return nil, err
		}
		u.UpdatedAt = utils.NowUTC()
		s.store.SetUser(u)
		return query.NewResponse(u), nil
	})
}

func (s *Service) Delete(ctx context.Context, id string) (*query.Response[string], error) {
	s.log.Debugw("users.delete", "id", id)
	return simulate.Run(s.run, "users.delete", func() (*query.Response[string], error) {
		if _, ok := s.store.GetUser(id); !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindUsers), ID: id}
		}
		s.store.DeleteUser(id)
		return query.NewResponse(id), nil
	})
}

// AssignRole appends a role assignment carrying a snapshot of the role as it
// exists right now.
func (s *Service) AssignRole(ctx context.Context, userID string, in AssignRoleInput) (*query.Response[store.User], error) {
	s.log.Debugw("users.assignRole", "userId", userID, "roleId", in.RoleID)
	return simulate.Run(s.run, "users.assignRole", func() (*query.Response[store.User], error) {
		u, ok := s.store.GetUser(userID)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindUsers), ID: userID}
		}
		role, ok := s.store.GetRole(in.RoleID)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindRoles), ID: in.RoleID}
		}
		for _, locID := range in.LocationIDs {
			if _, ok := s.store.GetLocation(locID); !ok {
				return nil, &apierr.NotFoundError{Kind: string(store.KindLocations), ID: locID}
			}
		}
		for _, a := range u.RoleAssignments {
			if a.Role.ID == in.RoleID {
				return nil, &apierr.ConflictError{Field: "roleId", Value: in.RoleID}
			}
		}
		u.RoleAssignments = append(u.RoleAssignments, store.RoleAssignment{
			Role:        role, // GetRole already returned a deep copy
			LocationIDs: append([]string(nil), in.LocationIDs...),
			AssignedBy:  in.AssignedBy,
			AssignedAt:  utils.NowUTC(),
		})
		u.UpdatedAt = utils.NowUTC()
		s.store.SetUser(u)
		return query.NewResponse(u), nil
	})
}

func (s *Service) RevokeRole(ctx context.Context, userID, roleID string) (*query.Response[store.User], error) {
	s.log.Debugw("users.revokeRole", "userId", userID, "roleId", roleID)
	return simulate.Run(s.run, "users.revokeRole", func() (*query.Response[store.User], error) {
		u, ok := s.store.GetUser(userID)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindUsers), ID: userID}
		}
		kept := u.RoleAssignments[:0]
		removed := false
		for _, a := range u.RoleAssignments {
			if a.Role.ID == roleID {
				removed = true
				continue
			}
			kept = append(kept, a)
		}
		if !removed {
			return nil, &apierr.NotFoundError{Kind: "roleAssignment", ID: roleID}
		}
		u.RoleAssignments = kept
		u.UpdatedAt = utils.NowUTC()
		s.store.SetUser(u)
		return query.NewResponse(u), nil
	})
}

func validateUser(email, firstName, lastName string, status store.UserStatus) error {
	fe := apierr.FieldErrors{}
	if strings.TrimSpace(email) == "" {
		fe.Add("email", "is required")
	} else if !emailRe.MatchString(email) {
		fe.Add("email", "is not a valid email address")
	}
	if strings.TrimSpace(firstName) == "" {
		fe.Add("firstName", "is required")
	}
	if strings.TrimSpace(lastName) == "" {
		fe.Add("lastName", "is required")
	}
	if !store.ValidUserStatus(status) {
		fe.Add("status", "must be one of pending, active, inactive, suspended")
	}
	return fe.Err()
}

func (s *Service) checkEmailUnique(email, excludeID string) error {
	for _, other := range s.store.ListUsers() {
		if other.ID == excludeID {
			continue
		}
		if strings.EqualFold(other.Email, email) {
			return &apierr.ConflictError{Field: "email", Value: email}
		}
	}
	return nil
}
