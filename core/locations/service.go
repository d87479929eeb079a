// Package locations manages the site hierarchy. The parent graph must stay
// acyclic: before any reparent the service computes the node's descendant set
// and rejects a parent inside it. Deletes refuse when children exist unless
// the caller explicitly asks for a recursive delete.
package locations

import (
	"context"
	"sort"
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
	Searchable: []string{"name", "code"},
	Fields: map[string]query.FieldType{
		"name":      query.FieldString,
		"code":      query.FieldString,
		"type":      query.FieldString,
		"parentId":  query.FieldString,
		"isActive":  query.FieldBool,
		"order":     query.FieldNumber,
		"createdAt": query.FieldTime,
	},
}

func fieldValue(l store.Location, field string) (any, bool) {
	switch field {
	case "name":
		return l.Name, true
	case "code":
		return l.Code, true
	case "type":
		return l.Type, true
	case "parentId":
		return l.ParentID, true
	case "isActive":
		return l.IsActive, true
	case "order":
		return l.Order, true
	case "createdAt":
		return l.CreatedAt, true
	}
	return nil, false
}

// TreeNode is one node of the assembled hierarchy.
type TreeNode struct {
	store.Location
	Children []*TreeNode `json:"children"`
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
	Name        string             `json:"name"`
	Code        string             `json:"code"`
	Type        store.LocationType `json:"type"`
	ParentID    string             `json:"parentId,omitempty"`
	Description string             `json:"description,omitempty"`
	Order       int                `json:"order,omitempty"`
}

type UpdateInput struct {
	Name        *string             `json:"name,omitempty"`
	Code        *string             `json:"code,omitempty"`
	Type        *store.LocationType `json:"type,omitempty"`
	ParentID    *string             `json:"parentId,omitempty"`
	Description *string             `json:"description,omitempty"`
	Order       *int                `json:"order,omitempty"`
	IsActive    *bool               `json:"isActive,omitempty"`
}

// DeleteOptions controls cascade behaviour. Without DeleteChildren a node
// that still has children is refused.
type DeleteOptions struct {
	DeleteChildren bool `json:"deleteChildren,omitempty"`
}

func (s *Service) List(ctx context.Context, p query.Params) (*query.Paginated[store.Location], error) {
	s.log.Debugw("locations.list", "search", p.Search)
	return simulate.Run(s.run, "locations.list", func() (*query.Paginated[store.Location], error) {
		if err := schema.Validate(p); err != nil {
			return nil, err
		}
		page, pg := query.Apply(s.store.ListLocations(), p, schema, fieldValue, s.limits())
		return query.NewPaginated(page, pg), nil
	})
}

func (s *Service) Get(ctx context.Context, id string) (*query.Response[store.Location], error) {
	s.log.Debugw("locations.get", "id", id)
	return simulate.Run(s.run, "locations.get", func() (*query.Response[store.Location], error) {
		l, ok := s.store.GetLocation(id)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindLocations), ID: id}
		}
		return query.NewResponse(l), nil
	})
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*query.Response[store.Location], error) {
	s.log.Debugw("locations.create", "code", in.Code)
	return simulate.Run(s.run, "locations.create", func() (*query.Response[store.Location], error) {
		if err := validateLocation(in.Name, in.Code, in.Type); err != nil {
			return nil, err
		}
		if in.ParentID != "" {
			if _, ok := s.store.GetLocation(in.ParentID); !ok {
				return nil, &apierr.NotFoundError{Kind: string(store.KindLocations), ID: in.ParentID}
			}
		}
		if err := s.checkCodeUnique(in.Code, ""); err != nil {
			return nil, err
		}
		now := utils.NowUTC()
		l := store.Location{
			ID:          utils.NewEntityID(),
			Name:        in.Name,
			Code:        in.Code,
			Type:        in.Type,
			ParentID:    in.ParentID,
			Description: in.Description,
			Order:       in.Order,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.store.SetLocation(l)
		return query.NewResponse(l), nil
	})
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*query.Response[store.Location], error) {
	s.log.Debugw("locations.update", "id", id)
	return simulate.Run(s.run, "locations.update", func() (*query.Response[store.Location], error) {
		l, ok := s.store.GetLocation(id)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindLocations), ID: id}
		}
		if in.Name != nil {
			l.Name = *in.Name
		}
		if in.Code != nil {
			l.Code = *in.Code
		}
		if in.Type != nil {
			l.Type = *in.Type
		}
		if in.Description != nil {
			l.Description = *in.Description
		}
		if in.Order != nil {
			l.Order = *in.Order
		}
		if in.IsActive != nil {
			l.IsActive = *in.IsActive
		}
		if in.ParentID != nil && *in.ParentID != l.ParentID {
			if err := s.checkReparent(id, *in.ParentID); err != nil {
				return nil, err
			}
			l.ParentID = *in.ParentID
		}
		if err := validateLocation(l.Name, l.Code, l.Type); err != nil {
			return nil, err
		}
		if err := s.checkCodeUnique(l.Code, id); err != nil {
			return nil, err
		}
		l.UpdatedAt = utils.NowUTC()
		s.store.SetLocation(l)
		return query.NewResponse(l), nil
	})
}

func (s *Service) Delete(ctx context.Context, id string, opts DeleteOptions) (*query.Response[[]string], error) {
	s.log.Debugw("locations.delete", "id", id, "deleteChildren", opts.DeleteChildren)
	return simulate.Run(s.run, "locations.delete", func() (*query.Response[[]string], error) {
		if _, ok := s.store.GetLocation(id); !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindLocations), ID: id}
		}
		descendants := s.descendantIDs(id)
		if len(descendants) > 0 && !opts.DeleteChildren {
			fe := apierr.FieldErrors{}
			fe.Add("deleteChildren", "location has child locations; set deleteChildren to remove the subtree")
			return nil, fe.Err()
		}
		// delete bottom-up: descendants were collected depth-first, so the
		// reversed order removes leaves before their parents
		deleted := make([]string, 0, len(descendants)+1)
		for i := len(descendants) - 1; i >= 0; i-- {
			s.store.DeleteLocation(descendants[i])
			deleted = append(deleted, descendants[i])
		}
		s.store.DeleteLocation(id)
		deleted = append(deleted, id)
		return query.NewResponse(deleted), nil
	})
}

// Tree assembles the full hierarchy: first pass clones every node into an
// id-keyed map with an empty child list, second pass attaches each node to
// its parent or promotes it to root when the parent is absent.
func (s *Service) Tree(ctx context.Context) (*query.Response[[]*TreeNode], error) {
	s.log.Debugw("locations.tree")
	return simulate.Run(s.run, "locations.tree", func() (*query.Response[[]*TreeNode], error) {
		flat := s.store.ListLocations()
		nodes := make(map[string]*TreeNode, len(flat))
		for _, l := range flat {
			nodes[l.ID] = &TreeNode{Location: l, Children: []*TreeNode{}}
		}
		var roots []*TreeNode
		for _, l := range flat {
			node := nodes[l.ID]
			if l.ParentID == "" {
				roots = append(roots, node)
				continue
			}
			parent, ok := nodes[l.ParentID]
			if !ok {
				roots = append(roots, node)
				continue
			}
			parent.Children = append(parent.Children, node)
		}
		sortTree(roots)
		return query.NewResponse(roots), nil
	})
}

func sortTree(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Order != nodes[j].Order {
			return nodes[i].Order < nodes[j].Order
		}
		return nodes[i].Name < nodes[j].Name
	})
	for _, n := range nodes {
		sortTree(n.Children)
	}
}

// descendantIDs walks the child relation depth-first from id.
func (s *Service) descendantIDs(id string) []string {
	children := map[string][]string{}
	for _, l := range s.store.ListLocations() {
		if l.ParentID != "" {
			children[l.ParentID] = append(children[l.ParentID], l.ID)
		}
	}
	var out []string
	var walk func(string)
	walk = func(cur string) {
		for _, child := range children[cur] {
			out = append(out, child)
			walk(child)
		}
	}
	walk(id)
	return out
}

// checkReparent rejects self-parenting and any parent inside the node's own
// descendant set; the store is untouched on failure.
func (s *Service) checkReparent(id, newParentID string) error {
	if newParentID == "" {
		return nil
	}
	if newParentID == id {
		fe := apierr.FieldErrors{}
		fe.Add("parentId", "location cannot be its own parent")
		return fe.Err()
	}
	if _, ok := s.store.GetLocation(newParentID); !ok {
		return &apierr.NotFoundError{Kind: string(store.KindLocations), ID: newParentID}
	}
	for _, desc := range s.descendantIDs(id) {
		if desc == newParentID {
			fe := apierr.FieldErrors{}
			fe.Add("parentId", "new parent is a descendant of this location")
			return fe.Err()
		}
	}
	return nil
}

func validateLocation(name, code string, typ store.LocationType) error {
	fe := apierr.FieldErrors{}
	if strings.TrimSpace(name) == "" {
		fe.Add("name", "is required")
	}
	if strings.TrimSpace(code) == "" {
		fe.Add("code", "is required")
	}
	if !store.ValidLocationType(typ) {
		fe.Add("type", "must be one of facility, department, zone, building, floor, area, equipment")
	}
	return fe.Err()
}

func (s *Service) checkCodeUnique(code, excludeID string) error {
	for _, other := range s.store.ListLocations() {
		if other.ID == excludeID {
			continue
		}
		if strings.EqualFold(other.Code, code) {
			return &apierr.ConflictError{Field: "code", Value: code}
		}
	}
	return nil
}
