// Package dictionary manages reference-data categories and their entry
// trees. System categories are read-only. Entry trees are depth-bounded and
// acyclic; every entry mutation recomputes the owning category's cached
// ItemCount.
package dictionary

import (
	"context"
	"fmt"
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

// MaxEntryDepth bounds entry nesting within a category: a root entry is at
// depth 1, so at most two levels of children fit underneath.
const MaxEntryDepth = 3

var schema = query.Schema{
	Searchable: []string{"code", "name", "description"},
	Fields: map[string]query.FieldType{
		"code":      query.FieldString,
		"name":      query.FieldString,
		"type":      query.FieldString,
		"itemCount": query.FieldNumber,
		"createdAt": query.FieldTime,
	},
}

func fieldValue(c store.DictionaryCategory, field string) (any, bool) {
	switch field {
	case "code":
		return c.Code, true
	case "name":
		return c.Name, true
	case "description":
		return c.Description, true
	case "type":
		return c.Type, true
	case "itemCount":
		return c.ItemCount, true
	case "createdAt":
		return c.CreatedAt, true
	}
	return nil, false
}

// EntryNode is one node of a category's assembled entry tree.
type EntryNode struct {
	store.DictionaryEntry
	Children []*EntryNode `json:"children"`
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

type CategoryInput struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CategoryUpdateInput struct {
	Code        *string `json:"code,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type EntryInput struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
	Order    int    `json:"order,omitempty"`
}

type EntryUpdateInput struct {
	Code     *string `json:"code,omitempty"`
	Name     *string `json:"name,omitempty"`
	ParentID *string `json:"parentId,omitempty"`
	Order    *int    `json:"order,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

func (s *Service) ListCategories(ctx context.Context, p query.Params) (*query.Paginated[store.DictionaryCategory], error) {
	s.log.Debugw("dictionary.listCategories", "search", p.Search)
	return simulate.Run(s.run, "dictionary.listCategories", func() (*query.Paginated[store.DictionaryCategory], error) {
		if err := schema.Validate(p); err != nil {
			return nil, err
		}
		page, pg := query.Apply(s.store.ListDictionaryCategories(), p, schema, fieldValue, s.limits())
		return query.NewPaginated(page, pg), nil
	})
}

func (s *Service) GetCategory(ctx context.Context, id string) (*query.Response[store.DictionaryCategory], error) {
	s.log.Debugw("dictionary.getCategory", "id", id)
	return simulate.Run(s.run, "dictionary.getCategory", func() (*query.Response[store.DictionaryCategory], error) {
		c, ok := s.store.GetDictionaryCategory(id)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindDictionaryCategories), ID: id}
		}
		return query.NewResponse(c), nil
	})
}

// CreateCategory always creates a custom category; system categories exist
// only through seeding.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*query.Response[store.DictionaryCategory], error) {
	s.log.Debugw("dictionary.createCategory", "code", in.Code)
	return simulate.Run(s.run, "dictionary.createCategory", func() (*query.Response[store.DictionaryCategory], error) {
		if err := validateCategory(in.Code, in.Name); err != nil {
			return nil, err
		}
		if err := s.checkCategoryCodeUnique(in.Code, ""); err != nil {
			return nil, err
		}
		now := utils.NowUTC()
		c := store.DictionaryCategory{
			ID:          utils.NewEntityID(),
			Code:        in.Code,
			Name:        in.Name,
			Type:        store.DictionaryCategoryCustom,
			Description: in.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.store.SetDictionaryCategory(c)
		return query.NewResponse(c), nil
	})
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryUpdateInput) (*query.Response[store.DictionaryCategory], error) {
	s.log.Debugw("dictionary.updateCategory", "id", id)
	return simulate.Run(s.run, "dictionary.updateCategory", func() (*query.Response[store.DictionaryCategory], error) {
		c, ok := s.store.GetDictionaryCategory(id)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindDictionaryCategories), ID: id}
		}
		if c.Type == store.DictionaryCategorySystem {
			return nil, &apierr.ForbiddenError{Reason: fmt.Sprintf("system category %q is read-only", c.Code)}
		}
		if in.Code != nil {
			c.Code = *in.Code
		}
		if in.Name != nil {
			c.Name = *in.Name
		}
		if in.Description != nil {
			c.Description = *in.Description
		}
		if err := validateCategory(c.Code, c.Name); err != nil {
			return nil, err
		}
		if err := s.checkCategoryCodeUnique(c.Code, id); err != nil {
			return nil, err
		}
		c.UpdatedAt = utils.NowUTC()
		s.store.SetDictionaryCategory(c)
		return query.NewResponse(c), nil
	})
}

// DeleteCategory removes a custom category together with all its entries.
func (s *Service) DeleteCategory(ctx context.Context, id string) (*query.Response[string], error) {
	s.log.Debugw("dictionary.deleteCategory", "id", id)
	return simulate.Run(s.run, "dictionary.deleteCategory", func() (*query.Response[string], error) {
		c, ok := s.store.GetDictionaryCategory(id)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindDictionaryCategories), ID: id}
		}
		if c.Type == store.DictionaryCategorySystem {
			return nil, &apierr.ForbiddenError{Reason: fmt.Sprintf("system category %q cannot be deleted", c.Code)}
		}
		s.store.DeleteDictionaryCategory(id)
		return query.NewResponse(id), nil
	})
}

// ListEntries returns a category's entries flat, sorted by Order then Name.
func (s *Service) ListEntries(ctx context.Context, categoryID string) (*query.Response[[]store.DictionaryEntry], error) {
	s.log.Debugw("dictionary.listEntries", "categoryId", categoryID)
	return simulate.Run(s.run, "dictionary.listEntries", func() (*query.Response[[]store.DictionaryEntry], error) {
		if _, ok := s.store.GetDictionaryCategory(categoryID); !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindDictionaryCategories), ID: categoryID}
		}
		entries := s.store.ListDictionaryEntries(categoryID)
		sortEntries(entries)
		return query.NewResponse(entries), nil
	})
}

// EntryTree assembles a category's entries into their tree form.
func (s *Service) EntryTree(ctx context.Context, categoryID string) (*query.Response[[]*EntryNode], error) {
	s.log.Debugw("dictionary.entryTree", "categoryId", categoryID)
	return simulate.Run(s.run, "dictionary.entryTree", func() (*query.Response[[]*EntryNode], error) {
		if _, ok := s.store.GetDictionaryCategory(categoryID); !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindDictionaryCategories), ID: categoryID}
		}
		flat := s.store.ListDictionaryEntries(categoryID)
		sortEntries(flat)
		nodes := make(map[string]*EntryNode, len(flat))
		for _, e := range flat {
			nodes[e.ID] = &EntryNode{DictionaryEntry: e, Children: []*EntryNode{}}
		}
		var roots []*EntryNode
		for _, e := range flat {
			node := nodes[e.ID]
			if e.ParentID == "" {
				roots = append(roots, node)
				continue
			}
			parent, ok := nodes[e.ParentID]
			if !ok {
				roots = append(roots, node)
				continue
			}
			parent.Children = append(parent.Children, node)
		}
		return query.NewResponse(roots), nil
	})
}

func (s *Service) CreateEntry(ctx context.Context, categoryID string, in EntryInput) (*query.Response[store.DictionaryEntry], error) {
	s.log.Debugw("dictionary.createEntry", "categoryId", categoryID, "code", in.Code)
	return simulate.Run(s.run, "dictionary.createEntry", func() (*query.Response[store.DictionaryEntry], error) {
		if _, ok := s.store.GetDictionaryCategory(categoryID); !ok {
			return nil, &apierr.NotFoundError{Kind: string(store.KindDictionaryCategories), ID: categoryID}
		}
		if err := validateEntry(in.Code, in.Name); err != nil {
			return nil, err
		}
		if err := s.checkEntryCodeUnique(categoryID, in.Code, ""); err != nil {
			return nil, err
		}
		if in.ParentID != "" {
			parent, ok := s.store.GetDictionaryEntry(categoryID, in.ParentID)
			if !ok {
				return nil, &apierr.NotFoundError{Kind: "dictionaryEntry", ID: in.ParentID}
			}
			if s.entryDepth(categoryID, parent.ID)+1 > MaxEntryDepth {
				fe := apierr.FieldErrors{}
				fe.Add("parentId", fmt.Sprintf("entries cannot nest deeper than %d levels", MaxEntryDepth))
				return nil, fe.Err()
			}
		}
		now := utils.NowUTC()
		e := store.DictionaryEntry{
			ID:         utils.NewEntityID(),
			CategoryID: categoryID,
			ParentID:   in.ParentID,
			Code:       in.Code,
			Name:       in.Name,
			Order:      in.Order,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		s.store.SetDictionaryEntry(e)
		s.refreshItemCount(categoryID)
		return query.NewResponse(e), nil
	})
}

func (s *Service) UpdateEntry(ctx context.Context, categoryID, entryID string, in EntryUpdateInput) (*query.Response[store.DictionaryEntry], error) {
	s.log.Debugw("dictionary.updateEntry", "categoryId", categoryID, "entryId", entryID)
	return simulate.Run(s.run, "dictionary.updateEntry", func() (*query.Response[store.DictionaryEntry], error) {
		e, ok := s.store.GetDictionaryEntry(categoryID, entryID)
		if !ok {
			return nil, &apierr.NotFoundError{Kind: "dictionaryEntry", ID: entryID}
		}
		if in.Code != nil {
			e.Code = *in.Code
		}
		if in.Name != nil {
			e.Name = *in.Name
		}
		if in.Order != nil {
			e.Order = *in.Order
		}
		if in.IsActive != nil {
			e.IsActive = *in.IsActive
		}
		if in.ParentID != nil && *in.ParentID != e.ParentID {
			if err := s.checkEntryReparent(categoryID, entryID, *in.ParentID); err != nil {
				return nil, err
			}
			e.ParentID = *in.ParentID
		}
		if err := validateEntry(e.Code, e.Name); err != nil {
			return nil, err
		}
		if err := s.checkEntryCodeUnique(categoryID, e.Code, entryID); err != nil {
			return nil, err
		}
		e.UpdatedAt = utils.NowUTC()
		s.store.SetDictionaryEntry(e)
		return query.NewResponse(e), nil
	})
}

// DeleteEntry removes an entry and its whole subtree.
func (s *Service) DeleteEntry(ctx context.Context, categoryID, entryID string) (*query.Response[[]string], error) {
	s.log.Debugw("dictionary.deleteEntry", "categoryId", categoryID, "entryId", entryID)
	return simulate.Run(s.run, "dictionary.deleteEntry", func() (*query.Response[[]string], error) {
		if _, ok := s.store.GetDictionaryEntry(categoryID, entryID); !ok {
			return nil, &apierr.NotFoundError{Kind: "dictionaryEntry", ID: entryID}
		}
		descendants := s.entryDescendants(categoryID, entryID)
		deleted := make([]string, 0, len(descendants)+1)
		for i := len(descendants) - 1; i >= 0; i-- {
			s.store.DeleteDictionaryEntry(categoryID, descendants[i])
			deleted = append(deleted, descendants[i])
		}
		s.store.DeleteDictionaryEntry(categoryID, entryID)
		deleted = append(deleted, entryID)
		s.refreshItemCount(categoryID)
		return query.NewResponse(deleted), nil
	})
}

func sortEntries(entries []store.DictionaryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Order != entries[j].Order {
			return entries[i].Order < entries[j].Order
		}
		return entries[i].Name < entries[j].Name
	})
}

// refreshItemCount recomputes the category's cached entry count.
func (s *Service) refreshItemCount(categoryID string) {
	n := s.store.CountDictionaryEntries(categoryID)
	s.store.UpdateDictionaryCategory(categoryID, func(c *store.DictionaryCategory) {
		c.ItemCount = n
		c.UpdatedAt = utils.NowUTC()
	})
}

// entryDepth counts the ancestor chain of id, itself included. A broken
// parent link terminates the walk instead of looping.
func (s *Service) entryDepth(categoryID, id string) int {
	depth := 0
	seen := map[string]bool{}
	for id != "" && !seen[id] {
		seen[id] = true
		depth++
		e, ok := s.store.GetDictionaryEntry(categoryID, id)
		if !ok {
			break
		}
		id = e.ParentID
	}
	return depth
}

func (s *Service) entryDescendants(categoryID, id string) []string {
	children := map[string][]string{}
	for _, e := range s.store.ListDictionaryEntries(categoryID) {
		if e.ParentID != "" {
			children[e.ParentID] = append(children[e.ParentID], e.ID)
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

// checkEntryReparent rejects self-parenting, parents inside the entry's own
// subtree, and moves that would push the subtree past the depth bound.
func (s *Service) checkEntryReparent(categoryID, id, newParentID string) error {
	if newParentID == "" {
		return nil
	}
	if newParentID == id {
		fe := apierr.FieldErrors{}
		fe.Add("parentId", "entry cannot be its own parent")
		return fe.Err()
	}
	if _, ok := s.store.GetDictionaryEntry(categoryID, newParentID); !ok {
		return &apierr.NotFoundError{Kind: "dictionaryEntry", ID: newParentID}
	}
	for _, desc := range s.entryDescendants(categoryID, id) {
		if desc == newParentID {
			fe := apierr.FieldErrors{}
			fe.Add("parentId", "new parent is a descendant of this entry")
			return fe.Err()
		}
	}
	// subtree height below the moved entry, itself included
	height := 1
	for _, desc := range s.entryDescendants(categoryID, id) {
		h := s.entryDepth(categoryID, desc) - s.entryDepth(categoryID, id) + 1
		if h > height {
			height = h
		}
	}
	if s.entryDepth(categoryID, newParentID)+height > MaxEntryDepth {
		fe := apierr.FieldErrors{}
		fe.Add("parentId", fmt.Sprintf("entries cannot nest deeper than %d levels", MaxEntryDepth))
		return fe.Err()
	}
	return nil
}

func validateCategory(code, name string) error {
	fe := apierr.FieldErrors{}
	if strings.TrimSpace(code) == "" {
		fe.Add("code", "is required")
	}
	if strings.TrimSpace(name) == "" {
		fe.Add("name", "is required")
	}
	return fe.Err()
}

func validateEntry(code, name string) error {
	fe := apierr.FieldErrors{}
	if strings.TrimSpace(code) == "" {
		fe.Add("code", "is required")
	}
	if strings.TrimSpace(name) == "" {
		fe.Add("name", "is required")
	}
	return fe.Err()
}

func (s *Service) checkCategoryCodeUnique(code, excludeID string) error {
	for _, other := range s.store.ListDictionaryCategories() {
		if other.ID == excludeID {
			continue
		}
		if strings.EqualFold(other.Code, code) {
			return &apierr.ConflictError{Field: "code", Value: code}
		}
	}
	return nil
}

func (s *Service) checkEntryCodeUnique(categoryID, code, excludeID string) error {
	for _, other := range s.store.ListDictionaryEntries(categoryID) {
		if other.ID == excludeID {
			continue
		}
		if strings.EqualFold(other.Code, code) {
			return &apierr.ConflictError{Field: "code", Value: code}
		}
	}
	return nil
}
