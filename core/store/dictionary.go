package store

import "time"

type DictionaryCategoryType string

const (
	DictionaryCategorySystem DictionaryCategoryType = "system"
	DictionaryCategoryCustom DictionaryCategoryType = "custom"
)

// DictionaryCategory groups dictionary entries. System categories are
// read-only through normal CRUD. ItemCount is cached and explicitly
// recomputed after any entry mutation touching the category.
type DictionaryCategory struct {
	ID          string                 `json:"id"`
	Code        string                 `json:"code"`
	Name        string                 `json:"name"`
	Type        DictionaryCategoryType `json:"type"`
	Description string                 `json:"description,omitempty"`
	ItemCount   int                    `json:"itemCount"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// DictionaryEntry is a node in a bounded-depth tree within one category.
// Entries are keyed per category, not in a global collection.
type DictionaryEntry struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"categoryId"`
	ParentID   string    `json:"parentId,omitempty"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Order      int       `json:"order"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
