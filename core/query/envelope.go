package query

import (
	"time"

	"osprey-ehs/core/utils"
)

// Meta is attached to every response; RequestID is freshly generated per call.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId"`
}

type Pagination struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"pageSize"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// Response is the single-value envelope returned by non-list operations.
type Response[T any] struct {
	Data T    `json:"data"`
	Meta Meta `json:"meta"`
}

// Paginated is the list envelope carrying pagination metadata.
type Paginated[T any] struct {
	Data       []T        `json:"data"`
	Meta       Meta       `json:"meta"`
	Pagination Pagination `json:"pagination"`
}

func newMeta() Meta {
	return Meta{Timestamp: utils.NowUTC(), RequestID: utils.NewRequestID()}
}

func NewResponse[T any](data T) *Response[T] {
	return &Response[T]{Data: data, Meta: newMeta()}
}

func NewPaginated[T any](data []T, pg Pagination) *Paginated[T] {
	if data == nil {
		data = []T{}
	}
	return &Paginated[T]{Data: data, Meta: newMeta(), Pagination: pg}
}
