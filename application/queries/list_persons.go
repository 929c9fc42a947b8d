package queries

import (
	"context"
	"errors"

	"schoolride-backend/application/ports"
)

// ListPersonsQuery requests a page of persons, optionally filtered
type ListPersonsQuery struct {
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=active archived"`
	Page     int    `json:"page" validate:"min=1"`
	PageSize int    `json:"page_size" validate:"min=1,max=100"`
}

// Validate validates the query
func (q ListPersonsQuery) Validate() error {
	if q.Page < 1 {
		return errors.New("page must be at least 1")
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		return errors.New("page size must be between 1 and 100")
	}
	return nil
}

// ListPersonsHandler handles the ListPersonsQuery
type ListPersonsHandler struct {
	persons ports.PersonRepository
}

// NewListPersonsHandler creates a new handler instance
func NewListPersonsHandler(persons ports.PersonRepository) *ListPersonsHandler {
	return &ListPersonsHandler{persons: persons}
}

// Handle executes the query
func (h *ListPersonsHandler) Handle(ctx context.Context, query ListPersonsQuery) (*PersonListView, error) {
	filter := ports.PersonFilter{
		Status: query.Status,
		Limit:  query.PageSize,
		Offset: (query.Page - 1) * query.PageSize,
	}

	persons, total, err := h.persons.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]PersonView, 0, len(persons))
	for _, person := range persons {
		items = append(items, *NewPersonView(person))
	}

	return &PersonListView{
		Items:    items,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}
