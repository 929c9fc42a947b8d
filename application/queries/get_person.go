package queries

import (
	"context"
	"errors"

	"schoolride-backend/application/ports"
	"schoolride-backend/domain/core/valueobjects"
	apperrors "schoolride-backend/pkg/errors"
)

// GetPersonQuery requests a single person by ID
type GetPersonQuery struct {
	PersonID string `json:"person_id" validate:"required,uuid"`
}

// Validate validates the query
func (q GetPersonQuery) Validate() error {
	if q.PersonID == "" {
		return errors.New("person ID is required")
	}
	return nil
}

// GetPersonHandler handles the GetPersonQuery
type GetPersonHandler struct {
	persons ports.PersonRepository
}

// NewGetPersonHandler creates a new handler instance
func NewGetPersonHandler(persons ports.PersonRepository) *GetPersonHandler {
	return &GetPersonHandler{persons: persons}
}

// Handle executes the query
func (h *GetPersonHandler) Handle(ctx context.Context, query GetPersonQuery) (*PersonView, error) {
	id, err := valueobjects.NewPersonIDFromString(query.PersonID)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	person, err := h.persons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, apperrors.NewNotFoundError("person " + query.PersonID)
	}

	return NewPersonView(person), nil
}
