package queries

import (
	"context"
	"errors"

	"schoolride-backend/application/ports"
	"schoolride-backend/domain/core/valueobjects"
	apperrors "schoolride-backend/pkg/errors"
)

// GetStudentQuery requests a single student by ID
type GetStudentQuery struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
}

// Validate validates the query
func (q GetStudentQuery) Validate() error {
	if q.StudentID == "" {
		return errors.New("student ID is required")
	}
	return nil
}

// GetStudentHandler handles the GetStudentQuery
type GetStudentHandler struct {
	students ports.StudentRepository
}

// NewGetStudentHandler creates a new handler instance
func NewGetStudentHandler(students ports.StudentRepository) *GetStudentHandler {
	return &GetStudentHandler{students: students}
}

// Handle executes the query
func (h *GetStudentHandler) Handle(ctx context.Context, query GetStudentQuery) (*StudentView, error) {
	id, err := valueobjects.NewPersonIDFromString(query.StudentID)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	student, err := h.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, apperrors.NewNotFoundError("student " + query.StudentID)
	}

	return NewStudentView(student), nil
}
