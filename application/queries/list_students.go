package queries

import (
	"context"
	"errors"

	"schoolride-backend/application/ports"
	"schoolride-backend/domain/core/valueobjects"
)

// ListStudentsQuery requests a page of students, optionally filtered
type ListStudentsQuery struct {
	SchoolID string `json:"school_id,omitempty"`
	Grade    string `json:"grade,omitempty" validate:"omitempty,grade"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=active archived"`
	Page     int    `json:"page" validate:"min=1"`
	PageSize int    `json:"page_size" validate:"min=1,max=100"`
}

// Validate validates the query
func (q ListStudentsQuery) Validate() error {
	if q.Page < 1 {
		return errors.New("page must be at least 1")
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		return errors.New("page size must be between 1 and 100")
	}
	if q.Grade != "" && !valueobjects.Grade(q.Grade).IsValid() {
		return errors.New("invalid grade")
	}
	return nil
}

// ListStudentsHandler handles the ListStudentsQuery
type ListStudentsHandler struct {
	students ports.StudentRepository
}

// NewListStudentsHandler creates a new handler instance
func NewListStudentsHandler(students ports.StudentRepository) *ListStudentsHandler {
	return &ListStudentsHandler{students: students}
}

// Handle executes the query
func (h *ListStudentsHandler) Handle(ctx context.Context, query ListStudentsQuery) (*StudentListView, error) {
	filter := ports.StudentFilter{
		SchoolID: query.SchoolID,
		Grade:    query.Grade,
		Status:   query.Status,
		Limit:    query.PageSize,
		Offset:   (query.Page - 1) * query.PageSize,
	}

	students, total, err := h.students.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]StudentView, 0, len(students))
	for _, student := range students {
		items = append(items, *NewStudentView(student))
	}

	return &StudentListView{
		Items:    items,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}
