package commands

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"schoolride-backend/application/ports"
	"schoolride-backend/domain/core/valueobjects"
	"schoolride-backend/domain/events"
	apperrors "schoolride-backend/pkg/errors"
)

// DeleteStudentCommand represents the command to remove a student record
type DeleteStudentCommand struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
}

// Validate validates the command
func (cmd DeleteStudentCommand) Validate() error {
	if cmd.StudentID == "" {
		return errors.New("student ID is required")
	}
	return nil
}

// DeleteStudentHandler handles the DeleteStudentCommand
type DeleteStudentHandler struct {
	students  ports.StudentRepository
	mirror    ports.MirrorStore
	publisher ports.EventPublisher
	cache     ports.Cache
	logger    *zap.Logger
}

// NewDeleteStudentHandler creates a new handler instance
func NewDeleteStudentHandler(
	students ports.StudentRepository,
	mirror ports.MirrorStore,
	publisher ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *DeleteStudentHandler {
	return &DeleteStudentHandler{
		students:  students,
		mirror:    mirror,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the delete student command
func (h *DeleteStudentHandler) Handle(ctx context.Context, cmd DeleteStudentCommand) error {
	id, err := valueobjects.NewPersonIDFromString(cmd.StudentID)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	// The school ID is needed to address the secondary store record
	student, err := h.students.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if student == nil {
		return apperrors.NewNotFoundError("student " + cmd.StudentID)
	}

	if err := h.students.Delete(ctx, id); err != nil {
		return err
	}

	if err := h.mirror.RemoveStudent(ctx, student.SchoolID(), id); err != nil {
		h.logger.Warn("Failed to remove student from secondary store",
			zap.String("studentID", cmd.StudentID),
			zap.Error(err),
		)
	}

	event := events.NewStudentDeleted(cmd.StudentID, student.SchoolID(), time.Now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish student deleted event",
			zap.String("studentID", cmd.StudentID),
			zap.Error(err),
		)
	}

	invalidateQueryCache(ctx, h.cache)

	return nil
}
