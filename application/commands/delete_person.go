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

// DeletePersonCommand represents the command to remove a person record
type DeletePersonCommand struct {
	PersonID string `json:"person_id" validate:"required,uuid"`
}

// Validate validates the command
func (cmd DeletePersonCommand) Validate() error {
	if cmd.PersonID == "" {
		return errors.New("person ID is required")
	}
	return nil
}

// DeletePersonHandler handles the DeletePersonCommand
type DeletePersonHandler struct {
	persons   ports.PersonRepository
	mirror    ports.MirrorStore
	publisher ports.EventPublisher
	cache     ports.Cache
	logger    *zap.Logger
}

// NewDeletePersonHandler creates a new handler instance
func NewDeletePersonHandler(
	persons ports.PersonRepository,
	mirror ports.MirrorStore,
	publisher ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *DeletePersonHandler {
	return &DeletePersonHandler{
		persons:   persons,
		mirror:    mirror,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the delete person command
func (h *DeletePersonHandler) Handle(ctx context.Context, cmd DeletePersonCommand) error {
	id, err := valueobjects.NewPersonIDFromString(cmd.PersonID)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	person, err := h.persons.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if person == nil {
		return apperrors.NewNotFoundError("person " + cmd.PersonID)
	}

	if err := h.persons.Delete(ctx, id); err != nil {
		return err
	}

	if err := h.mirror.RemovePerson(ctx, id); err != nil {
		h.logger.Warn("Failed to remove person from secondary store",
			zap.String("personID", cmd.PersonID),
			zap.Error(err),
		)
	}

	event := events.NewPersonDeleted(cmd.PersonID, time.Now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish person deleted event",
			zap.String("personID", cmd.PersonID),
			zap.Error(err),
		)
	}

	invalidateQueryCache(ctx, h.cache)

	return nil
}
