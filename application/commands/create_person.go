package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"schoolride-backend/application/ports"
	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/valueobjects"
	"schoolride-backend/pkg/utils"
)

// CreatePersonCommand represents the command to register a new person
type CreatePersonCommand struct {
	PersonID  string               `json:"person_id" validate:"omitempty,uuid"`
	FirstName string               `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string               `json:"last_name" validate:"required,min=1,max=100"`
	Gender    string               `json:"gender" validate:"required,gender"`
	Birthdate string               `json:"birthdate" validate:"required,datetime=2006-01-02"`
	Email     string               `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *PhoneInput          `json:"phone,omitempty"`
	Addresses []PickupAddressInput `json:"addresses,omitempty" validate:"dive"`
}

// Validate validates the command
func (cmd CreatePersonCommand) Validate() error {
	if cmd.FirstName == "" || cmd.LastName == "" {
		return errors.New("first and last name are required")
	}
	if !valueobjects.Gender(cmd.Gender).IsValid() {
		return errors.New("gender must be one of male, female, other")
	}
	if _, err := utils.ParseDate(cmd.Birthdate); err != nil {
		return errors.New("birthdate must be a date in YYYY-MM-DD format")
	}
	return nil
}

// CreatePersonHandler handles the CreatePersonCommand
type CreatePersonHandler struct {
	persons   ports.PersonRepository
	mirror    ports.MirrorStore
	publisher ports.EventPublisher
	geocoder  ports.Geocoder
	cache     ports.Cache
	logger    *zap.Logger
}

// NewCreatePersonHandler creates a new handler instance
func NewCreatePersonHandler(
	persons ports.PersonRepository,
	mirror ports.MirrorStore,
	publisher ports.EventPublisher,
	geocoder ports.Geocoder,
	cache ports.Cache,
	logger *zap.Logger,
) *CreatePersonHandler {
	return &CreatePersonHandler{
		persons:   persons,
		mirror:    mirror,
		publisher: publisher,
		geocoder:  geocoder,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the create person command
func (h *CreatePersonHandler) Handle(ctx context.Context, cmd CreatePersonCommand) (*entities.Person, error) {
	birthdate, err := utils.ParseDate(cmd.Birthdate)
	if err != nil {
		return nil, err
	}

	phone, err := toPhone(cmd.Phone)
	if err != nil {
		return nil, err
	}

	addresses, err := toPickupAddresses(cmd.Addresses)
	if err != nil {
		return nil, err
	}

	backfillLocations(ctx, h.geocoder, h.logger, addresses)

	person, err := entities.NewPerson(entities.PersonParams{
		ID:        cmd.PersonID,
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Gender:    valueobjects.Gender(cmd.Gender),
		Birthdate: birthdate,
		Email:     cmd.Email,
		Phone:     phone,
		Addresses: addresses,
	})
	if err != nil {
		return nil, err
	}

	if err := h.persons.Save(ctx, person); err != nil {
		return nil, err
	}

	if err := h.mirror.MirrorPerson(ctx, person); err != nil {
		h.logger.Warn("Failed to mirror person to secondary store",
			zap.String("personID", person.ID().String()),
			zap.Error(err),
		)
	}

	if err := h.publisher.PublishBatch(ctx, person.GetUncommittedEvents()); err != nil {
		h.logger.Warn("Failed to publish person events",
			zap.String("personID", person.ID().String()),
			zap.Error(err),
		)
	}
	person.MarkEventsAsCommitted()

	invalidateQueryCache(ctx, h.cache)

	return person, nil
}
