package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"schoolride-backend/application/ports"
	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/valueobjects"
	apperrors "schoolride-backend/pkg/errors"
	"schoolride-backend/pkg/utils"
)

// UpdatePersonCommand represents a partial update to a person.
// Nil fields are left unchanged.
type UpdatePersonCommand struct {
	PersonID  string                `json:"person_id" validate:"required,uuid"`
	FirstName *string               `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string               `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Gender    *string               `json:"gender,omitempty" validate:"omitempty,gender"`
	Birthdate *string               `json:"birthdate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Email     *string               `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *PhoneInput           `json:"phone,omitempty"`
	Addresses *[]PickupAddressInput `json:"addresses,omitempty" validate:"omitempty,dive"`
}

// Validate validates the command
func (cmd UpdatePersonCommand) Validate() error {
	if cmd.PersonID == "" {
		return errors.New("person ID is required")
	}
	if cmd.Gender != nil && !valueobjects.Gender(*cmd.Gender).IsValid() {
		return errors.New("gender must be one of male, female, other")
	}
	if cmd.Birthdate != nil {
		if _, err := utils.ParseDate(*cmd.Birthdate); err != nil {
			return errors.New("birthdate must be a date in YYYY-MM-DD format")
		}
	}
	return nil
}

// UpdatePersonHandler handles the UpdatePersonCommand
type UpdatePersonHandler struct {
	persons   ports.PersonRepository
	mirror    ports.MirrorStore
	publisher ports.EventPublisher
	geocoder  ports.Geocoder
	cache     ports.Cache
	logger    *zap.Logger
}

// NewUpdatePersonHandler creates a new handler instance
func NewUpdatePersonHandler(
	persons ports.PersonRepository,
	mirror ports.MirrorStore,
	publisher ports.EventPublisher,
	geocoder ports.Geocoder,
	cache ports.Cache,
	logger *zap.Logger,
) *UpdatePersonHandler {
	return &UpdatePersonHandler{
		persons:   persons,
		mirror:    mirror,
		publisher: publisher,
		geocoder:  geocoder,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the update person command
func (h *UpdatePersonHandler) Handle(ctx context.Context, cmd UpdatePersonCommand) (*entities.Person, error) {
	id, err := valueobjects.NewPersonIDFromString(cmd.PersonID)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	person, err := h.persons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, apperrors.NewNotFoundError("person " + cmd.PersonID)
	}

	if cmd.FirstName != nil || cmd.LastName != nil {
		firstName := person.FirstName()
		lastName := person.LastName()
		if cmd.FirstName != nil {
			firstName = *cmd.FirstName
		}
		if cmd.LastName != nil {
			lastName = *cmd.LastName
		}
		if err := person.Rename(firstName, lastName); err != nil {
			return nil, err
		}
	}

	if cmd.Gender != nil {
		if err := person.UpdateGender(valueobjects.Gender(*cmd.Gender)); err != nil {
			return nil, err
		}
	}

	if cmd.Birthdate != nil {
		birthdate, err := utils.ParseDate(*cmd.Birthdate)
		if err != nil {
			return nil, apperrors.NewValidationError("birthdate must be a date in YYYY-MM-DD format")
		}
		if err := person.UpdateBirthdate(birthdate); err != nil {
			return nil, err
		}
	}

	if cmd.Email != nil || cmd.Phone != nil {
		email := person.Email()
		phone := person.Phone()
		if cmd.Email != nil {
			email = *cmd.Email
		}
		if cmd.Phone != nil {
			converted, err := toPhone(cmd.Phone)
			if err != nil {
				return nil, err
			}
			phone = converted
		}
		if err := person.UpdateContact(email, phone); err != nil {
			return nil, err
		}
	}

	if cmd.Addresses != nil {
		addresses, err := toPickupAddresses(*cmd.Addresses)
		if err != nil {
			return nil, err
		}
		backfillLocations(ctx, h.geocoder, h.logger, addresses)
		if err := person.SetAddresses(addresses); err != nil {
			return nil, err
		}
	}

	person.MarkUpdated()

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
