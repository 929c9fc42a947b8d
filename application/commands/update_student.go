package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"schoolride-backend/application/ports"
	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/validators"
	"schoolride-backend/domain/core/valueobjects"
	apperrors "schoolride-backend/pkg/errors"
	"schoolride-backend/pkg/utils"
)

// UpdateStudentCommand represents a partial update to a student.
// Nil fields are left unchanged.
type UpdateStudentCommand struct {
	StudentID    string                `json:"student_id" validate:"required,uuid"`
	FirstName    *string               `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName     *string               `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Gender       *string               `json:"gender,omitempty" validate:"omitempty,gender"`
	Grade        *string               `json:"grade,omitempty" validate:"omitempty,grade"`
	Birthdate    *string               `json:"birthdate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Age          *int                  `json:"age,omitempty" validate:"omitempty,min=3,max=20"`
	Email        *string               `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *PhoneInput           `json:"phone,omitempty"`
	Addresses    *[]PickupAddressInput `json:"addresses,omitempty" validate:"omitempty,dive"`
	Parents      *[]ParentInput        `json:"parents,omitempty" validate:"omitempty,min=1,dive"`
	SpecialNeeds *SpecialNeedsInput    `json:"special_needs,omitempty"`
	Notes        *NotesInput           `json:"notes,omitempty"`
}

// Validate validates the command
func (cmd UpdateStudentCommand) Validate() error {
	if cmd.StudentID == "" {
		return errors.New("student ID is required")
	}
	if cmd.Gender != nil && !valueobjects.Gender(*cmd.Gender).IsValid() {
		return errors.New("gender must be one of male, female, other")
	}
	if cmd.Grade != nil && !valueobjects.Grade(*cmd.Grade).IsValid() {
		return errors.New("invalid grade")
	}
	if cmd.Birthdate != nil {
		if _, err := utils.ParseDate(*cmd.Birthdate); err != nil {
			return errors.New("birthdate must be a date in YYYY-MM-DD format")
		}
	}
	if cmd.Age != nil && (*cmd.Age < entities.MinStudentAge || *cmd.Age > entities.MaxStudentAge) {
		return errors.New("age must be between 3 and 20")
	}
	if cmd.Parents != nil && len(*cmd.Parents) == 0 {
		return errors.New("at least one parent is required")
	}
	return nil
}

// UpdateStudentHandler handles the UpdateStudentCommand
type UpdateStudentHandler struct {
	students  ports.StudentRepository
	mirror    ports.MirrorStore
	publisher ports.EventPublisher
	geocoder  ports.Geocoder
	validator *validators.StudentValidator
	cache     ports.Cache
	logger    *zap.Logger
}

// NewUpdateStudentHandler creates a new handler instance
func NewUpdateStudentHandler(
	students ports.StudentRepository,
	mirror ports.MirrorStore,
	publisher ports.EventPublisher,
	geocoder ports.Geocoder,
	validator *validators.StudentValidator,
	cache ports.Cache,
	logger *zap.Logger,
) *UpdateStudentHandler {
	return &UpdateStudentHandler{
		students:  students,
		mirror:    mirror,
		publisher: publisher,
		geocoder:  geocoder,
		validator: validator,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the update student command
func (h *UpdateStudentHandler) Handle(ctx context.Context, cmd UpdateStudentCommand) (*entities.Student, error) {
	id, err := valueobjects.NewPersonIDFromString(cmd.StudentID)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	student, err := h.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, apperrors.NewNotFoundError("student " + cmd.StudentID)
	}

	if err := h.applyChanges(ctx, student, cmd); err != nil {
		return nil, err
	}

	if err := h.validator.ValidateStudent(student); err != nil {
		return nil, err
	}

	student.MarkUpdated()

	if err := h.students.Save(ctx, student); err != nil {
		return nil, err
	}

	if err := h.mirror.MirrorStudent(ctx, student); err != nil {
		h.logger.Warn("Failed to mirror student to secondary store",
			zap.String("studentID", student.ID().String()),
			zap.Error(err),
		)
	}

	if err := h.publisher.PublishBatch(ctx, student.GetUncommittedEvents()); err != nil {
		h.logger.Warn("Failed to publish student events",
			zap.String("studentID", student.ID().String()),
			zap.Error(err),
		)
	}
	student.MarkEventsAsCommitted()

	invalidateQueryCache(ctx, h.cache)

	return student, nil
}

// applyChanges applies each present field to the entity
func (h *UpdateStudentHandler) applyChanges(ctx context.Context, student *entities.Student, cmd UpdateStudentCommand) error {
	if cmd.FirstName != nil || cmd.LastName != nil {
		firstName := student.FirstName()
		lastName := student.LastName()
		if cmd.FirstName != nil {
			firstName = *cmd.FirstName
		}
		if cmd.LastName != nil {
			lastName = *cmd.LastName
		}
		if err := student.Rename(firstName, lastName); err != nil {
			return err
		}
	}

	if cmd.Gender != nil {
		if err := student.UpdateGender(valueobjects.Gender(*cmd.Gender)); err != nil {
			return err
		}
	}

	if cmd.Grade != nil {
		if err := student.Promote(valueobjects.Grade(*cmd.Grade)); err != nil {
			return err
		}
	}

	if cmd.Birthdate != nil {
		birthdate, err := utils.ParseDate(*cmd.Birthdate)
		if err != nil {
			return apperrors.NewValidationError("birthdate must be a date in YYYY-MM-DD format")
		}
		if err := student.UpdateBirthdate(birthdate); err != nil {
			return err
		}
	}

	if cmd.Age != nil {
		if err := student.UpdateAge(*cmd.Age); err != nil {
			return err
		}
	}

	if cmd.Email != nil || cmd.Phone != nil {
		email := student.Email()
		phone := student.Phone()
		if cmd.Email != nil {
			email = *cmd.Email
		}
		if cmd.Phone != nil {
			converted, err := toPhone(cmd.Phone)
			if err != nil {
				return err
			}
			phone = converted
		}
		if err := student.UpdateContact(email, phone); err != nil {
			return err
		}
	}

	if cmd.Addresses != nil {
		addresses, err := toPickupAddresses(*cmd.Addresses)
		if err != nil {
			return err
		}
		backfillLocations(ctx, h.geocoder, h.logger, addresses)
		if err := student.SetAddresses(addresses); err != nil {
			return err
		}
	}

	if cmd.Parents != nil {
		parents, err := toParents(*cmd.Parents)
		if err != nil {
			return err
		}
		if err := student.SetParents(parents); err != nil {
			return err
		}
	}

	if cmd.SpecialNeeds != nil {
		needs := entities.SpecialNeeds{
			HasSpecialNeeds:  cmd.SpecialNeeds.HasSpecialNeeds,
			SpecialNeedsType: cmd.SpecialNeeds.SpecialNeedsType,
		}
		if err := student.SetSpecialNeeds(needs); err != nil {
			return err
		}
	}

	if cmd.Notes != nil {
		notes := entities.Notes{
			SchoolNotes: cmd.Notes.SchoolNotes,
			DriverNotes: cmd.Notes.DriverNotes,
		}
		if err := student.SetNotes(notes); err != nil {
			return err
		}
	}

	return nil
}
