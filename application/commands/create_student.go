package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"schoolride-backend/application/ports"
	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/validators"
	"schoolride-backend/domain/core/valueobjects"
	"schoolride-backend/pkg/utils"
)

// CreateStudentCommand represents the command to register a new student
type CreateStudentCommand struct {
	StudentID    string               `json:"student_id" validate:"omitempty,uuid"`
	SchoolID     string               `json:"school_id" validate:"required"`
	FirstName    string               `json:"first_name" validate:"required,min=1,max=100"`
	LastName     string               `json:"last_name" validate:"required,min=1,max=100"`
	Gender       string               `json:"gender" validate:"required,gender"`
	Grade        string               `json:"grade" validate:"required,grade"`
	Birthdate    string               `json:"birthdate" validate:"required,datetime=2006-01-02"`
	Age          int                  `json:"age" validate:"required,min=3,max=20"`
	Email        string               `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *PhoneInput          `json:"phone,omitempty"`
	Addresses    []PickupAddressInput `json:"addresses,omitempty" validate:"dive"`
	Parents      []ParentInput        `json:"parents" validate:"required,min=1,dive"`
	SpecialNeeds SpecialNeedsInput    `json:"special_needs"`
	Notes        NotesInput           `json:"notes"`
}

// Validate validates the command
func (cmd CreateStudentCommand) Validate() error {
	if cmd.SchoolID == "" {
		return errors.New("school ID is required")
	}
	if cmd.FirstName == "" || cmd.LastName == "" {
		return errors.New("first and last name are required")
	}
	if !valueobjects.Gender(cmd.Gender).IsValid() {
		return errors.New("gender must be one of male, female, other")
	}
	if !valueobjects.Grade(cmd.Grade).IsValid() {
		return errors.New("invalid grade")
	}
	if _, err := utils.ParseDate(cmd.Birthdate); err != nil {
		return errors.New("birthdate must be a date in YYYY-MM-DD format")
	}
	if cmd.Age < entities.MinStudentAge || cmd.Age > entities.MaxStudentAge {
		return errors.New("age must be between 3 and 20")
	}
	if len(cmd.Parents) == 0 {
		return errors.New("at least one parent is required")
	}
	return nil
}

// CreateStudentHandler handles the CreateStudentCommand
type CreateStudentHandler struct {
	students  ports.StudentRepository
	mirror    ports.MirrorStore
	publisher ports.EventPublisher
	geocoder  ports.Geocoder
	validator *validators.StudentValidator
	cache     ports.Cache
	logger    *zap.Logger
}

// NewCreateStudentHandler creates a new handler instance
func NewCreateStudentHandler(
	students ports.StudentRepository,
	mirror ports.MirrorStore,
	publisher ports.EventPublisher,
	geocoder ports.Geocoder,
	validator *validators.StudentValidator,
	cache ports.Cache,
	logger *zap.Logger,
) *CreateStudentHandler {
	return &CreateStudentHandler{
		students:  students,
		mirror:    mirror,
		publisher: publisher,
		geocoder:  geocoder,
		validator: validator,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the create student command
func (h *CreateStudentHandler) Handle(ctx context.Context, cmd CreateStudentCommand) (*entities.Student, error) {
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

	// Backfill coordinates for addresses that arrived without them
	backfillLocations(ctx, h.geocoder, h.logger, addresses)

	parents, err := toParents(cmd.Parents)
	if err != nil {
		return nil, err
	}

	student, err := entities.NewStudent(entities.StudentParams{
		ID:        cmd.StudentID,
		SchoolID:  cmd.SchoolID,
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Gender:    valueobjects.Gender(cmd.Gender),
		Grade:     valueobjects.Grade(cmd.Grade),
		Birthdate: birthdate,
		Age:       cmd.Age,
		Email:     cmd.Email,
		Phone:     phone,
		Addresses: addresses,
		Parents:   parents,
		SpecialNeeds: entities.SpecialNeeds{
			HasSpecialNeeds:  cmd.SpecialNeeds.HasSpecialNeeds,
			SpecialNeedsType: cmd.SpecialNeeds.SpecialNeedsType,
		},
		Notes: entities.Notes{
			SchoolNotes: cmd.Notes.SchoolNotes,
			DriverNotes: cmd.Notes.DriverNotes,
		},
	})
	if err != nil {
		return nil, err
	}

	// Cross-field rules beyond what the constructor enforces
	if err := h.validator.ValidateStudent(student); err != nil {
		return nil, err
	}

	if err := h.students.Save(ctx, student); err != nil {
		return nil, err
	}

	// Secondary store writes are best-effort
	if err := h.mirror.MirrorStudent(ctx, student); err != nil {
		h.logger.Warn("Failed to mirror student to secondary store",
			zap.String("studentID", student.ID().String()),
			zap.Error(err),
		)
	}

	// Publish domain events; failures don't roll back the write
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

// backfillLocations geocodes pickup addresses that have no coordinates.
// Geocoding failures are logged and skipped.
func backfillLocations(ctx context.Context, geocoder ports.Geocoder, logger *zap.Logger, addresses []entities.PickupAddress) {
	if geocoder == nil {
		return
	}

	for i := range addresses {
		if addresses[i].Location != nil {
			continue
		}

		location, err := geocoder.Geocode(ctx, addresses[i].Address.FreeForm())
		if err != nil {
			logger.Warn("Failed to geocode pickup address",
				zap.String("label", addresses[i].Label),
				zap.Error(err),
			)
			continue
		}
		addresses[i].Location = &location
	}
}

// invalidateQueryCache drops cached query results after a write
func invalidateQueryCache(ctx context.Context, cache ports.Cache) {
	if cache == nil {
		return
	}
	_ = cache.Clear(ctx)
}
