package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"schoolride-backend/application/commands"
	"schoolride-backend/application/commands/bus"
	"schoolride-backend/application/queries"
	querybus "schoolride-backend/application/queries/bus"
	"schoolride-backend/pkg/common"
	apperrors "schoolride-backend/pkg/errors"
	"schoolride-backend/pkg/utils"
)

// Request bodies are capped at 1 MiB
const maxBodyBytes = 1 << 20

// StudentHandler serves the student CRUD endpoints
type StudentHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// CreateStudent handles POST /students
func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var cmd commands.CreateStudentCommand
	if err := common.ParseJSONBody(r, &cmd, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}

	// Generate the ID up front so the response can reference it
	if cmd.StudentID == "" {
		cmd.StudentID = uuid.New().String()
	}

	if err := utils.ValidateStruct(cmd); err != nil {
		common.RespondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to create student", zap.Error(err))
		respondCommandError(w, err)
		return
	}

	h.respondWithStudent(w, r, cmd.StudentID, http.StatusCreated)
}

// GetStudent handles GET /students/{studentID}
func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	result, err := h.queryBus.Ask(r.Context(), queries.GetStudentQuery{StudentID: studentID})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// UpdateStudent handles PUT /students/{studentID}
func (h *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	var cmd commands.UpdateStudentCommand
	if err := common.ParseJSONBody(r, &cmd, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	cmd.StudentID = chi.URLParam(r, "studentID")

	if err := utils.ValidateStruct(cmd); err != nil {
		common.RespondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to update student",
			zap.String("studentID", cmd.StudentID),
			zap.Error(err),
		)
		respondCommandError(w, err)
		return
	}

	h.respondWithStudent(w, r, cmd.StudentID, http.StatusOK)
}

// DeleteStudent handles DELETE /students/{studentID}
func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	cmd := commands.DeleteStudentCommand{StudentID: studentID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to delete student",
			zap.String("studentID", studentID),
			zap.Error(err),
		)
		respondCommandError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListStudents handles GET /students
func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	pagination := common.ExtractPaginationParams(r)

	query := queries.ListStudentsQuery{
		SchoolID: r.URL.Query().Get("school_id"),
		Grade:    r.URL.Query().Get("grade"),
		Status:   r.URL.Query().Get("status"),
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondCommandError(w, err)
		return
	}

	list, ok := result.(*queries.StudentListView)
	if !ok {
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected query result")
		return
	}

	common.RespondWithMeta(w, http.StatusOK, list.Items, &common.MetaInfo{
		RequestID:  common.ExtractRequestID(r),
		Timestamp:  utils.NowRFC3339(),
		Pagination: common.BuildPaginationMeta(list.Page, list.PageSize, list.Total),
	})
}

// respondWithStudent reads the written record back and returns it
func (h *StudentHandler) respondWithStudent(w http.ResponseWriter, r *http.Request, studentID string, status int) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetStudentQuery{StudentID: studentID})
	if err != nil {
		// The write succeeded; fall back to the bare ID
		h.logger.Warn("Failed to read back student",
			zap.String("studentID", studentID),
			zap.Error(err),
		)
		common.RespondJSON(w, status, map[string]string{"id": studentID})
		return
	}

	common.RespondJSON(w, status, result)
}

// respondCommandError maps bus errors to HTTP responses. Validation
// failures surface from the bus as wrapped plain errors.
func respondCommandError(w http.ResponseWriter, err error) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		common.RespondAppError(w, err)
		return
	}

	if strings.Contains(err.Error(), "validation failed") {
		common.RespondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
}
