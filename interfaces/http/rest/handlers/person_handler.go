package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"schoolride-backend/application/commands"
	"schoolride-backend/application/commands/bus"
	"schoolride-backend/application/queries"
	querybus "schoolride-backend/application/queries/bus"
	"schoolride-backend/pkg/common"
	"schoolride-backend/pkg/utils"
)

// PersonHandler serves the person CRUD endpoints
type PersonHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewPersonHandler creates a new person handler
func NewPersonHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *PersonHandler {
	return &PersonHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// CreatePerson handles POST /persons
func (h *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var cmd commands.CreatePersonCommand
	if err := common.ParseJSONBody(r, &cmd, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}

	if cmd.PersonID == "" {
		cmd.PersonID = uuid.New().String()
	}

	if err := utils.ValidateStruct(cmd); err != nil {
		common.RespondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to create person", zap.Error(err))
		respondCommandError(w, err)
		return
	}

	h.respondWithPerson(w, r, cmd.PersonID, http.StatusCreated)
}

// GetPerson handles GET /persons/{personID}
func (h *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personID")

	result, err := h.queryBus.Ask(r.Context(), queries.GetPersonQuery{PersonID: personID})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// UpdatePerson handles PUT /persons/{personID}
func (h *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	var cmd commands.UpdatePersonCommand
	if err := common.ParseJSONBody(r, &cmd, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	cmd.PersonID = chi.URLParam(r, "personID")

	if err := utils.ValidateStruct(cmd); err != nil {
		common.RespondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to update person",
			zap.String("personID", cmd.PersonID),
			zap.Error(err),
		)
		respondCommandError(w, err)
		return
	}

	h.respondWithPerson(w, r, cmd.PersonID, http.StatusOK)
}

// DeletePerson handles DELETE /persons/{personID}
func (h *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personID")

	cmd := commands.DeletePersonCommand{PersonID: personID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to delete person",
			zap.String("personID", personID),
			zap.Error(err),
		)
		respondCommandError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPersons handles GET /persons
func (h *PersonHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	pagination := common.ExtractPaginationParams(r)

	query := queries.ListPersonsQuery{
		Status:   r.URL.Query().Get("status"),
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondCommandError(w, err)
		return
	}

	list, ok := result.(*queries.PersonListView)
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

func (h *PersonHandler) respondWithPerson(w http.ResponseWriter, r *http.Request, personID string, status int) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetPersonQuery{PersonID: personID})
	if err != nil {
		h.logger.Warn("Failed to read back person",
			zap.String("personID", personID),
			zap.Error(err),
		)
		common.RespondJSON(w, status, map[string]string{"id": personID})
		return
	}

	common.RespondJSON(w, status, result)
}
