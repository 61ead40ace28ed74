package update_provider_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/BRB-BookingService/internal/api/handlers"
	scheduleService "github.com/m04kA/BRB-BookingService/internal/service/schedule"
	"github.com/m04kA/BRB-BookingService/internal/service/schedule/models"
)

const (
	msgInvalidProviderID  = "некорректный ID мастера"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgProviderNotFound   = "мастер не найден"
	msgInvalidSchedule    = "некорректная конфигурация расписания"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/providers/{providerId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /providers/{providerId}/schedule - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	var req models.UpdateScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /providers/%d/schedule - Invalid request body: %v", providerID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateSchedule(r.Context(), providerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, scheduleService.ErrProviderNotFound):
			h.logger.Warn("PUT /providers/%d/schedule - Provider not found", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, scheduleService.ErrInvalidSchedule):
			h.logger.Warn("PUT /providers/%d/schedule - Invalid schedule: %v", providerID, err)
			handlers.RespondBadRequest(w, msgInvalidSchedule)

		default:
			h.logger.Error("PUT /providers/%d/schedule - Failed to update schedule: %v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /providers/%d/schedule - Schedule updated: %d windows", providerID, len(result.Windows))
	handlers.RespondJSON(w, http.StatusOK, result)
}
