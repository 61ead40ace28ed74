package get_provider_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/BRB-BookingService/internal/api/handlers"
	scheduleService "github.com/m04kA/BRB-BookingService/internal/service/schedule"
)

const (
	msgInvalidProviderID = "некорректный ID мастера"
	msgProviderNotFound  = "мастер не найден"
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

// Handle GET /api/v1/providers/{providerId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /providers/{providerId}/schedule - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	result, err := h.service.GetSchedule(r.Context(), providerID)
	if err != nil {
		switch {
		case errors.Is(err, scheduleService.ErrProviderNotFound):
			h.logger.Warn("GET /providers/%d/schedule - Provider not found", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		default:
			h.logger.Error("GET /providers/%d/schedule - Failed to get schedule: %v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /providers/%d/schedule - Schedule returned: %d windows", providerID, len(result.Windows))
	handlers.RespondJSON(w, http.StatusOK, result)
}
