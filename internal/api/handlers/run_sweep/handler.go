package run_sweep

import (
	"net/http"

	"github.com/m04kA/BRB-BookingService/internal/api/handlers"
)

type Handler struct {
	useCase ExpireReservationsUseCase
	logger  Logger
}

func NewHandler(useCase ExpireReservationsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// SweepResponse результат прогона просрочки
type SweepResponse struct {
	Expired int `json:"expired"`
}

// Handle POST /api/v1/admin/sweep
// Ручной запуск прогона просрочки, в дополнение к периодическому по cron
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	expired, err := h.useCase.Execute(r.Context())
	if err != nil {
		h.logger.Error("POST /admin/sweep - Sweep failed after %d expirations: %v", expired, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /admin/sweep - Sweep finished: %d reservations expired", expired)
	handlers.RespondJSON(w, http.StatusOK, SweepResponse{Expired: expired})
}
