package models

import (
	"time"

	"github.com/m04kA/BRB-BookingService/internal/domain"
	"github.com/m04kA/BRB-BookingService/pkg/types"
)

// PauseData перерыв внутри рабочего окна
type PauseData struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// WorkingWindowData рабочее окно одного дня недели
type WorkingWindowData struct {
	Weekday   int         `json:"weekday"`
	StartTime string      `json:"startTime"`
	EndTime   string      `json:"endTime"`
	Pauses    []PauseData `json:"pauses,omitempty"`
}

// ScheduleResponse недельное расписание мастера
type ScheduleResponse struct {
	ProviderID int64               `json:"providerId"`
	Windows    []WorkingWindowData `json:"windows"`
}

// UpdateScheduleRequest запрос на полную замену расписания мастера
type UpdateScheduleRequest struct {
	Windows []WorkingWindowData `json:"windows"`
}

// FromDomainSchedule конвертирует доменную модель расписания в модель ответа
func FromDomainSchedule(s *domain.ProviderSchedule) *ScheduleResponse {
	resp := &ScheduleResponse{
		ProviderID: s.ProviderID,
		Windows:    make([]WorkingWindowData, 0, len(s.Windows)),
	}

	for _, w := range s.Windows {
		window := WorkingWindowData{
			Weekday:   int(w.Weekday),
			StartTime: w.StartTime.String(),
			EndTime:   w.EndTime.String(),
			Pauses:    make([]PauseData, 0, len(w.Pauses)),
		}
		for _, p := range w.Pauses {
			window.Pauses = append(window.Pauses, PauseData{
				StartTime: p.StartTime.String(),
				EndTime:   p.EndTime.String(),
			})
		}
		resp.Windows = append(resp.Windows, window)
	}

	return resp
}

// ToDomainWindows конвертирует запрос в доменные рабочие окна.
// Значения времени здесь не валидируются - это задача domain.ProviderSchedule.Validate
func (r *UpdateScheduleRequest) ToDomainWindows(providerID int64) []*domain.WorkingWindow {
	windows := make([]*domain.WorkingWindow, 0, len(r.Windows))
	for _, w := range r.Windows {
		window := &domain.WorkingWindow{
			ProviderID: providerID,
			Weekday:    time.Weekday(w.Weekday),
			StartTime:  types.TimeString(w.StartTime),
			EndTime:    types.TimeString(w.EndTime),
			Pauses:     make([]domain.Pause, 0, len(w.Pauses)),
		}
		for _, p := range w.Pauses {
			window.Pauses = append(window.Pauses, domain.Pause{
				StartTime: types.TimeString(p.StartTime),
				EndTime:   types.TimeString(p.EndTime),
			})
		}
		windows = append(windows, window)
	}
	return windows
}
