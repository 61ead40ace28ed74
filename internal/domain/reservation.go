package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/BRB-BookingService/pkg/types"
)

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusAwaitingPayment ReservationStatus = "awaiting_payment"
	StatusConfirmed       ReservationStatus = "confirmed"
	StatusCompleted       ReservationStatus = "completed"
	StatusCancelled       ReservationStatus = "cancelled"
)

var (
	// ErrInvalidTransition is returned when a lifecycle transition is not legal
	// from the current status
	ErrInvalidTransition = errors.New("domain: invalid reservation status transition")

	// ErrDeadlineNotReached is returned by Expire when the payment deadline
	// is still in the future
	ErrDeadlineNotReached = errors.New("domain: payment deadline not reached")

	// ErrUnknownStatus is returned when a persisted status string cannot be
	// mapped to the closed enumeration
	ErrUnknownStatus = errors.New("domain: unknown reservation status")
)

// ParseReservationStatus maps a persisted status string to the closed enumeration.
// Matching is case-insensitive and accepts legacy spellings found in historical
// data. Unrecognized values fail loudly instead of falling through.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "awaiting_payment", "awaiting payment", "pending":
		return StatusAwaitingPayment, nil
	case "confirmed", "paid":
		return StatusConfirmed, nil
	case "completed", "done":
		return StatusCompleted, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// Reservation represents a booked slot with a provider.
// Status is mutated only through the transition methods below; reservations are
// never deleted, only terminally statused, preserving history.
type Reservation struct {
	ID         int64
	ProviderID int64
	ServiceID  int64
	ClientID   int64

	BookingDate     time.Time        // calendar date of the slot
	StartTime       types.TimeString // slot start, time of day
	DurationMinutes int

	Status ReservationStatus

	// PaymentDeadline is set at creation for reservations entering
	// awaiting_payment and consumed exclusively by the expiration sweep.
	// NULL for legacy rows created before the deadline column existed.
	PaymentDeadline *time.Time

	// Denormalized service data for history
	ServiceName  string
	ServicePrice float64

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReservation creates a reservation in the initial awaiting_payment state
// with a payment deadline of now + paymentTTL
func NewReservation(
	providerID, serviceID, clientID int64,
	bookingDate time.Time,
	startTime types.TimeString,
	durationMinutes int,
	serviceName string,
	servicePrice float64,
	now time.Time,
	paymentTTL time.Duration,
) *Reservation {
	deadline := now.Add(paymentTTL)
	return &Reservation{
		ProviderID:      providerID,
		ServiceID:       serviceID,
		ClientID:        clientID,
		BookingDate:     bookingDate,
		StartTime:       startTime,
		DurationMinutes: durationMinutes,
		Status:          StatusAwaitingPayment,
		PaymentDeadline: &deadline,
		ServiceName:     serviceName,
		ServicePrice:    servicePrice,
	}
}

// OccupiesSlot returns true if the reservation still holds its slot.
// Only cancellation releases a slot.
func (r *Reservation) OccupiesSlot() bool {
	return r.Status != StatusCancelled
}

// IsTerminal returns true if no further transitions are possible
func (r *Reservation) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusCancelled
}

// CanBeCancelled returns true if the reservation may still be cancelled explicitly
func (r *Reservation) CanBeCancelled() bool {
	return !r.IsTerminal()
}

// Confirm transitions awaiting_payment -> confirmed (payment received)
func (r *Reservation) Confirm() error {
	if r.Status != StatusAwaitingPayment {
		return fmt.Errorf("%w: confirm from %q", ErrInvalidTransition, r.Status)
	}
	r.Status = StatusConfirmed
	return nil
}

// Complete transitions confirmed -> completed.
// This is an administrator action only: elapsed time alone never completes or
// cancels a confirmed reservation, even when its start instant is in the past.
func (r *Reservation) Complete() error {
	if r.Status != StatusConfirmed {
		return fmt.Errorf("%w: complete from %q", ErrInvalidTransition, r.Status)
	}
	r.Status = StatusCompleted
	return nil
}

// Expire transitions awaiting_payment -> cancelled once the payment deadline has
// passed. This is the only transition the expiration sweep is permitted to invoke.
// Legacy rows without a recorded deadline fall back to creation time + default TTL.
func (r *Reservation) Expire(now time.Time) error {
	if r.Status != StatusAwaitingPayment {
		return fmt.Errorf("%w: expire from %q", ErrInvalidTransition, r.Status)
	}
	if now.Before(r.EffectivePaymentDeadline()) {
		return ErrDeadlineNotReached
	}
	r.Status = StatusCancelled
	reason := "payment deadline expired"
	r.CancellationReason = &reason
	r.CancelledAt = &now
	return nil
}

// Cancel transitions any non-terminal state -> cancelled.
// Explicit client or administrative action, independent of time.
func (r *Reservation) Cancel(reason string, at time.Time) error {
	if r.IsTerminal() {
		return fmt.Errorf("%w: cancel from %q", ErrInvalidTransition, r.Status)
	}
	r.Status = StatusCancelled
	r.CancellationReason = &reason
	r.CancelledAt = &at
	return nil
}

// EffectivePaymentDeadline returns the recorded payment deadline, or the legacy
// fallback of creation time + default TTL when no deadline was stored
func (r *Reservation) EffectivePaymentDeadline() time.Time {
	if r.PaymentDeadline != nil {
		return *r.PaymentDeadline
	}
	return r.CreatedAt.Add(DefaultPaymentTTLMinutes * time.Minute)
}
