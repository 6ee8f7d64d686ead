package model

import (
	"errors"
	"fmt"
	"time"

	roomModel "lodge/internal/domains/room/model"
	"lodge/shared/model"
	"lodge/shared/timezone"

	"github.com/google/uuid"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID          = "id"
	FieldRoomNumber  = "room_number"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldStatus      = "status"
	FieldCancelledAt = "cancelled_at"
)

var (
	ErrInvalidDateRange    = errors.New("start date must be before end date")
	ErrInvalidPartySize    = errors.New("party size must be at least 1")
	ErrCapacityExceeded    = errors.New("party size exceeds room capacity")
	ErrRoomUnavailable     = errors.New("room is already reserved for the requested dates")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrIllegalTransition   = errors.New("illegal reservation status transition")
	ErrStorage             = errors.New("reservation storage error")

	// ErrRoomNotFound is the catalog error, so either side of a lookup matches it.
	ErrRoomNotFound = roomModel.ErrRoomNotFound
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// transitions lists the only legal moves. Cancelled is terminal.
var transitions = map[Status]Status{
	StatusPending: StatusActive,
	StatusActive:  StatusCancelled,
}

type Guest struct {
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
}

// Reservation holds one room for the half-open day range [StartDate, EndDate).
type Reservation struct {
	ID          string     `db:"id"`
	RoomNumber  int        `db:"room_number"`
	PartySize   int        `db:"party_size"`
	StartDate   time.Time  `db:"start_date"`
	EndDate     time.Time  `db:"end_date"`
	Status      Status     `db:"status"`
	CancelledAt *time.Time `db:"cancelled_at"`
	Guest
	model.Metadata
}

// New builds a pending reservation with a fresh identity. Dates are truncated to days.
func New(roomNumber int, guest Guest, partySize int, start, end time.Time, user string) Reservation {
	return Reservation{
		ID:         uuid.NewString(),
		RoomNumber: roomNumber,
		PartySize:  partySize,
		StartDate:  timezone.Day(start),
		EndDate:    timezone.Day(end),
		Status:     StatusPending,
		Guest:      guest,
		Metadata:   model.NewMetadata(timezone.Now(), user),
	}
}

// ValidateRange requires start < end once both are reduced to calendar days.
func ValidateRange(start, end time.Time) error {
	if !timezone.Day(start).Before(timezone.Day(end)) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidDateRange, timezone.FormatDate(start), timezone.FormatDate(end))
	}

	return nil
}

func ValidatePartySize(partySize int) error {
	if partySize < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPartySize, partySize)
	}

	return nil
}

// Validate runs every check that needs no storage.
func (r *Reservation) Validate() error {
	if err := ValidateRange(r.StartDate, r.EndDate); err != nil {
		return err
	}

	return ValidatePartySize(r.PartySize)
}

func (r *Reservation) IsActive() bool {
	return r.Status == StatusActive
}

// Overlaps reports whether [start, end) intersects the reservation's range.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartDate.Before(timezone.Day(end)) && timezone.Day(start).Before(r.EndDate)
}

// Transition moves the reservation to next or fails with ErrIllegalTransition.
func (r *Reservation) Transition(next Status) error {
	if transitions[r.Status] != next {
		return fmt.Errorf("%w: %s to %s", ErrIllegalTransition, r.Status, next)
	}

	r.Status = next

	return nil
}

func (r *Reservation) Activate() error {
	return r.Transition(StatusActive)
}

// Cancel marks an active reservation cancelled. The row is kept for audit.
func (r *Reservation) Cancel(now time.Time, user string) error {
	if err := r.Transition(StatusCancelled); err != nil {
		return err
	}

	r.CancelledAt = &now
	r.ModifiedAt = now
	r.ModifiedBy = user

	return nil
}

// FirstConflict returns the first active reservation overlapping [start, end), skipping
// the reservation with id except.
func FirstConflict(reservations []Reservation, start, end time.Time, except string) (Reservation, bool) {
	for _, existing := range reservations {
		if existing.ID == except || !existing.IsActive() {
			continue
		}

		if existing.Overlaps(start, end) {
			return existing, true
		}
	}

	return Reservation{}, false
}
