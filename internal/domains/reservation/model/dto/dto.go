package dto

import (
	"fmt"
	"time"

	"lodge/internal/domains/reservation/model"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/timezone"
)

type ReserveRequest struct {
	RoomNumber int    `json:"room_number" validate:"required,min=1"`
	FirstName  string `json:"first_name"  validate:"required,max=100"`
	LastName   string `json:"last_name"   validate:"required,max=100"`
	Email      string `json:"email"       validate:"required,email,max=255"`
	PartySize  int    `json:"party_size"  validate:"required,min=1"`
	StartDate  string `json:"start_date"  validate:"required,date"`
	EndDate    string `json:"end_date"    validate:"required,date"`
}

func (r *ReserveRequest) Guest() model.Guest {
	return model.Guest{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}
}

// Range parses the requested days. Ordering is checked by the store, not here.
func (r *ReserveRequest) Range() (start, end time.Time, err error) {
	return ParseRange(r.StartDate, r.EndDate)
}

// ParseRange parses a pair of YYYY-MM-DD days.
func ParseRange(startDate, endDate string) (start, end time.Time, err error) {
	if start, err = timezone.ParseDate(startDate); err != nil {
		return start, end, fmt.Errorf("%w: invalid start date %q", model.ErrInvalidDateRange, startDate)
	}

	if end, err = timezone.ParseDate(endDate); err != nil {
		return start, end, fmt.Errorf("%w: invalid end date %q", model.ErrInvalidDateRange, endDate)
	}

	return start, end, nil
}

type ReservationResponse struct {
	ID          string  `json:"id"`
	RoomNumber  int     `json:"room_number"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	PartySize   int     `json:"party_size"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Status      string  `json:"status"`
	CancelledAt *string `json:"cancelled_at,omitempty"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(model model.Reservation) {
	r.ID = model.ID
	r.RoomNumber = model.RoomNumber
	r.FirstName = model.FirstName
	r.LastName = model.LastName
	r.Email = model.Email
	r.PartySize = model.PartySize
	r.StartDate = timezone.FormatDate(model.StartDate)
	r.EndDate = timezone.FormatDate(model.EndDate)
	r.Status = string(model.Status)
	r.CancelledAt = nil

	if model.CancelledAt != nil {
		cancelledAt := timezone.Format(*model.CancelledAt, constant.DateFormat)
		r.CancelledAt = &cancelledAt
	}

	r.Metadata.FromModel(model.Metadata)
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page,omitempty"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = 0

	if limit > 0 {
		r.TotalPage = shared.CalculateTotalPage(totalData, limit)
	}

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}

type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

type AvailabilityResponse struct {
	RoomNumber int    `json:"room_number"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Free       bool   `json:"free"`
}
