package model_test

import (
	"testing"
	"time"

	"lodge/internal/domains/reservation/model"
	roomModel "lodge/internal/domains/room/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}

	return t
}

func active(id string, start, end string) model.Reservation {
	return model.Reservation{ID: id, RoomNumber: 101, StartDate: day(start), EndDate: day(end), Status: model.StatusActive}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{name: "one night", start: day("2024-01-10"), end: day("2024-01-11")},
		{name: "same day", start: day("2024-01-10"), end: day("2024-01-10"), wantErr: true},
		{name: "reversed", start: day("2024-01-15"), end: day("2024-01-10"), wantErr: true},
		{
			name:    "same day different clock",
			start:   day("2024-01-10").Add(2 * time.Hour),
			end:     day("2024-01-10").Add(20 * time.Hour),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := model.ValidateRange(tt.start, tt.end)

			if tt.wantErr {
				require.ErrorIs(t, err, model.ErrInvalidDateRange)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidatePartySize(t *testing.T) {
	require.NoError(t, model.ValidatePartySize(1))
	require.ErrorIs(t, model.ValidatePartySize(0), model.ErrInvalidPartySize)
	require.ErrorIs(t, model.ValidatePartySize(-2), model.ErrInvalidPartySize)
}

func TestReservation_Overlaps(t *testing.T) {
	existing := active("r-1", "2024-01-10", "2024-01-15")

	tests := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{name: "overlaps tail", start: "2024-01-12", end: "2024-01-20", want: true},
		{name: "overlaps head", start: "2024-01-05", end: "2024-01-11", want: true},
		{name: "contained", start: "2024-01-11", end: "2024-01-12", want: true},
		{name: "contains", start: "2024-01-01", end: "2024-01-31", want: true},
		{name: "identical", start: "2024-01-10", end: "2024-01-15", want: true},
		{name: "back to back after", start: "2024-01-15", end: "2024-01-20", want: false},
		{name: "back to back before", start: "2024-01-05", end: "2024-01-10", want: false},
		{name: "disjoint", start: "2024-02-01", end: "2024-02-03", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, existing.Overlaps(day(tt.start), day(tt.end)))
		})
	}
}

func TestFirstConflict(t *testing.T) {
	cancelled := active("r-2", "2024-01-12", "2024-01-14")
	cancelled.Status = model.StatusCancelled

	reservations := []model.Reservation{
		active("r-1", "2024-01-01", "2024-01-05"),
		cancelled,
		active("r-3", "2024-01-14", "2024-01-18"),
	}

	conflict, found := model.FirstConflict(reservations, day("2024-01-12"), day("2024-01-15"), "")
	require.True(t, found)
	assert.Equal(t, "r-3", conflict.ID)

	_, found = model.FirstConflict(reservations, day("2024-01-12"), day("2024-01-15"), "r-3")
	assert.False(t, found, "excluded reservation and cancelled ones never conflict")

	_, found = model.FirstConflict(reservations, day("2024-01-05"), day("2024-01-12"), "")
	assert.False(t, found)
}

func TestReservation_Transitions(t *testing.T) {
	reservation := model.New(101, model.Guest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, 2, day("2024-01-10"), day("2024-01-15"), "guest-1")

	assert.NotEmpty(t, reservation.ID)
	assert.Equal(t, model.StatusPending, reservation.Status)
	assert.Equal(t, "guest-1", reservation.CreatedBy)
	require.NoError(t, reservation.Validate())

	require.ErrorIs(t, reservation.Cancel(time.Now(), "clerk"), model.ErrIllegalTransition)

	require.NoError(t, reservation.Activate())
	assert.True(t, reservation.IsActive())
	require.ErrorIs(t, reservation.Activate(), model.ErrIllegalTransition)

	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)
	require.NoError(t, reservation.Cancel(now, "clerk"))
	assert.Equal(t, model.StatusCancelled, reservation.Status)
	require.NotNil(t, reservation.CancelledAt)
	assert.Equal(t, now, *reservation.CancelledAt)
	assert.Equal(t, "clerk", reservation.ModifiedBy)

	require.ErrorIs(t, reservation.Activate(), model.ErrIllegalTransition)
	require.ErrorIs(t, reservation.Cancel(now, "clerk"), model.ErrIllegalTransition)
}

func TestReservation_Validate(t *testing.T) {
	reservation := model.New(101, model.Guest{}, 0, day("2024-01-10"), day("2024-01-15"), "")
	require.ErrorIs(t, reservation.Validate(), model.ErrInvalidPartySize)

	reservation = model.New(101, model.Guest{}, 1, day("2024-01-15"), day("2024-01-10"), "")
	require.ErrorIs(t, reservation.Validate(), model.ErrInvalidDateRange)
}

func TestErrRoomNotFound_SharedWithCatalog(t *testing.T) {
	assert.ErrorIs(t, model.ErrRoomNotFound, roomModel.ErrRoomNotFound)
}
