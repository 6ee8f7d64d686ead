package repository

import (
	"errors"
	"fmt"
	"testing"

	"lodge/internal/domains/reservation/model"
	"lodge/shared/constant"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "exclusion violation",
			err:  fmt.Errorf("failed to insert (reservation): %w", &pq.Error{Code: constant.PqErrorCodeExclusionViolation}),
			want: model.ErrRoomUnavailable,
		},
		{
			name: "foreign key violation",
			err:  &pq.Error{Code: constant.PqErrorCodeFkViolation},
			want: model.ErrRoomNotFound,
		},
		{
			name: "date range check",
			err:  &pq.Error{Code: constant.PqErrorCodeCheckViolation, Constraint: dateRangeConstraint},
			want: model.ErrInvalidDateRange,
		},
		{
			name: "other check",
			err:  &pq.Error{Code: constant.PqErrorCodeCheckViolation, Constraint: "reservations_party_size_check"},
			want: model.ErrStorage,
		},
		{
			name: "connection failure",
			err:  errors.New("dial tcp: connection refused"),
			want: model.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.err), tt.want)
		})
	}

	assert.NoError(t, translate(nil))
}

func TestByRoom(t *testing.T) {
	filter := byRoom(101, false)
	where, args := filter.GetWhereClause()

	assert.Equal(t, "(reservations.room_number = :room_number AND reservations.status = :status)", where)
	assert.Equal(t, 101, args["room_number"])
	assert.Equal(t, model.StatusActive, args["status"])

	filter = byRoom(101, true)
	where, _ = filter.GetWhereClause()

	assert.Equal(t, "(reservations.room_number = :room_number)", where)
}
