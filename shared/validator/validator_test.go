package validator_test

import (
	"net/http"
	"strings"
	"testing"

	"lodge/shared/failure"
	"lodge/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stayRequest struct {
	RoomNumber int    `json:"room_number" validate:"required,gte=1"`
	Email      string `json:"email"       validate:"required,email"`
	PartySize  int    `json:"party_size"  validate:"gte=1,lte=20"`
	StartDate  string `json:"start_date"  validate:"required,date"`
	EndDate    string `json:"end_date"    validate:"required,date"`
}

func validStay() stayRequest {
	return stayRequest{
		RoomNumber: 101,
		Email:      "ada@example.com",
		PartySize:  2,
		StartDate:  "2024-01-10",
		EndDate:    "2024-01-15",
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *stayRequest)
		wantMsg string
	}{
		{name: "valid", mutate: func(*stayRequest) {}},
		{name: "missing room", mutate: func(r *stayRequest) { r.RoomNumber = 0 }, wantMsg: "room_number is required"},
		{name: "bad email", mutate: func(r *stayRequest) { r.Email = "ada" }, wantMsg: "email must be a valid email address"},
		{name: "party too small", mutate: func(r *stayRequest) { r.PartySize = 0 }, wantMsg: "party_size must be greater than or equal to 1"},
		{name: "bad date", mutate: func(r *stayRequest) { r.StartDate = "10/01/2024" }, wantMsg: "start_date must be a date formatted as YYYY-MM-DD"},
		{name: "impossible date", mutate: func(r *stayRequest) { r.EndDate = "2024-02-30" }, wantMsg: "end_date must be a date formatted as YYYY-MM-DD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validStay()
			tt.mutate(&req)

			err := validator.ValidateStruct(&req)

			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("2024-01-10", "date"))
	assert.Error(t, validator.ValidateVar("tomorrow", "date"))
	assert.NoError(t, validator.ValidateVar(3, "gte=1"))
	assert.Error(t, validator.ValidateVar(0, "gte=1"))
	assert.NoError(t, validator.ValidateVar("", "empty"))
	assert.Error(t, validator.ValidateVar("x", "empty"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "valid body",
			body: `{"room_number":101,"email":"ada@example.com","party_size":2,"start_date":"2024-01-10","end_date":"2024-01-15"}`,
		},
		{
			name:    "unknown field",
			body:    `{"room_number":101,"email":"ada@example.com","party_size":2,"start_date":"2024-01-10","end_date":"2024-01-15","vip":true}`,
			wantErr: true,
		},
		{name: "malformed", body: `{"room_number":`, wantErr: true},
		{name: "empty object", body: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req stayRequest

			err := validator.Validate(strings.NewReader(tt.body), &req)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, 101, req.RoomNumber)
		})
	}
}
