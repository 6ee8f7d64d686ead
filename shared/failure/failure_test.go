package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"lodge/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRoomTaken = errors.New("room is already reserved for the requested dates")

func TestFailure_Error(t *testing.T) {
	f := &failure.Failure{
		Code:    http.StatusBadRequest,
		Message: "test error message",
	}

	assert.Equal(t, "test error message", f.Error())
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		input   error
		wantNil bool
	}{
		{name: "conflict keeps cause", code: http.StatusConflict, input: errRoomTaken},
		{name: "wrapped cause is still matched", code: http.StatusConflict, input: fmt.Errorf("book room 101: %w", errRoomTaken)},
		{name: "nil error stays nil", code: http.StatusConflict, input: nil, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := failure.Wrap(tt.code, tt.input)

			if tt.wantNil {
				assert.NoError(t, result)

				return
			}

			require.Error(t, result)
			assert.Equal(t, tt.code, failure.GetCode(result))
			assert.Equal(t, tt.input.Error(), result.Error())
			assert.ErrorIs(t, result, errRoomTaken)
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad request from string", err: failure.BadRequestFromString("start must be before end"), code: http.StatusBadRequest, message: "start must be before end"},
		{name: "bad request from error", err: failure.BadRequest(errors.New("validation failed")), code: http.StatusBadRequest, message: "validation failed"},
		{name: "unauthorized", err: failure.Unauthorized("token expired"), code: http.StatusUnauthorized, message: "token expired"},
		{name: "internal", err: failure.InternalError(errors.New("database connection failed")), code: http.StatusInternalServerError, message: "database connection failed"},
		{name: "not found", err: failure.NotFound("room not found"), code: http.StatusNotFound, message: "room not found"},
		{name: "conflict", err: failure.Conflict("room unavailable"), code: http.StatusConflict, message: "room unavailable"},
		{name: "unprocessable", err: failure.UnprocessableEntity("party too large"), code: http.StatusUnprocessableEntity, message: "party too large"},
		{name: "unavailable", err: failure.ServiceUnavailable(errors.New("storage timeout")), code: http.StatusServiceUnavailable, message: "storage timeout"},
		{name: "forbidden", err: failure.Forbidden("Access denied"), code: http.StatusForbidden, message: "Access denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f *failure.Failure

			require.ErrorAs(t, tt.err, &f)
			assert.Equal(t, tt.code, f.Code)
			assert.Equal(t, tt.message, f.Message)
		})
	}
}

func TestNilInputs(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
	assert.NoError(t, failure.ServiceUnavailable(nil))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected int
	}{
		{name: "failure error", input: &failure.Failure{Code: http.StatusBadRequest, Message: "test"}, expected: http.StatusBadRequest},
		{name: "failure wrapped by fmt", input: fmt.Errorf("reserve: %w", failure.Conflict("taken")), expected: http.StatusConflict},
		{name: "regular error", input: errors.New("regular error"), expected: http.StatusInternalServerError},
		{name: "nil error", input: nil, expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, failure.GetCode(tt.input))
		})
	}
}
