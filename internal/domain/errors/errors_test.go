package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Constructors(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
		kind   string
		is     error
	}{
		{NotFound("trade not found"), http.StatusNotFound, KindNotFound, ErrNotFound},
		{Forbidden("not a participant"), http.StatusForbidden, KindForbidden, ErrForbidden},
		{Unauthorized("no token"), http.StatusUnauthorized, KindUnauthorized, ErrUnauthorized},
		{InvalidState("already confirmed"), http.StatusConflict, KindInvalidState, ErrInvalidState},
		{LimitExceeded("daily limit"), http.StatusTooManyRequests, KindLimitExceeded, ErrLimitExceeded},
		{ValidationFailed("self trade"), http.StatusUnprocessableEntity, KindValidationFailed, ErrValidationFailed},
		{Conflict("duplicate"), http.StatusConflict, KindConflict, ErrAlreadyExists},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.Status)
		assert.Equal(t, tc.kind, tc.err.Code)
		assert.ErrorIs(t, tc.err, tc.is)
		assert.Equal(t, tc.kind, KindOf(fmt.Errorf("wrapped: %w", tc.err)))
		assert.Equal(t, tc.status, StatusOf(tc.err))
	}
}

func TestInternalError_KeepsCause(t *testing.T) {
	cause := stderrors.New("db down")
	err := InternalError(cause)
	assert.Equal(t, "internal server error", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestKindOf_Sentinels(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("x: %w", ErrNotFound)))
	assert.Equal(t, KindInvalidState, KindOf(ErrInvalidState))
	assert.Equal(t, KindInternal, KindOf(stderrors.New("boom")))
	assert.Equal(t, http.StatusNotFound, StatusOf(ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(stderrors.New("boom")))
}

func TestAppError_MessageFallback(t *testing.T) {
	assert.Equal(t, "forbidden", (&AppError{Err: ErrForbidden}).Error())
	assert.Equal(t, KindForbidden, (&AppError{Code: KindForbidden}).Error())
}
