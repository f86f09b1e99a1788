package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinisys/backoffice/pkg/errors"
)

func TestStatusForMapping(t *testing.T) {
	tests := []struct {
		code   errors.ErrorCode
		status int
	}{
		{errors.ErrNotFound, http.StatusNotFound},
		{errors.ErrUnknownEntity, http.StatusNotFound},
		{errors.ErrBadRequest, http.StatusBadRequest},
		{errors.ErrUnauthorized, http.StatusUnauthorized},
		{errors.ErrForbidden, http.StatusForbidden},
		{errors.ErrUnknownRole, http.StatusForbidden},
		{errors.ErrValidation, http.StatusUnprocessableEntity},
		{errors.ErrStorageConflict, http.StatusConflict},
		{errors.ErrInternal, http.StatusInternalServerError},
		{errors.ErrNoActiveKey, http.StatusInternalServerError},
		{errors.ErrKeyUnavailable, http.StatusInternalServerError},
		{errors.ErrDecryptionFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.code), "code %d", tt.code)
	}
}

func TestRespondWithErrorKeepsApplicationCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithError(c, errors.NoActiveKey())

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)

	// The body distinguishes key loss from a generic internal error.
	assert.Equal(t, int(errors.ErrNoActiveKey), resp.Error.Code)
	assert.Equal(t, "no active encryption key", resp.Error.Message)
}

func TestRespondWithErrorHidesUnknownErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "internal server error", resp.Error.Message)
}

func TestRespondWithSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithSuccess(c, gin.H{"id": 7})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}
