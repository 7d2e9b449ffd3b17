package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"unilearn_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "course not found", err: util.ErrCourseNotFound, want: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("loading: %w", util.ErrStudentNotFound), want: http.StatusNotFound},
		{name: "already enrolled", err: util.ErrAlreadyEnrolled, want: http.StatusConflict},
		{name: "email registered", err: util.ErrEmailRegistered, want: http.StatusConflict},
		{name: "not owner", err: util.ErrNotCourseOwner, want: http.StatusForbidden},
		{name: "not student", err: util.ErrNotStudent, want: http.StatusBadRequest},
		{name: "invalid score", err: util.ErrInvalidScore, want: http.StatusBadRequest},
		{name: "invalid file", err: util.ErrInvalidFileType, want: http.StatusBadRequest},
		{name: "credentials", err: util.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "unknown", err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(rec)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			handleServiceError(ctx, tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
