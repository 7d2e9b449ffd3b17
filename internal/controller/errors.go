package controller

import (
	"errors"

	"unilearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// handleServiceError maps domain errors onto the response envelope; anything
// unknown is logged and answered with 500.
func handleServiceError(ctx *gin.Context, err error) {
	switch {
	case util.IsNotFound(err):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrAlreadyEnrolled), errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrNotCourseOwner):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrNotStudent),
		errors.Is(err, util.ErrInvalidScore),
		errors.Is(err, util.ErrInvalidFileType),
		errors.Is(err, util.ErrFileTooLarge):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Error(ctx, 401, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// pathID reads a positive numeric path parameter, answering 400 otherwise.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParseID(ctx.Param(name))
	if !ok {
		util.BadRequest(ctx, "invalid "+name)
	}
	return id, ok
}
