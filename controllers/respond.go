package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sweetshop/constants"
	"sweetshop/dto"
	"sweetshop/models"
	"sweetshop/services"
)

// respondError サービス層のエラーを HTTP ステータスに変換する
func respondError(ctx *gin.Context, logger *zap.Logger, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(err))
	}
	ctx.JSON(status, dto.Fail(message))
}

func statusFor(err error) (int, string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, constants.ErrInvalidInput
	case errors.Is(err, services.ErrDuplicateAccount):
		return http.StatusBadRequest, constants.ErrUserExists
	case errors.Is(err, services.ErrDuplicateName):
		return http.StatusBadRequest, constants.ErrSweetExists
	case errors.Is(err, services.ErrInsufficientStock):
		return http.StatusBadRequest, constants.ErrInsufficientStock
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, constants.ErrInvalidCredentials
	case errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized, constants.ErrNotAuthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, constants.ErrForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, constants.ErrSweetNotFound
	default:
		return http.StatusInternalServerError, constants.ErrUnexpected
	}
}

func currentUser(ctx *gin.Context) (*models.User, bool) {
	user, exists := ctx.Get(constants.ContextUserKey)
	if !exists {
		return nil, false
	}
	u, ok := user.(*models.User)
	return u, ok
}
