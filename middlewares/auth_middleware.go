package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sweetshop/constants"
	"sweetshop/dto"
	"sweetshop/services"
)

func AuthMiddleware(authService services.IAuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(constants.ErrAuthHeaderRequired))
			return
		}

		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(constants.ErrInvalidHeaderFormat))
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(constants.ErrNotAuthorized))
			return
		}

		user, err := authService.GetUserFromToken(ctx.Request.Context(), tokenString)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(constants.ErrNotAuthorized))
			return
		}

		ctx.Set(constants.ContextUserKey, user)
		ctx.Set(constants.ContextTokenKey, tokenString)

		ctx.Next()
	}
}
